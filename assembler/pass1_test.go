package assembler

import "testing"

func sizeOf(t *testing.T, src string) sizing {
	t.Helper()
	c := NewCompiler()
	sz, err := c.runPass1(preprocess(src))
	if err != nil {
		t.Fatalf("runPass1 failed: %v", err)
	}
	return sz
}

func TestPass1HaltOnly(t *testing.T) {
	sz := sizeOf(t, ": 0\n_\n")
	if sz.origin != 0 || sz.finalPC != 4 || sz.maxDepth != 0 {
		t.Errorf("got %+v, want origin=0 finalPC=4 maxDepth=0", sz)
	}
}

func TestPass1WhileLoop(t *testing.T) {
	src := ": 0\n" +
		"x1 0\n" +
		"& x1 < x2\n" +
		"  x1 x1 + 1\n"
	sz := sizeOf(t, src)
	if sz.finalPC != 16 || sz.maxDepth != 1 {
		t.Errorf("got %+v, want finalPC=16 maxDepth=1", sz)
	}
}

func TestPass1IfBlock(t *testing.T) {
	src := ": 0\n" +
		"? x1 == x2\n" +
		"  x3 x3 + 1\n"
	sz := sizeOf(t, src)
	if sz.finalPC != 8 || sz.maxDepth != 1 {
		t.Errorf("got %+v, want finalPC=8 maxDepth=1", sz)
	}
}

func TestPass1RangeLoop(t *testing.T) {
	src := ": 0\n" +
		"x5 8\n" +
		"& x4 0 x5\n" +
		"  x4 x4 + 1\n"
	sz := sizeOf(t, src)
	if sz.finalPC != 24 || sz.maxDepth != 1 {
		t.Errorf("got %+v, want finalPC=24 maxDepth=1", sz)
	}
}

func TestPass1NonOriginEntry(t *testing.T) {
	sz := sizeOf(t, ": 0x1000\n_\n")
	if sz.origin != 0x1000 || sz.finalPC != 0x1004 {
		t.Errorf("got %+v, want origin=0x1000 finalPC=0x1004", sz)
	}
}

func TestPass1BreakOutsideLoopFails(t *testing.T) {
	_, err := NewCompiler().runPass1(preprocess(": 0\n.\n"))
	if err == nil {
		t.Fatal("expected an error for a break outside any loop")
	}
	ae, ok := err.(*AssembleError)
	if !ok || ae.Kind != BreakContinueOutsideLoop {
		t.Errorf("got %v, want BreakContinueOutsideLoop", err)
	}
}

func TestPass1ConstantRedefinitionFails(t *testing.T) {
	_, err := NewCompiler().runPass1(preprocess("X 1\nX 2\n: 0\n_\n"))
	if err == nil {
		t.Fatal("expected an error for redefining a constant")
	}
	ae, ok := err.(*AssembleError)
	if !ok || ae.Kind != ConstantRedefined {
		t.Errorf("got %v, want ConstantRedefined", err)
	}
}
