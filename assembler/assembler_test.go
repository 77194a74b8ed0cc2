package assembler

import (
	"bytes"
	"testing"
)

// compileBytes is a test helper that compiles src and fails the test if
// assembly errors.
func compileBytes(t *testing.T, src string) []byte {
	t.Helper()
	out, err := NewCompiler().Compile(src)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return out
}

// compileExpectError is a test helper that expects assembly to fail and
// returns the error for further inspection.
func compileExpectError(t *testing.T, src string) error {
	t.Helper()
	_, err := NewCompiler().Compile(src)
	if err == nil {
		t.Fatalf("expected an error compiling %q", src)
	}
	return err
}

func wantBytes(words ...uint32) []byte {
	var out []byte
	for _, w := range words {
		out = append(out, word(w)...)
	}
	return out
}

func TestCompileHaltOnly(t *testing.T) {
	got := compileBytes(t, ": 0\n_\n")
	want := wantBytes(0x0000006F)
	if !bytes.Equal(got, want) {
		t.Errorf("got  % 02x\nwant % 02x", got, want)
	}
}

func TestCompileMoveImmediateSmall(t *testing.T) {
	got := compileBytes(t, ": 0\nx1 5\n_\n")
	want := wantBytes(0x00500093, 0x0000006F)
	if !bytes.Equal(got, want) {
		t.Errorf("got  % 02x\nwant % 02x", got, want)
	}
}

func TestCompileMoveImmediateUsesUpperImmediateWhenOutOfRange(t *testing.T) {
	// 0x1000 (4096) is outside addi's signed 12-bit range, so the move
	// compiles to a single lui of the value's high 20 bits: lui x1, 0x1.
	got := compileBytes(t, ": 0\nx1 0x1000\n_\n")
	want := wantBytes(0x000010B7, 0x0000006F)
	if !bytes.Equal(got, want) {
		t.Errorf("got  % 02x\nwant % 02x", got, want)
	}
}

func TestCompileMoveImmediateUpperBitsScenario(t *testing.T) {
	// lui x5, 0x10
	got := compileBytes(t, ": 0\nx5 0x10000\n_\n")
	want := wantBytes(0x000102B7, 0x0000006F)
	if !bytes.Equal(got, want) {
		t.Errorf("got  % 02x\nwant % 02x", got, want)
	}
}

func TestCompileMoveImmediateNegativeStaysAddi(t *testing.T) {
	// -2048 is the lower edge of addi's signed 12-bit range.
	got := compileBytes(t, ": 0\nx1 -2048\n_\n")
	want := wantBytes(0x80000093, 0x0000006F)
	if !bytes.Equal(got, want) {
		t.Errorf("got  % 02x\nwant % 02x", got, want)
	}
}

func TestCompileArith3FoldsBothNonRegisterOperands(t *testing.T) {
	// RAM folds with 0x100 into a single load-immediate of 0x8100, which is
	// outside addi's range and so compiles to lui x1, 0x8.
	src := "RAM 0x8000\n: 0\nx1 RAM + 0x100\n_\n"
	got := compileBytes(t, src)
	want := wantBytes(0x000080B7, 0x0000006F)
	if !bytes.Equal(got, want) {
		t.Errorf("got  % 02x\nwant % 02x", got, want)
	}
}

func TestCompileArith3FoldInRangeStaysAddi(t *testing.T) {
	src := "BASE 2\n: 0\nx1 BASE + 3\n_\n"
	got := compileBytes(t, src)
	want := wantBytes(0x00500093, 0x0000006F) // addi x1, x0, 5
	if !bytes.Equal(got, want) {
		t.Errorf("got  % 02x\nwant % 02x", got, want)
	}
}

func TestCompileMoveRegisterToRegister(t *testing.T) {
	got := compileBytes(t, ": 0\nx1 x2\n_\n")
	want := wantBytes(0x00010093, 0x0000006F) // addi x1, x2, 0
	if !bytes.Equal(got, want) {
		t.Errorf("got  % 02x\nwant % 02x", got, want)
	}
}

func TestCompileReturn(t *testing.T) {
	got := compileBytes(t, ": 0\n= [x2++]\n")
	// ld x31, 0(x2); addi x2, x2, 8; jalr x0, 0(x31)
	want := []byte{
		0x83, 0x3F, 0x01, 0x00,
		0x13, 0x01, 0x81, 0x00,
		0x67, 0x80, 0x0F, 0x00,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got  % 02x\nwant % 02x", got, want)
	}
}

func TestCompileCallAndLabel(t *testing.T) {
	src := ": 0\n" +
		"foo [--x2]\n" +
		"foo :\n" +
		"_\n"
	got := compileBytes(t, src)
	expected := []byte{
		0x13, 0x01, 0x81, 0xFF, // addi x2, x2, -8
		0x97, 0x0F, 0x00, 0x00, // auipc x31, 0
		0x93, 0x8F, 0x0F, 0x01, // addi x31, x31, 16
		0x23, 0x30, 0xF1, 0x01, // sd x31, 0(x2)
		0x6F, 0x00, 0x40, 0x00, // jal x0, 4
		0x6F, 0x00, 0x00, 0x00, // jal x0, 0 (halt)
	}
	if !bytes.Equal(got, expected) {
		t.Errorf("got  % 02x\nwant % 02x", got, expected)
	}
}

func TestCompileWhileLoopStructure(t *testing.T) {
	src := ": 0\n" +
		"x1 0\n" +
		"& x1 < x2\n" +
		"  x1 x1 + 1\n"
	c := NewCompiler()
	got, err := c.Compile(src)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(got) != 16 {
		t.Fatalf("output length = %d, want 16", len(got))
	}
	if c.Stats().MaxDepth != 1 {
		t.Errorf("MaxDepth = %d, want 1", c.Stats().MaxDepth)
	}
}

func TestCompileRangeLoopStructure(t *testing.T) {
	src := ": 0\n" +
		"x5 8\n" +
		"& x4 0 x5\n" +
		"  x4 x4 + 1\n"
	got := compileBytes(t, src)
	if len(got) != 24 {
		t.Fatalf("output length = %d, want 24", len(got))
	}
}

func TestCompileBreakInsideLoop(t *testing.T) {
	src := ": 0\n" +
		"& x1 < x2\n" +
		"  .\n"
	if _, err := NewCompiler().Compile(src); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
}

func TestCompileBreakOutsideLoopFails(t *testing.T) {
	err := compileExpectError(t, ": 0\n.\n")
	ae, ok := err.(*AssembleError)
	if !ok || ae.Kind != BreakContinueOutsideLoop {
		t.Errorf("got %v, want BreakContinueOutsideLoop", err)
	}
}

func TestCompileUnresolvedLabelFails(t *testing.T) {
	err := compileExpectError(t, ": 0\nmissing\n")
	ae, ok := err.(*AssembleError)
	if !ok || ae.Kind != UnresolvedLabel {
		t.Errorf("got %v, want UnresolvedLabel", err)
	}
}

func TestCompileSyntaxErrorFails(t *testing.T) {
	err := compileExpectError(t, ": 0\n$$$ ### ***\n")
	ae, ok := err.(*AssembleError)
	if !ok || ae.Kind != SyntaxError {
		t.Errorf("got %v, want SyntaxError", err)
	}
}

func TestCompileUnknownRegisterFails(t *testing.T) {
	err := compileExpectError(t, ": 0\nx1 x2 + x99\n")
	ae, ok := err.(*AssembleError)
	if !ok || ae.Kind != UnknownRegister {
		t.Errorf("got %v, want UnknownRegister", err)
	}
}

func TestCompileIsAtomicOnFailure(t *testing.T) {
	c := NewCompiler()
	if _, err := c.Compile(": 0\nx1 5\n_\n"); err != nil {
		t.Fatalf("first compile failed: %v", err)
	}
	if _, err := c.Compile(": 0\n.\n"); err == nil {
		t.Fatal("expected second compile to fail")
	}
	if len(c.Bytes()) != 0 || len(c.Trace()) != 0 {
		t.Errorf("state from the failed compile leaked: bytes=%v trace=%v", c.Bytes(), c.Trace())
	}
}

func TestHexDump(t *testing.T) {
	if got := HexDump(nil); got != "" {
		t.Errorf("HexDump(nil) = %q, want empty", got)
	}
	if got := HexDump([]byte{0x01, 0xAB}); got != "01 AB" {
		t.Errorf("HexDump = %q, want %q", got, "01 AB")
	}
	data := make([]byte, 17)
	for i := range data {
		data[i] = byte(i)
	}
	got := HexDump(data)
	lines := 0
	for _, c := range got {
		if c == '\n' {
			lines++
		}
	}
	if lines != 1 {
		t.Errorf("HexDump of 17 bytes should wrap once, got %d newlines", lines)
	}
}
