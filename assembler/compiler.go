package assembler

// Compiler holds all state for one MULTIX compile: the symbol table, the
// output buffer, and the trace. It is strictly single-threaded: one Compile
// call holds exclusive mutable access to everything below, per spec.md §5.
// A Compiler is not safe for concurrent use, but Reset lets one instance
// process many sources serially.
type Compiler struct {
	symbols *symbolTable
	output  []byte
	trace   []string
	origin  uint32
	stats   Stats
}

// Stats summarizes one successful compile, for a CLI listing — not part of
// the core translation semantics, grounded on the teacher's
// GetListing/GetWarnings accessors (IE64Assembler).
type Stats struct {
	Instructions int
	Bytes        int
	Labels       int
	MaxDepth     int
	Origin       uint32
}

// NewCompiler returns a Compiler ready for its first Compile call.
func NewCompiler() *Compiler {
	c := &Compiler{}
	c.Reset()
	return c
}

// Reset clears every piece of state a previous Compile call left behind —
// symbol tables, output, trace — so the next Compile call starts clean.
// Compile calls this internally; it is also exported for recovery after an
// aborted compile.
func (c *Compiler) Reset() {
	c.symbols = newSymbolTable()
	c.output = nil
	c.trace = nil
	c.origin = 0
	c.stats = Stats{}
}

// Bytes returns the byte vector produced by the last successful Compile.
func (c *Compiler) Bytes() []byte {
	return c.output
}

// Trace returns the assembly trace produced by the last successful Compile.
func (c *Compiler) Trace() []string {
	return c.trace
}

// Stats returns a summary of the last successful Compile.
func (c *Compiler) Stats() Stats {
	return c.stats
}

// Compile translates MULTIX source into a byte vector and a trace,
// atomically: on any error the previous state is discarded and neither a
// partial byte vector nor a partial trace is retained.
func (c *Compiler) Compile(source string) ([]byte, error) {
	c.Reset()

	lines := preprocess(source)

	sizing, err := c.runPass1(lines)
	if err != nil {
		c.Reset()
		return nil, err
	}

	if err := c.runPass2(lines, sizing); err != nil {
		c.Reset()
		return nil, err
	}

	if uint32(len(c.output)) != sizing.finalPC-sizing.origin {
		c.Reset()
		return nil, errf(SyntaxError, 0, "internal", nil)
	}

	c.stats = Stats{
		Instructions: countInstructions(c.trace),
		Bytes:        len(c.output),
		Labels:       len(c.symbols.labels),
		MaxDepth:     sizing.maxDepth,
		Origin:       sizing.origin,
	}
	return c.output, nil
}

func countInstructions(trace []string) int {
	n := 0
	for _, t := range trace {
		if len(t) > 1 && t[0] == ' ' && t[1] == ' ' {
			n++
		}
	}
	return n
}
