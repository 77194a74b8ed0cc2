// Package assembler implements the MULTIX two-pass assembler: it translates
// an indentation-structured source language into a stream of little-endian
// 32-bit RV64I machine words, plus a human-readable trace of the primitives
// each source line expanded into.
//
// The package has no external state beyond a single Compiler value. A
// Compiler is not safe for concurrent use; Reset clears everything a
// previous Compile call left behind so one instance can process many
// sources serially.
package assembler
