package assembler

import (
	"regexp"
	"strconv"
)

// Operand-shape regexes, grounded on the same dispatch-by-regex style the
// teacher's address-mode parser uses for "(An)+" / "-(An)" forms
// (Urethramancer-m68k/assembler/parse.go) — MULTIX's "[reg++]" / "[--reg]"
// are the same post-increment/pre-decrement idea spelled differently.
// Shape regexes accept any run of digits — classification only needs to
// know a token is *trying* to be a register or bracket form. Whether the
// digits name a register in range 0..31 is a separate, emission-time
// question (see parseRegister/parseBracketForm below): a shape match with
// an out-of-range number is a well-formed line with an UnknownRegister
// token, not a SyntaxError.
var (
	reRegister      = regexp.MustCompile(`^x(\d+)$`)
	reBracketPlain  = regexp.MustCompile(`^\[x(\d+)\]$`)
	reBracketPostIn = regexp.MustCompile(`^\[x(\d+)\+\+\]$`)
	reBracketPreDec = regexp.MustCompile(`^\[--x(\d+)\]$`)
	reIdent         = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// looksLikeRegister reports whether tok has register shape, regardless of
// whether its number is in range — used by classify to dispatch on line
// shape without prematurely rejecting an out-of-range register number.
func looksLikeRegister(tok string) bool       { return reRegister.MatchString(tok) }
func looksLikeBracketPlain(tok string) bool   { return reBracketPlain.MatchString(tok) }
func looksLikeBracketPostInc(tok string) bool { return reBracketPostIn.MatchString(tok) }
func looksLikeBracketPreDec(tok string) bool  { return reBracketPreDec.MatchString(tok) }

// parseRegister parses a bare "x<n>" token, validating 0 <= n <= 31. ok is
// false both for malformed tokens and for in-shape tokens whose number is
// out of range — callers report either case as UnknownRegister.
func parseRegister(tok string) (byte, bool) {
	m := reRegister.FindStringSubmatch(tok)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > 31 {
		return 0, false
	}
	return byte(n), true
}

// parseBracketPlain parses "[x<n>]".
func parseBracketPlain(tok string) (byte, bool) {
	return parseBracketForm(reBracketPlain, tok)
}

// parseBracketPostInc parses "[x<n>++]".
func parseBracketPostInc(tok string) (byte, bool) {
	return parseBracketForm(reBracketPostIn, tok)
}

// parseBracketPreDec parses "[--x<n>]".
func parseBracketPreDec(tok string) (byte, bool) {
	return parseBracketForm(reBracketPreDec, tok)
}

func parseBracketForm(re *regexp.Regexp, tok string) (byte, bool) {
	m := re.FindStringSubmatch(tok)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > 31 {
		return 0, false
	}
	return byte(n), true
}

// isIdent reports whether tok is a syntactically valid MULTIX identifier.
func isIdent(tok string) bool {
	return reIdent.MatchString(tok)
}

// comparisonOps is the fixed set of operators a while/if opener may use.
var comparisonOps = map[string]bool{
	"<": true, ">": true, "==": true, "!=": true, "<=": true, ">=": true,
}

// arithOps is the fixed set of operators a three-operand arithmetic line
// may use.
var arithOps = map[string]bool{
	"+": true, "-": true, "|": true, "&": true, "^": true,
}

// foldConstant applies an arithmetic opener's operator to two compile-time
// constant values, for the both-non-register case of a three-operand
// arithmetic line.
func foldConstant(op string, a, b int64) int64 {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "&":
		return a & b
	case "|":
		return a | b
	case "^":
		return a ^ b
	default:
		return 0
	}
}

// invertedBranch maps a source comparison operator to the mnemonic that
// implements "skip past the block when the source condition is false" —
// the negation of the operator, per spec.md §4.5. <= and > are synthesized
// via swapped operands around blt/bge, per the Design Notes' inversion
// discipline; the boolean reports whether the operands must be swapped.
func invertedBranch(op string) (mnemonic string, swap bool, ok bool) {
	switch op {
	case "<":
		return "bge", false, true
	case ">=":
		return "blt", false, true
	case "==":
		return "bne", false, true
	case "!=":
		return "beq", false, true
	case "<=":
		return "blt", true, true
	case ">":
		return "bge", true, true
	default:
		return "", false, false
	}
}
