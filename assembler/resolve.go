package assembler

import (
	"strconv"
	"strings"
)

const (
	suffixKB = 1024
	suffixMB = 1024 * 1024
)

// resolveValue converts a textual token into a 64-bit signed integer,
// following the order fixed by spec.md §4.2: strip a kb/mb suffix, try a
// constant, try a label (unscaled), then hex/char-literal/decimal, with an
// unparsable token silently falling back to zero. An empty token resolves
// to 0.
func (s *symbolTable) resolveValue(token string) int64 {
	if token == "" {
		return 0
	}

	multiplier := int64(1)
	stripped := token
	switch {
	case hasSuffixFold(token, "kb"):
		multiplier = suffixKB
		stripped = token[:len(token)-2]
	case hasSuffixFold(token, "mb"):
		multiplier = suffixMB
		stripped = token[:len(token)-2]
	}

	if v, ok := s.constant(stripped); ok {
		return v * multiplier
	}
	if v, ok := s.label(stripped); ok {
		// Labels are never scaled, even if the token carried a kb/mb suffix.
		return int64(v)
	}

	return parseLiteral(stripped) * multiplier
}

// parseLiteral parses a hex (0x...), character ('c), or decimal literal. A
// token that fails to parse falls back to 0, per spec.md §4.2 rule 6 — not
// distinguishable from an intentional zero, by design.
func parseLiteral(tok string) int64 {
	switch {
	case hasPrefixFold(tok, "0x"):
		v, err := strconv.ParseInt(tok[2:], 16, 64)
		if err != nil {
			return 0
		}
		return v
	case strings.HasPrefix(tok, "'"):
		if len(tok) < 2 {
			return 0
		}
		return int64(tok[1])
	default:
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return 0
		}
		return v
	}
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
