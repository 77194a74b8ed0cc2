package assembler

import "strings"

// blockCommentOpen/Close are the MULTIX block-comment delimiters; they span
// newlines, do not nest, and the earliest closing delimiter wins.
const (
	blockCommentOpen  = ";-"
	blockCommentClose = "-;"
)

// stripBlockComments removes every ";- ... -;" region from source, earliest
// close wins, non-nested. Comment removal happens before the source is
// split into lines, so it never shifts the indentation of a surviving line.
func stripBlockComments(source string) string {
	var b strings.Builder
	rest := source
	for {
		start := strings.Index(rest, blockCommentOpen)
		if start == -1 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:start])
		afterOpen := rest[start+len(blockCommentOpen):]
		end := strings.Index(afterOpen, blockCommentClose)
		if end == -1 {
			// Unterminated block comment swallows the remainder of the source.
			break
		}
		rest = afterOpen[end+len(blockCommentClose):]
	}
	return b.String()
}

// stripLineComment truncates a raw line at its first unquoted ';'. MULTIX
// has no string literals that could contain a semicolon, so this is a plain
// first-index search, unlike the teacher's quote-aware stripComment.
func stripLineComment(line string) string {
	if i := strings.IndexByte(line, ';'); i != -1 {
		return line[:i]
	}
	return line
}

// leadingWhitespace counts the leading spaces/tabs on a raw (pre-comment-
// strip) line — indentation is measured before truncation, so comment
// removal never shifts it.
func leadingWhitespace(raw string) int {
	n := 0
	for n < len(raw) && (raw[n] == ' ' || raw[n] == '\t') {
		n++
	}
	return n
}

// preprocess lexes raw MULTIX source into an ordered sequence of Line
// records: block comments are stripped first, then each remaining raw line
// has its end-of-line comment truncated; a line that is empty or
// all-whitespace after truncation is discarded entirely rather than kept
// as a blank Line.
func preprocess(source string) []Line {
	cleaned := stripBlockComments(source)
	rawLines := strings.Split(cleaned, "\n")

	var out []Line
	for i, raw := range rawLines {
		indent := leadingWhitespace(raw)
		truncated := stripLineComment(raw)
		trimmed := strings.TrimSpace(truncated)
		if trimmed == "" {
			continue
		}
		out = append(out, Line{Text: trimmed, Indent: indent, Number: i + 1})
	}
	return out
}
