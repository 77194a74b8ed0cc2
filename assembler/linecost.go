package assembler

import "strings"

// lineKind is the shared classification both passes dispatch on. It is the
// "one shared helper" the Design Notes call for: pass 1 uses it to advance
// pc, pass 2 uses it to pick an expansion.
type lineKind int

const (
	kindConstDef lineKind = iota
	kindEntryPoint
	kindLabelDef
	kindHalt
	kindReturn
	kindCall
	kindBreak
	kindContinue
	kindRangeOpener
	kindWhileOpener
	kindIfOpener
	kindStoreDec
	kindStorePlain
	kindLoadInc
	kindLoadPlain
	kindArith3
	kindMoveOrImm
	kindJumpLabel
)

// parsedLine is a Line classified into one of the table rows of spec.md
// §4.4, with its whitespace-split fields retained for the expansion logic
// in pass1.go/pass2.go to pick apart.
type parsedLine struct {
	kind   lineKind
	fields []string
	line   Line
}

// classify inspects a Line's fields and returns its lineKind, per the
// authoritative table in spec.md §4.4. inCode gates constant-definition
// recognition: constants are only recognized before the first label or
// entry-point line flips inCode to true.
func classify(l Line, inCode bool) (parsedLine, error) {
	fields := strings.Fields(l.Text)
	pl := parsedLine{fields: fields, line: l}
	if len(fields) == 0 {
		return pl, errf(SyntaxError, l.Number, l.Text, nil)
	}

	switch {
	case fields[0] == EntryLabel:
		pl.kind = kindEntryPoint
		return pl, nil

	case len(fields) == 2 && fields[1] == EntryLabel:
		pl.kind = kindLabelDef
		return pl, nil

	case len(fields) == 1 && fields[0] == "_":
		pl.kind = kindHalt
		return pl, nil

	case len(fields) == 1 && fields[0] == "..":
		pl.kind = kindContinue
		return pl, nil

	case len(fields) == 1 && fields[0] == ".":
		pl.kind = kindBreak
		return pl, nil

	case len(fields) == 2 && fields[0] == "=":
		if !looksLikeBracketPostInc(fields[1]) {
			return pl, errf(SyntaxError, l.Number, l.Text, nil)
		}
		pl.kind = kindReturn
		return pl, nil

	case len(fields) == 2 && isIdent(fields[0]) && looksLikeBracketPreDec(fields[1]):
		pl.kind = kindCall
		return pl, nil

	case fields[0] == "&":
		if len(fields) < 3 {
			return pl, errf(InvalidCondition, l.Number, l.Text, nil)
		}
		if len(fields) >= 4 && !comparisonOps[fields[2]] {
			if len(fields) > 5 {
				return pl, errf(SyntaxError, l.Number, l.Text, nil)
			}
			pl.kind = kindRangeOpener
			return pl, nil
		}
		if len(fields) != 4 || !comparisonOps[fields[2]] {
			return pl, errf(InvalidCondition, l.Number, l.Text, nil)
		}
		pl.kind = kindWhileOpener
		return pl, nil

	case fields[0] == "?":
		if len(fields) != 4 || !comparisonOps[fields[2]] {
			return pl, errf(InvalidCondition, l.Number, l.Text, nil)
		}
		pl.kind = kindIfOpener
		return pl, nil
	}

	if len(fields) == 2 {
		switch {
		case looksLikeBracketPreDec(fields[0]):
			pl.kind = kindStoreDec
			return pl, nil
		case looksLikeBracketPlain(fields[0]):
			pl.kind = kindStorePlain
			return pl, nil
		case looksLikeRegister(fields[0]) && looksLikeBracketPostInc(fields[1]):
			pl.kind = kindLoadInc
			return pl, nil
		case looksLikeRegister(fields[0]) && looksLikeBracketPlain(fields[1]):
			pl.kind = kindLoadPlain
			return pl, nil
		case looksLikeRegister(fields[0]):
			pl.kind = kindMoveOrImm
			return pl, nil
		case !inCode:
			pl.kind = kindConstDef
			return pl, nil
		}
	}

	if len(fields) == 4 && looksLikeRegister(fields[0]) && arithOps[fields[2]] {
		pl.kind = kindArith3
		return pl, nil
	}

	if len(fields) == 1 && isIdent(fields[0]) {
		pl.kind = kindJumpLabel
		return pl, nil
	}

	return pl, errf(SyntaxError, l.Number, l.Text, nil)
}

// byteCost returns the number of bytes this line contributes, per the
// authoritative table in spec.md §4.4. It does not include the byte cost
// of closing any block this line's indentation dedents past — that cost is
// attributed when the block tracker actually closes the frame.
func byteCost(pl parsedLine) uint32 {
	switch pl.kind {
	case kindConstDef, kindEntryPoint, kindLabelDef:
		return 0
	case kindHalt:
		return 4
	case kindReturn:
		return 12
	case kindCall:
		return 20
	case kindBreak, kindContinue:
		return 4
	case kindRangeOpener:
		return 8
	case kindWhileOpener, kindIfOpener:
		return 4
	case kindStoreDec, kindLoadInc:
		return 8
	case kindStorePlain, kindLoadPlain:
		return 4
	case kindArith3:
		return 4
	case kindMoveOrImm:
		return 4
	case kindJumpLabel:
		return 4
	default:
		return 0
	}
}

// blockCloseCost returns the byte contribution of closing a frame of the
// given kind, per the "Block closer (dedent)" rows of spec.md §4.4.
func blockCloseCost(k blockKind) uint32 {
	switch k {
	case blockWhile:
		return 4
	case blockRange:
		return 8
	default: // blockIf
		return 0
	}
}
