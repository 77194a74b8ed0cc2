package assembler

// sizing carries pass 1's results forward into pass 2: the origin and final
// program counter (for the size-consistency invariant) and the maximum
// block nesting depth reached (for Stats).
type sizing struct {
	origin   uint32
	finalPC  uint32
	maxDepth int
}

// runPass1 walks the prepared lines once, advancing a synthetic program
// counter and populating the symbol table's labels (and, before code
// begins, its constants), per spec.md §4.4. It re-runs the identical
// block-tracking rules pass 2 will use so both passes agree on every
// address.
func (c *Compiler) runPass1(lines []Line) (sizing, error) {
	bt := newBlockTracker()
	inCode := false
	var pc uint32
	var origin uint32
	maxDepth := 0

	closeOne := func(f blockFrame) {
		pc += blockCloseCost(f.kind)
		c.symbols.defineLabel(f.endLabel, pc)
	}

	for _, l := range lines {
		bt.closeFrames(l.Indent, closeOne)
		if depth := len(bt.stack); depth > maxDepth {
			maxDepth = depth
		}

		pl, err := classify(l, inCode)
		if err != nil {
			return sizing{}, err
		}

		switch pl.kind {
		case kindConstDef:
			val := c.symbols.resolveValue(pl.fields[1])
			if !c.symbols.defineConstant(pl.fields[0], val) {
				return sizing{}, errf(ConstantRedefined, l.Number, pl.fields[0], nil)
			}

		case kindEntryPoint:
			inCode = true
			if len(pl.fields) >= 2 {
				origin = uint32(c.symbols.resolveValue(pl.fields[1]))
			}
			pc = origin
			c.symbols.defineLabel(EntryLabel, pc)

		case kindLabelDef:
			inCode = true
			if _, isConst := c.symbols.constant(pl.fields[0]); isConst {
				return sizing{}, errf(ConstantRedefined, l.Number, pl.fields[0], nil)
			}
			c.symbols.defineLabel(pl.fields[0], pc)

		case kindWhileOpener:
			id := bt.allocID()
			start, end := startLabelFor(id), endLabelFor(id)
			c.symbols.defineLabel(start, pc)
			bt.push(blockFrame{kind: blockWhile, indent: l.Indent, startLabel: start, endLabel: end})
			pc += byteCost(pl)

		case kindRangeOpener:
			id := bt.allocID()
			start, end := startLabelFor(id), endLabelFor(id)
			c.symbols.defineLabel(start, pc+4)
			bt.push(blockFrame{kind: blockRange, indent: l.Indent, startLabel: start, endLabel: end})
			pc += byteCost(pl)

		case kindIfOpener:
			id := bt.allocID()
			start, end := startLabelFor(id), endLabelFor(id)
			bt.push(blockFrame{kind: blockIf, indent: l.Indent, startLabel: start, endLabel: end})
			pc += byteCost(pl)

		case kindBreak, kindContinue:
			if _, ok := bt.nearestLoop(); !ok {
				return sizing{}, errf(BreakContinueOutsideLoop, l.Number, l.Text, nil)
			}
			pc += byteCost(pl)

		default:
			pc += byteCost(pl)
		}
	}

	bt.closeAll(closeOne)
	if depth := len(bt.stack); depth > maxDepth {
		maxDepth = depth
	}

	return sizing{origin: origin, finalPC: pc, maxDepth: maxDepth}, nil
}
