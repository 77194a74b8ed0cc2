package assembler

import "fmt"

// scratchReg is the register reserved by the call/return primitives for
// holding a computed return address. MULTIX programs are free to use it
// like any other register outside a call/return sequence; the assembler
// does not track liveness across them.
const scratchReg byte = 31

// regOrImm resolves an operand that may be either a register or an
// immediate/label/constant. It reports isReg=true only when tok has
// register shape and names a register in range; a register-shaped token
// with an out-of-range number is UnknownRegister, not a silently-resolved
// immediate.
func (c *Compiler) regOrImm(tok string, lineNo int) (reg byte, isReg bool, err error) {
	if looksLikeRegister(tok) {
		r, ok := parseRegister(tok)
		if !ok {
			return 0, false, errf(UnknownRegister, lineNo, tok, nil)
		}
		return r, true, nil
	}
	return 0, false, nil
}

// runPass2 re-walks the same lines pass 1 classified, in lock-step with an
// identical block tracker, and emits the primitive instruction sequence for
// each line per spec.md §4.5. Every label pass2 needs to resolve was
// already recorded by pass 1, so forward references (a call to a label
// defined later in the file) just work.
func (c *Compiler) runPass2(lines []Line, sz sizing) error {
	bt := newBlockTracker()
	inCode := false
	pc := sz.origin

	var closeErr error
	closeOne := func(f blockFrame) {
		if closeErr != nil {
			return
		}
		switch f.kind {
		case blockWhile:
			startAddr, ok := c.symbols.label(f.startLabel)
			if !ok {
				closeErr = errf(UnresolvedLabel, 0, f.startLabel, nil)
				return
			}
			c.emitJAL(0, int32(startAddr)-int32(pc), "")
			pc += 4

		case blockRange:
			if f.stepIsReg {
				c.emitALUR("add", funct3ADD, funct7ADD, f.iterReg, f.iterReg, f.stepReg)
			} else {
				c.emitADDI(f.iterReg, f.iterReg, f.stepImm)
			}
			pc += 4

			startAddr, ok := c.symbols.label(f.startLabel)
			if !ok {
				closeErr = errf(UnresolvedLabel, 0, f.startLabel, nil)
				return
			}
			c.emitJAL(0, int32(startAddr)-int32(pc), "")
			pc += 4
		}
		c.traceLabel(f.endLabel)
	}

	for _, l := range lines {
		bt.closeFrames(l.Indent, closeOne)
		if closeErr != nil {
			return closeErr
		}

		pl, err := classify(l, inCode)
		if err != nil {
			return err
		}

		switch pl.kind {
		case kindConstDef:
			// Already resolved into the symbol table during pass 1.

		case kindEntryPoint:
			inCode = true
			pc = sz.origin
			c.traceLabel(EntryLabel)

		case kindLabelDef:
			inCode = true
			c.traceLabel(pl.fields[0])

		case kindHalt:
			c.emitJAL(0, 0, " ; halt")
			pc += 4

		case kindReturn:
			ptrReg, ok := parseBracketPostInc(pl.fields[1])
			if !ok {
				return errf(UnknownRegister, l.Number, pl.fields[1], nil)
			}
			c.emitLD(scratchReg, ptrReg, 0)
			pc += 4
			c.emitADDI(ptrReg, ptrReg, 8)
			pc += 4
			c.emitJALR(0, scratchReg, 0)
			pc += 4

		case kindCall:
			ptrReg, ok := parseBracketPreDec(pl.fields[1])
			if !ok {
				return errf(UnknownRegister, l.Number, pl.fields[1], nil)
			}
			targetAddr, ok := c.symbols.label(pl.fields[0])
			if !ok {
				return errf(UnresolvedLabel, l.Number, pl.fields[0], nil)
			}
			c.emitADDI(ptrReg, ptrReg, -8)
			pc += 4
			c.emitAUIPC(scratchReg, 0)
			pc += 4
			c.emitADDI(scratchReg, scratchReg, 16)
			pc += 4
			c.emitSD(ptrReg, scratchReg, 0)
			pc += 4
			c.emitJAL(0, int32(targetAddr)-int32(pc), "")
			pc += 4

		case kindBreak:
			frame, ok := bt.nearestLoop()
			if !ok {
				return errf(BreakContinueOutsideLoop, l.Number, l.Text, nil)
			}
			targetAddr, ok := c.symbols.label(frame.endLabel)
			if !ok {
				return errf(UnresolvedLabel, l.Number, frame.endLabel, nil)
			}
			c.emitJAL(0, int32(targetAddr)-int32(pc), "")
			pc += 4

		case kindContinue:
			frame, ok := bt.nearestLoop()
			if !ok {
				return errf(BreakContinueOutsideLoop, l.Number, l.Text, nil)
			}
			targetAddr, ok := c.symbols.label(frame.startLabel)
			if !ok {
				return errf(UnresolvedLabel, l.Number, frame.startLabel, nil)
			}
			c.emitJAL(0, int32(targetAddr)-int32(pc), "")
			pc += 4

		case kindWhileOpener:
			id := bt.allocID()
			start, end := startLabelFor(id), endLabelFor(id)
			regA, ok := parseRegister(pl.fields[1])
			if !ok {
				return errf(UnknownRegister, l.Number, pl.fields[1], nil)
			}
			regB, ok := parseRegister(pl.fields[3])
			if !ok {
				return errf(UnknownRegister, l.Number, pl.fields[3], nil)
			}
			mnemonic, swap, _ := invertedBranch(pl.fields[2])
			rs1, rs2 := regA, regB
			if swap {
				rs1, rs2 = regB, regA
			}
			endAddr, ok := c.symbols.label(end)
			if !ok {
				return errf(UnresolvedLabel, l.Number, end, nil)
			}
			c.traceLabel(start)
			if err := c.emitBranch(mnemonic, rs1, rs2, int32(endAddr)-int32(pc)); err != nil {
				return err
			}
			pc += 4
			bt.push(blockFrame{kind: blockWhile, indent: l.Indent, startLabel: start, endLabel: end})

		case kindIfOpener:
			id := bt.allocID()
			start, end := startLabelFor(id), endLabelFor(id)
			regA, ok := parseRegister(pl.fields[1])
			if !ok {
				return errf(UnknownRegister, l.Number, pl.fields[1], nil)
			}
			regB, ok := parseRegister(pl.fields[3])
			if !ok {
				return errf(UnknownRegister, l.Number, pl.fields[3], nil)
			}
			mnemonic, swap, _ := invertedBranch(pl.fields[2])
			rs1, rs2 := regA, regB
			if swap {
				rs1, rs2 = regB, regA
			}
			endAddr, ok := c.symbols.label(end)
			if !ok {
				return errf(UnresolvedLabel, l.Number, end, nil)
			}
			if err := c.emitBranch(mnemonic, rs1, rs2, int32(endAddr)-int32(pc)); err != nil {
				return err
			}
			pc += 4
			bt.push(blockFrame{kind: blockIf, indent: l.Indent, startLabel: start, endLabel: end})

		case kindRangeOpener:
			id := bt.allocID()
			start, end := startLabelFor(id), endLabelFor(id)
			iterReg, ok := parseRegister(pl.fields[1])
			if !ok {
				return errf(UnknownRegister, l.Number, pl.fields[1], nil)
			}

			startReg, startIsReg, err := c.regOrImm(pl.fields[2], l.Number)
			if err != nil {
				return err
			}
			if startIsReg {
				c.emitADDI(iterReg, startReg, 0)
			} else {
				c.emitADDI(iterReg, 0, int32(c.symbols.resolveValue(pl.fields[2])))
			}
			pc += 4

			endReg, ok := parseRegister(pl.fields[3])
			if !ok {
				return errf(UnknownRegister, l.Number, pl.fields[3], nil)
			}
			endAddr, ok := c.symbols.label(end)
			if !ok {
				return errf(UnresolvedLabel, l.Number, end, nil)
			}
			c.traceLabel(start)
			if err := c.emitBranch("bge", iterReg, endReg, int32(endAddr)-int32(pc)); err != nil {
				return err
			}
			pc += 4

			frame := blockFrame{kind: blockRange, indent: l.Indent, startLabel: start, endLabel: end, iterReg: iterReg, stepImm: 1}
			if len(pl.fields) == 5 {
				stepReg, stepIsReg, err := c.regOrImm(pl.fields[4], l.Number)
				if err != nil {
					return err
				}
				if stepIsReg {
					frame.stepIsReg = true
					frame.stepReg = stepReg
				} else {
					frame.stepImm = int32(c.symbols.resolveValue(pl.fields[4]))
				}
			}
			bt.push(frame)

		case kindStoreDec:
			ptrReg, ok := parseBracketPreDec(pl.fields[0])
			if !ok {
				return errf(UnknownRegister, l.Number, pl.fields[0], nil)
			}
			srcReg, ok := parseRegister(pl.fields[1])
			if !ok {
				return errf(UnknownRegister, l.Number, pl.fields[1], nil)
			}
			c.emitADDI(ptrReg, ptrReg, -8)
			pc += 4
			c.emitSD(ptrReg, srcReg, 0)
			pc += 4

		case kindStorePlain:
			ptrReg, ok := parseBracketPlain(pl.fields[0])
			if !ok {
				return errf(UnknownRegister, l.Number, pl.fields[0], nil)
			}
			srcReg, ok := parseRegister(pl.fields[1])
			if !ok {
				return errf(UnknownRegister, l.Number, pl.fields[1], nil)
			}
			c.emitSD(ptrReg, srcReg, 0)
			pc += 4

		case kindLoadInc:
			destReg, ok := parseRegister(pl.fields[0])
			if !ok {
				return errf(UnknownRegister, l.Number, pl.fields[0], nil)
			}
			ptrReg, ok := parseBracketPostInc(pl.fields[1])
			if !ok {
				return errf(UnknownRegister, l.Number, pl.fields[1], nil)
			}
			c.emitLD(destReg, ptrReg, 0)
			pc += 4
			c.emitADDI(ptrReg, ptrReg, 8)
			pc += 4

		case kindLoadPlain:
			destReg, ok := parseRegister(pl.fields[0])
			if !ok {
				return errf(UnknownRegister, l.Number, pl.fields[0], nil)
			}
			ptrReg, ok := parseBracketPlain(pl.fields[1])
			if !ok {
				return errf(UnknownRegister, l.Number, pl.fields[1], nil)
			}
			c.emitLD(destReg, ptrReg, 0)
			pc += 4

		case kindArith3:
			dest, ok := parseRegister(pl.fields[0])
			if !ok {
				return errf(UnknownRegister, l.Number, pl.fields[0], nil)
			}
			op := pl.fields[2]
			src1, src1IsReg, err := c.regOrImm(pl.fields[1], l.Number)
			if err != nil {
				return err
			}
			src2, src2IsReg, err := c.regOrImm(pl.fields[3], l.Number)
			if err != nil {
				return err
			}
			switch {
			case src1IsReg && src2IsReg:
				mnemonic, funct3, funct7 := arithRegForm(op)
				c.emitALUR(mnemonic, funct3, funct7, dest, src1, src2)

			case src1IsReg && !src2IsReg:
				imm := int32(c.symbols.resolveValue(pl.fields[3]))
				switch op {
				case "+":
					c.emitADDI(dest, src1, imm)
				case "-":
					c.emitADDI(dest, src1, -imm)
				case "&":
					c.emit(encodeI(opcodeOpImm, funct3AND, dest, src1, imm), fmt.Sprintf("andi %s, %s, %d", regName(dest), regName(src1), imm))
				case "|":
					c.emit(encodeI(opcodeOpImm, funct3OR, dest, src1, imm), fmt.Sprintf("ori %s, %s, %d", regName(dest), regName(src1), imm))
				case "^":
					c.emit(encodeI(opcodeOpImm, funct3XOR, dest, src1, imm), fmt.Sprintf("xori %s, %s, %d", regName(dest), regName(src1), imm))
				}

			case !src1IsReg && !src2IsReg:
				folded := foldConstant(op, c.symbols.resolveValue(pl.fields[1]), c.symbols.resolveValue(pl.fields[3]))
				c.emitLoadImmediate(dest, folded)

			default:
				return errf(UnknownRegister, l.Number, pl.fields[1], nil)
			}
			pc += 4

		case kindMoveOrImm:
			dest, ok := parseRegister(pl.fields[0])
			if !ok {
				return errf(UnknownRegister, l.Number, pl.fields[0], nil)
			}
			src, srcIsReg, err := c.regOrImm(pl.fields[1], l.Number)
			if err != nil {
				return err
			}
			if srcIsReg {
				c.emitADDI(dest, src, 0)
			} else {
				c.emitLoadImmediate(dest, c.symbols.resolveValue(pl.fields[1]))
			}
			pc += 4

		case kindJumpLabel:
			targetAddr, ok := c.symbols.label(pl.fields[0])
			if !ok {
				return errf(UnresolvedLabel, l.Number, pl.fields[0], nil)
			}
			c.emitJAL(0, int32(targetAddr)-int32(pc), "")
			pc += 4
		}
	}

	bt.closeAll(closeOne)
	if closeErr != nil {
		return closeErr
	}
	return nil
}
