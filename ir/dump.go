package ir

import (
	"strconv"
	"strings"
)

// tempHints assigns the classic Kaleidoscope codegen's per-kind temp
// names (original_source's `CodeGen` calls CreateFAdd(..., "addtmp")
// and so on) to the instruction kinds that carry one; everything else
// falls back to its positional %ID.
var tempHints = map[Op]string{
	OpAdd:    "addtmp",
	OpSub:    "subtmp",
	OpMul:    "multmp",
	OpCmpULT: "cmptmp",
	OpUIToFP: "booltmp",
	OpCall:   "calltmp",
}

// Dump renders m as a stable, LLVM-flavored textual form: one
// `declare`/`define` block per function, in declaration order, with
// function signatures carrying return and parameter types, basic-block
// labels, one instruction per line using the mnemonics in this package's
// Op.String(), and float constants in decimal form. It is meant for
// golden tests, not for feeding a real assembler.
func (m *Module) Dump() string {
	var sb strings.Builder
	for i, f := range m.Functions() {
		if i > 0 {
			sb.WriteString("\n")
		}
		dumpFunction(f, &sb)
	}
	return sb.String()
}

func dumpFunction(f *Function, sb *strings.Builder) {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = F64.String() + " %" + p
	}
	sig := f.Ret.String() + " @" + f.Name + "(" + strings.Join(params, ", ") + ")"

	if f.IsDeclaration() {
		sb.WriteString("declare " + sig + "\n")
		return
	}

	names := nameInstructions(f)

	sb.WriteString("define " + sig + " {\n")
	for _, blk := range f.Blocks {
		sb.WriteString(blk.Label + ":\n")
		for _, instr := range blk.Instrs {
			sb.WriteString("  " + dumpInstr(instr, names) + "\n")
		}
	}
	sb.WriteString("}\n")
}

// nameInstructions assigns each instruction its display name: a
// per-function, per-kind counter (addtmp1, subtmp1, calltmp2, ...) for
// the kinds the original codegen names, and the positional %ID for
// everything else.
func nameInstructions(f *Function) map[*Instruction]string {
	names := make(map[*Instruction]string)
	counters := make(map[string]int)
	for _, blk := range f.Blocks {
		for _, instr := range blk.Instrs {
			hint, ok := tempHints[instr.Op]
			if !ok {
				continue
			}
			counters[hint]++
			names[instr] = "%" + hint + strconv.Itoa(counters[hint])
		}
	}
	return names
}

func nameOf(names map[*Instruction]string, instr *Instruction) string {
	if instr == nil {
		return "<nil>"
	}
	if n, ok := names[instr]; ok {
		return n
	}
	return instr.String()
}

func dumpInstr(instr *Instruction, names map[*Instruction]string) string {
	self := nameOf(names, instr)
	switch instr.Op {
	case OpParam:
		return self + " = param " + F64.String() + " %" + instr.Name
	case OpConst:
		return self + " = fconst " + formatFloat(instr.Imm)
	case OpAdd, OpSub, OpMul, OpCmpULT, OpCmpNE:
		return self + " = " + instr.Op.String() + " " + nameOf(names, instr.Operands[0]) + ", " + nameOf(names, instr.Operands[1])
	case OpUIToFP, OpFPToSI:
		return self + " = " + instr.Op.String() + " " + nameOf(names, instr.Operands[0])
	case OpAlloca:
		return self + " = alloca " + F64.String() + ", %" + instr.Name
	case OpLoad:
		return self + " = load " + nameOf(names, instr.Operands[0])
	case OpStore:
		return "store " + nameOf(names, instr.Operands[1]) + ", " + nameOf(names, instr.Operands[0])
	case OpCall:
		args := make([]string, len(instr.Operands))
		for i, a := range instr.Operands {
			args[i] = a.Type.String() + " " + nameOf(names, a)
		}
		return self + " = call " + instr.Type.String() + " @" + instr.Callee + "(" + strings.Join(args, ", ") + ")"
	case OpRet:
		if len(instr.Operands) == 0 {
			return "ret void"
		}
		return "ret " + instr.Operands[0].Type.String() + " " + nameOf(names, instr.Operands[0])
	case OpBr:
		return "br label %" + instr.Target.Label
	case OpCondBr:
		return "condbr " + nameOf(names, instr.Operands[0]) + ", label %" + instr.TrueTarget.Label + ", label %" + instr.FalseTarget.Label
	case OpPhi:
		parts := make([]string, len(instr.Incoming))
		for i, e := range instr.Incoming {
			parts[i] = "[" + nameOf(names, e.Value) + ", %" + e.Block.Label + "]"
		}
		return self + " = phi " + instr.Type.String() + " " + strings.Join(parts, ", ")
	default:
		return "?"
	}
}

// formatFloat always renders in decimal (never scientific) form, with
// at least one digit after the point, matching the "decimal floating
// form" the golden-test contract requires.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
