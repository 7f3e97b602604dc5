package ir

import "fmt"

// Verify checks the two structural invariants a successfully lowered
// function must satisfy: every block ends in exactly one terminator,
// and every operand's defining instruction dominates the instruction
// using it. Verifier failure is a fatal lowering error.
func Verify(f *Function) error {
	if f.IsDeclaration() {
		return nil
	}

	for _, blk := range f.Blocks {
		if !blk.Terminated() {
			return fmt.Errorf("block %q in function %q is not terminated", blk.Label, f.Name)
		}
		for i, instr := range blk.Instrs {
			isLast := i == len(blk.Instrs)-1
			isTerm := instr.Op == OpRet || instr.Op == OpBr || instr.Op == OpCondBr
			if isTerm && !isLast {
				return fmt.Errorf("block %q in function %q has a terminator before its end", blk.Label, f.Name)
			}
		}
	}

	dom := dominators(f)
	for _, blk := range f.Blocks {
		for _, instr := range blk.Instrs {
			for _, operand := range instr.Operands {
				if operand == nil {
					continue
				}
				if err := checkDominates(f, dom, operand, instr); err != nil {
					return err
				}
			}
			if instr.Op == OpPhi {
				for _, edge := range instr.Incoming {
					if edge.Value == nil {
						continue
					}
					if !dominatesBlock(dom, edge.Value.Block, edge.Block) {
						return fmt.Errorf("function %q: phi incoming value %s does not dominate predecessor block %q",
							f.Name, edge.Value, edge.Block.Label)
					}
				}
			}
		}
	}
	return nil
}

// checkDominates requires def to dominate use: either they are in the
// same block and def comes first, or def's block strictly dominates
// use's block.
func checkDominates(f *Function, dom map[*BasicBlock]map[*BasicBlock]bool, def, use *Instruction) error {
	if def.Block == use.Block {
		if def.ID < use.ID {
			return nil
		}
		return fmt.Errorf("function %q: %s used by %s before it is defined", f.Name, def, use)
	}
	if dominatesBlock(dom, def.Block, use.Block) {
		return nil
	}
	return fmt.Errorf("function %q: %s (block %q) does not dominate its use %s (block %q)",
		f.Name, def, def.Block.Label, use, use.Block.Label)
}

func dominatesBlock(dom map[*BasicBlock]map[*BasicBlock]bool, def, use *BasicBlock) bool {
	doms, ok := dom[use]
	if !ok {
		return false
	}
	return doms[def]
}

// dominators computes, for every reachable block, the set of blocks
// that dominate it, via the standard iterative dataflow fixpoint:
// dom(entry) = {entry}; dom(b) = {b} ∪ ⋂ dom(p) over predecessors p.
func dominators(f *Function) map[*BasicBlock]map[*BasicBlock]bool {
	entry := f.EntryBlock()
	if entry == nil {
		return nil
	}

	preds := make(map[*BasicBlock][]*BasicBlock)
	all := f.Blocks
	for _, blk := range all {
		for _, succ := range blk.Successors() {
			if succ != nil {
				preds[succ] = append(preds[succ], blk)
			}
		}
	}

	dom := make(map[*BasicBlock]map[*BasicBlock]bool, len(all))
	universe := make(map[*BasicBlock]bool, len(all))
	for _, blk := range all {
		universe[blk] = true
	}
	for _, blk := range all {
		if blk == entry {
			dom[blk] = map[*BasicBlock]bool{entry: true}
		} else {
			dom[blk] = cloneSet(universe)
		}
	}

	changed := true
	for changed {
		changed = false
		for _, blk := range all {
			if blk == entry {
				continue
			}
			ps := preds[blk]
			if len(ps) == 0 {
				continue
			}
			next := cloneSet(dom[ps[0]])
			for _, p := range ps[1:] {
				intersect(next, dom[p])
			}
			next[blk] = true
			if !setsEqual(next, dom[blk]) {
				dom[blk] = next
				changed = true
			}
		}
	}
	return dom
}

func cloneSet(s map[*BasicBlock]bool) map[*BasicBlock]bool {
	out := make(map[*BasicBlock]bool, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func intersect(dst, other map[*BasicBlock]bool) {
	for k := range dst {
		if !other[k] {
			delete(dst, k)
		}
	}
}

func setsEqual(a, b map[*BasicBlock]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
