package kagero

// patchPlan is the byte-level layout of one inline patch, computed before any
// memory is touched so that installation is all-or-nothing.
type patchPlan struct {
	// snapshot holds the original bytes that the detour will overwrite,
	// extended to the next instruction boundary.
	snapshot []byte
	// detour is the jump to the replacement, NOP-padded to len(snapshot).
	detour []byte
	// trampoline is the snapshot followed by a jump back to
	// target+len(snapshot), the first original instruction left intact.
	trampoline []byte
}

// planPatch lays out the patch for a target whose head bytes were read into
// head. trampolineAddr must already be known because the jump-back
// displacement is relative to its own position inside the trampoline.
func planPatch(a arch, target, replacement, trampolineAddr uintptr, head []byte) (*patchPlan, error) {
	jmpSize := jumpSize(a, target, replacement)
	insts, err := decodePrefix(head, a.DisassembleMode(), jmpSize)
	if err != nil {
		return nil, err
	}

	patchSize, err := getAsmPatchSize(insts, jmpSize)
	if err != nil {
		return nil, err
	}

	snapshot := make([]byte, patchSize)
	copy(snapshot, head[:patchSize])

	detour := make([]byte, patchSize)
	copy(detour, newJumpAsm(a, target, replacement))
	for i := int(jmpSize); i < patchSize; i++ {
		detour[i] = _ASM_OP_NOP
	}

	back := newJumpAsm(a, trampolineAddr+uintptr(patchSize), target+uintptr(patchSize))
	trampoline := make([]byte, patchSize+len(back))
	copy(trampoline, snapshot)
	copy(trampoline[patchSize:], back)

	if uint(len(trampoline)) > maxTrampolineSize(a) {
		return nil, ErrPatchTooShort
	}
	return &patchPlan{snapshot: snapshot, detour: detour, trampoline: trampoline}, nil
}
