package kagero

import (
	"strings"

	"golang.org/x/arch/x86/x86asm"
)

const _ASM_OP_NOP = 0x90

// decodePrefix decodes just enough leading instructions to cover need bytes.
// Whatever follows may be padding or data and must not fail the decode.
func decodePrefix(src []byte, mode int, need uint) ([]*x86asm.Inst, error) {
	r := make([]*x86asm.Inst, 0, 8)
	total := 0
	for total < int(need) && len(src) > 0 {
		inst, err := x86asm.Decode(src, mode)
		if err != nil {
			return nil, err
		}
		r = append(r, &inst)
		total += inst.Len
		src = src[inst.Len:]
	}
	return r, nil
}

func disassemble(src []byte, mode int) ([]*x86asm.Inst, error) {
	r := make([]*x86asm.Inst, 0, len(src)/15)

	for len(src) > 0 {
		inst, err := x86asm.Decode(src, mode)
		if err != nil {
			return nil, err
		}
		r = append(r, &inst)
		src = src[inst.Len:]
	}
	return r, nil
}

// getAsmPatchSize returns the smallest instruction-boundary-aligned size that
// can hold a jump of jumpSize bytes. Overwriting a partial instruction, or a
// branch whose displacement would be copied verbatim into the trampoline,
// would corrupt the moved code.
func getAsmPatchSize(insts []*x86asm.Inst, jumpSize uint) (int, error) {
	res := 0
	for i := 0; res < int(jumpSize) && i < len(insts); i++ {
		if isBranchInst(insts[i]) {
			return -1, ErrBranchInPatch
		}
		res += insts[i].Len
	}
	if res < int(jumpSize) {
		return -1, ErrPatchTooShort
	}
	return res, nil
}

func isBranchInst(inst *x86asm.Inst) bool {
	instr := inst.String()
	return strings.HasPrefix(instr, "J") || strings.HasPrefix(instr, "CALL")
}
