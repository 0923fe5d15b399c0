package kagero

import (
	"fmt"
	"runtime"
)

const (
	_ASM_OP_NEAR_JMP         = 0xE9   // jmp rel32
	_ASM_OP_FAR_JMP          = 0x25FF // jmp dword ptr[addr32]
	_ASM_OP_AMD64_MOVABS_RAX = 0xB848 // movabs rax, imm64
	_ASM_OP_AMD64_JMP_RAX    = 0xE0FF // jmp rax
)

// arch synthesizes the control-transfer instructions used for patching.
// Nothing outside this interface and its implementations touches raw opcodes.
type arch interface {
	DisassembleMode() int
	NearJumpSize() uint
	FarJumpSize() uint
	NewNearJumpAsm(from, to uintptr) []byte
	NewFarJumpAsm(from, to uintptr) []byte
}

func maxTrampolineSize(arch arch) uint {
	return 40
}

func isFarJump(from, to uintptr) bool {
	if to >= from {
		return (to - from) > uintptr(0x7fff0000)
	} else {
		return (from - to) > uintptr(0x7fff0000)
	}
}

func jumpSize(arch arch, from, to uintptr) uint {
	if isFarJump(from, to) {
		return arch.FarJumpSize()
	}
	return arch.NearJumpSize()
}

func newJumpAsm(arch arch, from, to uintptr) []byte {
	if isFarJump(from, to) {
		return arch.NewFarJumpAsm(from, to)
	}
	return arch.NewNearJumpAsm(from, to)
}

// NewRuntimeArch returns the encoder for the running architecture.
func NewRuntimeArch() (arch, error) {
	switch runtime.GOARCH {
	case "386":
		return &arch386{}, nil
	case "amd64":
		return &archAMD64{}, nil
	}
	return nil, fmt.Errorf("unsupported arch: %s", runtime.GOARCH)
}
