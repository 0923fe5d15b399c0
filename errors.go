package kagero

import "errors"

var (
	// ErrModuleNotLoaded means the target module is not mapped in this process
	ErrModuleNotLoaded = errors.New("target module not loaded")
	// ErrSymbolNotFound means the module is mapped but does not export the symbol
	ErrSymbolNotFound = errors.New("exported symbol not found")
	// ErrAlreadyInstalled means the target is already intercepted
	ErrAlreadyInstalled = errors.New("hook already installed")
	// ErrNotInstalled means there is nothing to remove
	ErrNotInstalled = errors.New("hook not installed")
	// ErrMemoryProtect means a protection change on the target region failed
	ErrMemoryProtect = errors.New("memory protection change failed")
	// ErrExecAlloc means the executable trampoline region could not be allocated
	ErrExecAlloc = errors.New("executable allocation failed")
	// ErrTargetModified means the live bytes no longer match what we wrote,
	// so restoring the snapshot would corrupt someone else's patch
	ErrTargetModified = errors.New("target bytes modified since install")
	// ErrSlotChanged means the callback slot no longer points at our
	// replacement; the previous value is not restored
	ErrSlotChanged = errors.New("callback slot changed since install")
	// ErrBranchInPatch means a branch instruction sits inside the patch window
	ErrBranchInPatch = errors.New("branch opcode found before jump patch area")
	// ErrPatchTooShort means the function head cannot fit the jump patch
	ErrPatchTooShort = errors.New("unable to insert jmp within patch size")
)
