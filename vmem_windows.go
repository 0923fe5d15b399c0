package kagero

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procFlushInstructionCache = kernel32.NewProc("FlushInstructionCache")
)

// virtualAllocatedMemory is an executable scratch region, used exclusively
// for trampolines. Lifetime: allocated at install, freed only after the
// original bytes are back in place.
type virtualAllocatedMemory struct {
	Addr uintptr
	Size uint
}

func newVirtualAllocatedMemory(size uint, protect uint32) (*virtualAllocatedMemory, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, protect)
	if err != nil {
		return nil, errors.Wrapf(ErrExecAlloc, "VirtualAlloc(%d): %v", size, err)
	}
	return &virtualAllocatedMemory{Addr: addr, Size: size}, nil
}

func (vmem *virtualAllocatedMemory) Read(p []byte) (int, error) {
	unsafeReadMemory(vmem.Addr, p)
	return len(p), nil
}

func (vmem *virtualAllocatedMemory) Write(p []byte) (int, error) {
	unsafeWriteMemory(vmem.Addr, p)
	return len(p), nil
}

func (vmem *virtualAllocatedMemory) WriteAt(p []byte, off int64) (int, error) {
	unsafeWriteMemory(vmem.Addr+uintptr(off), p)
	return len(p), nil
}

func (vmem *virtualAllocatedMemory) Close() error {
	if err := windows.VirtualFree(vmem.Addr, 0, windows.MEM_RELEASE); err != nil {
		return errors.Wrapf(err, "VirtualFree(0x%X)", vmem.Addr)
	}
	return nil
}

func changeMemoryProtectLevel(ptr uintptr, size int, protect uint32) (uint32, error) {
	var old uint32
	if err := windows.VirtualProtect(ptr, uintptr(size), protect, &old); err != nil {
		return 0, errors.Wrapf(ErrMemoryProtect, "VirtualProtect(0x%X, %d): %v", ptr, size, err)
	}
	return old, nil
}

func flushInstructionCache(addr uintptr, size int) {
	procFlushInstructionCache.Call(uintptr(windows.CurrentProcess()), addr, uintptr(size))
}
