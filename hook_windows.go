package kagero

import (
	"bytes"
	"sync"
	"syscall"

	"github.com/pkg/errors"
)

// InlineHook redirects a function whose call sites cannot be edited: every
// caller reaches it through its exported address, so the entry bytes
// themselves are overwritten with a jump to the replacement. The overwritten
// bytes live on in a trampoline, the only sanctioned way to invoke the
// original behavior while the patch is in place.
type InlineHook struct {
	mu              sync.Mutex
	arch            arch
	module          string
	symbol          string
	replacementAddr uintptr
	targetAddr      uintptr
	snapshot        []byte // original bytes under the patch
	detour          []byte // the bytes we wrote over them
	trampoline      *virtualAllocatedMemory
	state           hookState
}

// NewInlineHook prepares an interception of module!symbol. replacement is a
// Go function with the target's exact signature; its entry point is
// materialized with syscall.NewCallback and must follow its argument rules.
// Nothing is patched until Install.
func NewInlineHook(module, symbol string, replacement interface{}) (*InlineHook, error) {
	return NewInlineHookAddr(module, symbol, syscall.NewCallback(replacement))
}

// NewInlineHookAddr is NewInlineHook for an already-materialized entry point.
func NewInlineHookAddr(module, symbol string, replacement uintptr) (*InlineHook, error) {
	a, err := NewRuntimeArch()
	if err != nil {
		return nil, err
	}
	return &InlineHook{
		arch:            a,
		module:          module,
		symbol:          symbol,
		replacementAddr: replacement,
	}, nil
}

// Install resolves the target, builds the trampoline and overwrites the
// target's entry with a jump to the replacement. All-or-nothing: on any
// failure the target bytes are untouched, the trampoline is released and the
// hook stays uninstalled.
func (h *InlineHook) Install() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch h.state {
	case stateInstalled:
		return ErrAlreadyInstalled
	case stateRemoved:
		return ErrNotInstalled
	}

	targetAddr, err := FindExport(h.module, h.symbol)
	if err != nil {
		return err
	}

	head := make([]byte, maxTrampolineSize(h.arch))
	unsafeReadMemory(targetAddr, head)

	tramp, err := newVirtualAllocatedMemory(maxTrampolineSize(h.arch), syscall.PAGE_EXECUTE_READWRITE)
	if err != nil {
		return err
	}

	plan, err := planPatch(h.arch, targetAddr, h.replacementAddr, tramp.Addr, head)
	if err != nil {
		tramp.Close()
		return errors.WithMessagef(err, "plan patch for %s!%s", h.module, h.symbol)
	}
	if _, err := tramp.Write(plan.trampoline); err != nil {
		tramp.Close()
		return err
	}

	oldProtect, err := changeMemoryProtectLevel(targetAddr, len(plan.detour), syscall.PAGE_EXECUTE_READWRITE)
	if err != nil {
		tramp.Close()
		return err
	}
	unsafeWriteMemory(targetAddr, plan.detour)
	if _, err := changeMemoryProtectLevel(targetAddr, len(plan.detour), oldProtect); err != nil {
		// Leaving the page writable is a lurking defect. Back the patch out
		// while the page is still writable and fail the install.
		unsafeWriteMemory(targetAddr, plan.snapshot)
		tramp.Close()
		return err
	}

	flushInstructionCache(tramp.Addr, len(plan.trampoline))
	flushInstructionCache(targetAddr, len(plan.detour))

	h.targetAddr = targetAddr
	h.snapshot = plan.snapshot
	h.detour = plan.detour
	h.trampoline = tramp
	h.state = stateInstalled
	return nil
}

// Remove restores the original bytes and releases the trampoline. If the live
// bytes no longer match the detour we wrote, something else patched the
// target after us; removal is refused rather than corrupting it, and the
// hook stays installed so the caller can decide what to do.
//
// Known limitation: there is no quiescence check for threads currently
// executing inside the target; a thread racing the restore may re-read the
// patch region mid-rewrite.
func (h *InlineHook) Remove() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch h.state {
	case stateUninstalled, stateRemoved:
		return ErrNotInstalled
	}

	live := make([]byte, len(h.detour))
	unsafeReadMemory(h.targetAddr, live)
	if !bytes.Equal(live, h.detour) {
		return errors.Wrapf(ErrTargetModified, "%s!%s", h.module, h.symbol)
	}

	oldProtect, err := changeMemoryProtectLevel(h.targetAddr, len(h.snapshot), syscall.PAGE_EXECUTE_READWRITE)
	if err != nil {
		return err
	}
	unsafeWriteMemory(h.targetAddr, h.snapshot)
	if _, err := changeMemoryProtectLevel(h.targetAddr, len(h.snapshot), oldProtect); err != nil {
		return err
	}
	flushInstructionCache(h.targetAddr, len(h.snapshot))

	// Restore first, free last: nothing may reach the trampoline once the
	// entry bytes are original again.
	err = h.trampoline.Close()
	h.trampoline = nil
	h.state = stateRemoved
	return err
}

// Original returns the trampoline entry point, the only valid way to invoke
// the unhooked behavior while the patch is installed. Zero when not
// installed.
func (h *InlineHook) Original() uintptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.trampoline == nil {
		return 0
	}
	return h.trampoline.Addr
}

// CallOriginal invokes the original behavior through the trampoline. As with
// syscall.Proc.Call, lastErr carries GetLastError and may be non-nil even on
// success.
func (h *InlineHook) CallOriginal(args ...uintptr) (r1, r2 uintptr, lastErr error) {
	addr := h.Original()
	if addr == 0 {
		return 0, 0, ErrNotInstalled
	}
	return syscall.SyscallN(addr, args...)
}

// Describe returns the diagnostic projection of this hook.
func (h *InlineHook) Describe() Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := Entry{
		Module:      h.module,
		Symbol:      h.symbol,
		Kind:        KindInlinePatch,
		Original:    h.targetAddr,
		Replacement: h.replacementAddr,
		Active:      h.state == stateInstalled,
	}
	if h.trampoline != nil {
		e.Trampoline = h.trampoline.Addr
	}
	return e
}
