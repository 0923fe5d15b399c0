package kagero

import (
	"sync"

	"github.com/pkg/errors"
)

// procSlot is a replaceable callback pointer exposed by the platform, such as
// a window's WNDPROC. Swapping it is strictly safer than inline patching
// because no machine code is rewritten.
type procSlot interface {
	// Get reads the slot's current value.
	Get() (uintptr, error)
	// Swap stores a new value and returns the previous one.
	Swap(value uintptr) (uintptr, error)
}

// CallbackHook intercepts a procSlot. The replacement must forward every call
// to Previous() with identical arguments and return its result verbatim;
// dropping the forward breaks the target's own behavior.
type CallbackHook struct {
	mu          sync.Mutex
	slot        procSlot
	replacement uintptr
	previous    uintptr
	state       hookState
}

func newCallbackHook(slot procSlot, replacement uintptr) *CallbackHook {
	return &CallbackHook{slot: slot, replacement: replacement}
}

// Install swaps the slot for the replacement and records the previous value.
func (h *CallbackHook) Install() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch h.state {
	case stateInstalled:
		return ErrAlreadyInstalled
	case stateRemoved:
		return ErrNotInstalled
	}
	prev, err := h.slot.Swap(h.replacement)
	if err != nil {
		return errors.WithMessage(err, "swap callback slot")
	}
	h.previous = prev
	h.state = stateInstalled
	return nil
}

// Remove restores the previous value. If the slot no longer points at our
// replacement it was changed behind our back; the slot is left alone and
// ErrSlotChanged reported, but the hook still transitions to removed.
func (h *CallbackHook) Remove() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != stateInstalled {
		return ErrNotInstalled
	}
	cur, err := h.slot.Get()
	if err != nil {
		return errors.WithMessage(err, "read callback slot")
	}
	if cur != h.replacement {
		h.state = stateRemoved
		return ErrSlotChanged
	}
	if _, err := h.slot.Swap(h.previous); err != nil {
		return errors.WithMessage(err, "restore callback slot")
	}
	h.state = stateRemoved
	return nil
}

// Previous returns the slot value recorded at install time. The replacement
// chains to it.
func (h *CallbackHook) Previous() uintptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.previous
}

// Replacement returns the value the hook installed into the slot.
func (h *CallbackHook) Replacement() uintptr {
	return h.replacement
}
