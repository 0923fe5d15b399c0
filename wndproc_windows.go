package kagero

import (
	"fmt"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

var (
	user32                = windows.NewLazySystemDLL("user32.dll")
	procSetWindowLongPtrW = user32.NewProc("SetWindowLongPtrW")
	procSetWindowLongW    = user32.NewProc("SetWindowLongW")
	procGetWindowLongPtrW = user32.NewProc("GetWindowLongPtrW")
	procGetWindowLongW    = user32.NewProc("GetWindowLongW")
	procCallWindowProcW   = user32.NewProc("CallWindowProcW")
)

var _GWLP_WNDPROC = -4

// windowProcSlot adapts a window's message-handler pointer to procSlot.
// 32-bit user32 exports only the non-Ptr variants, hence the fallback.
type windowProcSlot struct {
	hwnd windows.HWND
}

func (s *windowProcSlot) Get() (uintptr, error) {
	p := procGetWindowLongPtrW
	if p.Find() != nil {
		p = procGetWindowLongW
	}
	r, _, err := p.Call(uintptr(s.hwnd), uintptr(_GWLP_WNDPROC))
	if r == 0 {
		if errno, ok := err.(syscall.Errno); ok && errno != 0 {
			return 0, errors.Wrapf(errno, "GetWindowLongPtr(0x%X)", s.hwnd)
		}
	}
	return r, nil
}

func (s *windowProcSlot) Swap(value uintptr) (uintptr, error) {
	p := procSetWindowLongPtrW
	if p.Find() != nil {
		p = procSetWindowLongW
	}
	prev, _, err := p.Call(uintptr(s.hwnd), uintptr(_GWLP_WNDPROC), value)
	if prev == 0 {
		if errno, ok := err.(syscall.Errno); ok && errno != 0 {
			return 0, errors.Wrapf(errno, "SetWindowLongPtr(0x%X)", s.hwnd)
		}
	}
	return prev, nil
}

// WindowProcHook intercepts a window's message dispatch by swapping its
// WNDPROC slot. No machine code is rewritten.
type WindowProcHook struct {
	*CallbackHook
	hwnd windows.HWND
}

// NewWindowProcHook prepares a WNDPROC swap for hwnd. replacement is usually
// syscall.NewCallback of a func(hwnd, msg, wparam, lparam uintptr) uintptr;
// the replacement must chain to CallPreviousWindowProc(h.Previous(), ...)
// and return its result verbatim, or the window stops behaving.
func NewWindowProcHook(hwnd windows.HWND, replacement uintptr) *WindowProcHook {
	return &WindowProcHook{
		CallbackHook: newCallbackHook(&windowProcSlot{hwnd: hwnd}, replacement),
		hwnd:         hwnd,
	}
}

// Describe returns the diagnostic projection of this hook.
func (h *WindowProcHook) Describe() Entry {
	return Entry{
		Module:      fmt.Sprintf("hwnd:0x%X", uintptr(h.hwnd)),
		Symbol:      "WNDPROC",
		Kind:        KindPointerSwap,
		Original:    h.Previous(),
		Replacement: h.Replacement(),
	}
}

// CallPreviousWindowProc forwards a window message to the procedure that was
// in the slot before the hook.
func CallPreviousWindowProc(prev uintptr, hwnd windows.HWND, msg uint32, wparam, lparam uintptr) uintptr {
	r, _, _ := procCallWindowProcW.Call(prev, uintptr(hwnd), uintptr(msg), wparam, lparam)
	return r
}
