package kagero

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// FindExport resolves the current address of module!symbol inside the
// already-mapped image. It never loads anything: if the module is not mapped
// yet the caller is expected to retry later. Safe to call repeatedly.
func FindExport(module, symbol string) (uintptr, error) {
	modname, err := windows.UTF16PtrFromString(module)
	if err != nil {
		return 0, errors.WithMessagef(err, "module name %q", module)
	}
	var h windows.Handle
	err = windows.GetModuleHandleEx(windows.GET_MODULE_HANDLE_EX_FLAG_UNCHANGED_REFCOUNT, modname, &h)
	if err != nil {
		return 0, errors.Wrapf(ErrModuleNotLoaded, "%s: %v", module, err)
	}
	addr, err := windows.GetProcAddress(h, symbol)
	if err != nil {
		return 0, errors.Wrapf(ErrSymbolNotFound, "%s!%s: %v", module, symbol, err)
	}
	return addr, nil
}
