package kagero

import (
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// Binding wires a drop-in proxy module to the renamed original it stands in
// for. The original is loaded lazily, exactly once per process; the handle is
// never freed because the loader reclaims it at process exit.
type Binding struct {
	fileName string

	once   sync.Once
	handle windows.Handle
	err    error

	mu    sync.Mutex
	procs map[string]uintptr
}

// NewBinding declares a binding to the renamed original library, e.g.
// "bass_real.dll". Nothing is loaded until the first Resolve or Call.
func NewBinding(fileName string) *Binding {
	return &Binding{fileName: fileName, procs: make(map[string]uintptr)}
}

func (b *Binding) attach() error {
	b.once.Do(func() {
		h, err := windows.LoadLibrary(b.fileName)
		if err != nil {
			b.err = errors.Wrapf(ErrModuleNotLoaded, "%s: %v", b.fileName, err)
			return
		}
		b.handle = h
	})
	return b.err
}

// Handle returns the loaded original module, attaching on first use.
func (b *Binding) Handle() (windows.Handle, error) {
	if err := b.attach(); err != nil {
		return 0, err
	}
	return b.handle, nil
}

// Resolve returns the original's implementation of symbol. Addresses are
// cached; the export table of a loaded image does not move.
func (b *Binding) Resolve(symbol string) (uintptr, error) {
	if err := b.attach(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if addr, ok := b.procs[symbol]; ok {
		return addr, nil
	}
	addr, err := windows.GetProcAddress(b.handle, symbol)
	if err != nil {
		return 0, errors.Wrapf(ErrSymbolNotFound, "%s!%s: %v", b.fileName, symbol, err)
	}
	b.procs[symbol] = addr
	return addr, nil
}

// Call forwards a call to the original with the caller's own arguments and
// returns the results verbatim. As with syscall.Proc.Call, lastErr carries
// GetLastError and may be non-nil even when the call succeeded.
func (b *Binding) Call(symbol string, args ...uintptr) (r1, r2 uintptr, lastErr error) {
	addr, err := b.Resolve(symbol)
	if err != nil {
		return 0, 0, err
	}
	return syscall.SyscallN(addr, args...)
}
