package kagero

import (
	"runtime"
	"sync"
	"syscall"

	"github.com/pkg/errors"
)

var (
	stubMu    sync.Mutex
	stubCache = make(map[StubReturn]uintptr)
)

// Exports materializes the catalog as callable entry points, one shared
// callback per return kind, much as the original stub library funneled its
// whole surface through a handful of bodies. The callbacks declare no
// parameters: under the amd64 convention the caller owns argument cleanup,
// so a callee that ignores its arguments is harmless. On 386 a stdcall
// callee pops its own arguments, which a no-arg stub cannot do, so stub
// exports are amd64-only.
func (c *StubCatalog) Exports() (map[string]uintptr, error) {
	if runtime.GOARCH != "amd64" {
		return nil, errors.Errorf("stub exports unsupported on %s", runtime.GOARCH)
	}
	table := make(map[string]uintptr, len(c.ExportList))
	for _, e := range c.ExportList {
		addr, err := stubEntry(e.Returns)
		if err != nil {
			return nil, errors.WithMessagef(err, "export %s", e.Name)
		}
		table[e.Name] = addr
	}
	return table, nil
}

// stubEntry returns the shared callback for a return kind. NewCallback slots
// are a scarce process-wide resource, so one per kind, forever.
func stubEntry(r StubReturn) (uintptr, error) {
	sentinel, err := r.Sentinel()
	if err != nil {
		return 0, err
	}
	stubMu.Lock()
	defer stubMu.Unlock()
	if addr, ok := stubCache[r]; ok {
		return addr, nil
	}
	addr := syscall.NewCallback(func() uintptr { return sentinel })
	stubCache[r] = addr
	return addr, nil
}
