package kagero

import (
	"errors"
	"runtime"
	"syscall"
	"testing"
)

// kernel32 stands in for the renamed original: already present at a known
// file name, with exports we can compare against direct calls.
func TestBinding_ForwardsToOriginal(t *testing.T) {
	b := NewBinding("kernel32.dll")

	addr, err := b.Resolve("GetTickCount64")
	if err != nil {
		t.Fatal(err)
	}
	direct, err := FindExport("kernel32.dll", "GetTickCount64")
	if err != nil {
		t.Fatal(err)
	}
	if addr != direct {
		t.Errorf("forwarded address 0x%X != direct 0x%X", addr, direct)
	}

	again, err := b.Resolve("GetTickCount64")
	if err != nil {
		t.Fatal(err)
	}
	if again != addr {
		t.Errorf("cache returned a different address")
	}

	r1, _, _ := b.Call("GetTickCount64")
	if r1 == 0 {
		t.Errorf("forwarded call returned 0 ticks")
	}
}

func TestBinding_MissingOriginal(t *testing.T) {
	b := NewBinding("no_such_module_kagero.dll")
	if _, err := b.Resolve("Anything"); !errors.Is(err, ErrModuleNotLoaded) {
		t.Errorf("err = %v, want ErrModuleNotLoaded", err)
	}
	// the failed load is latched; later calls must not retry a broken binding
	if _, _, err := b.Call("Anything"); !errors.Is(err, ErrModuleNotLoaded) {
		t.Errorf("err = %v, want ErrModuleNotLoaded", err)
	}
}

func TestBinding_MissingSymbol(t *testing.T) {
	b := NewBinding("kernel32.dll")
	if _, err := b.Resolve("NoSuchExportKagero"); !errors.Is(err, ErrSymbolNotFound) {
		t.Errorf("err = %v, want ErrSymbolNotFound", err)
	}
}

func TestStubCatalog_Exports(t *testing.T) {
	if runtime.GOARCH != "amd64" {
		t.Skip()
	}
	c, err := ParseStubCatalog([]byte(testCatalogYAML))
	if err != nil {
		t.Fatal(err)
	}
	table, err := c.Exports()
	if err != nil {
		t.Fatal(err)
	}

	for _, e := range c.ExportList {
		addr, ok := table[e.Name]
		if !ok || addr == 0 {
			t.Errorf("%s: no callable export", e.Name)
			continue
		}
		want, _ := e.Returns.Sentinel()
		// stubs ignore their arguments, so call with a few junk values
		got, _, _ := syscall.SyscallN(addr, 1, 2, 3)
		if got != want {
			t.Errorf("%s returned 0x%X, want sentinel 0x%X", e.Name, got, want)
		}
	}
}
