package kagero

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// StubReturn names the fixed sentinel a stub export hands back. Callers of a
// stubbed library only check a status result, so every sentinel signals
// unconditional success.
type StubReturn string

const (
	// ReturnOK is BOOL TRUE.
	ReturnOK StubReturn = "ok"
	// ReturnZero is DWORD 0.
	ReturnZero StubReturn = "zero"
	// ReturnHandle is a dummy non-zero handle.
	ReturnHandle StubReturn = "handle"
	// ReturnNull is a null pointer.
	ReturnNull StubReturn = "null"
	// ReturnErrCode is "no error" (0).
	ReturnErrCode StubReturn = "errcode"
	// ReturnVersion is the version word callers of vintage BASS expect.
	ReturnVersion StubReturn = "version"
)

const (
	sentinelOK      = uintptr(1)
	sentinelZero    = uintptr(0)
	sentinelHandle  = uintptr(1)
	sentinelNull    = uintptr(0)
	sentinelErrCode = uintptr(0)
	sentinelVersion = uintptr(0x02020300) // 2.2.3.0
)

// Sentinel maps the return kind to its fixed value.
func (r StubReturn) Sentinel() (uintptr, error) {
	switch r {
	case ReturnOK:
		return sentinelOK, nil
	case ReturnZero:
		return sentinelZero, nil
	case ReturnHandle:
		return sentinelHandle, nil
	case ReturnNull:
		return sentinelNull, nil
	case ReturnErrCode:
		return sentinelErrCode, nil
	case ReturnVersion:
		return sentinelVersion, nil
	}
	return 0, errors.Errorf("unknown stub return kind: %q", r)
}

// StubExport is one symbol of the stubbed library's public API.
type StubExport struct {
	Name    string     `yaml:"name"`
	Returns StubReturn `yaml:"returns"`
}

// StubCatalog is the declared export surface of a stubbed library. Every name
// in the catalog must resolve to a callable export of the proxy.
type StubCatalog struct {
	Library    string       `yaml:"library"`
	ExportList []StubExport `yaml:"exports"`
}

// ParseStubCatalog decodes a YAML catalog document.
func ParseStubCatalog(buf []byte) (*StubCatalog, error) {
	var c StubCatalog
	if err := yaml.UnmarshalStrict(buf, &c); err != nil {
		return nil, errors.WithMessage(err, "parse stub catalog")
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ReadStubCatalog loads a catalog from a file.
func ReadStubCatalog(path string) (*StubCatalog, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "read stub catalog %s", path)
	}
	return ParseStubCatalog(buf)
}

func (c *StubCatalog) validate() error {
	if c.Library == "" {
		return errors.New("stub catalog: missing library name")
	}
	seen := make(map[string]struct{}, len(c.ExportList))
	for _, e := range c.ExportList {
		if e.Name == "" {
			return errors.New("stub catalog: export with empty name")
		}
		if _, dup := seen[e.Name]; dup {
			return errors.Errorf("stub catalog: duplicate export %s", e.Name)
		}
		seen[e.Name] = struct{}{}
		if _, err := e.Returns.Sentinel(); err != nil {
			return errors.WithMessagef(err, "stub catalog: export %s", e.Name)
		}
	}
	return nil
}

// Names returns the catalog's export names in declaration order.
func (c *StubCatalog) Names() []string {
	names := make([]string, len(c.ExportList))
	for i, e := range c.ExportList {
		names[i] = e.Name
	}
	return names
}
