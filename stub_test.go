package kagero

import (
	"reflect"
	"testing"
)

const testCatalogYAML = `
library: bass.dll
exports:
  - {name: BASS_Init, returns: ok}
  - {name: BASS_GetVersion, returns: version}
  - {name: BASS_MusicLoad, returns: handle}
  - {name: BASS_ChannelGetPosition, returns: zero}
  - {name: BASS_GetInfo, returns: "null"}
  - {name: BASS_ErrorGetCode, returns: errcode}
`

func TestParseStubCatalog(t *testing.T) {
	c, err := ParseStubCatalog([]byte(testCatalogYAML))
	if err != nil {
		t.Fatal(err)
	}
	if c.Library != "bass.dll" {
		t.Errorf("library = %q, want bass.dll", c.Library)
	}
	names := c.Names()
	want := []string{
		"BASS_Init", "BASS_GetVersion", "BASS_MusicLoad",
		"BASS_ChannelGetPosition", "BASS_GetInfo", "BASS_ErrorGetCode",
	}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestStubReturn_Sentinels(t *testing.T) {
	cases := map[StubReturn]uintptr{
		ReturnOK:      1,
		ReturnZero:    0,
		ReturnHandle:  1,
		ReturnNull:    0,
		ReturnErrCode: 0,
		ReturnVersion: 0x02020300,
	}
	for kind, want := range cases {
		got, err := kind.Sentinel()
		if err != nil {
			t.Errorf("%s: %v", kind, err)
			continue
		}
		if got != want {
			t.Errorf("%s sentinel = 0x%X, want 0x%X", kind, got, want)
		}
	}
	if _, err := StubReturn("float").Sentinel(); err == nil {
		t.Errorf("unknown kind must not have a sentinel")
	}
}

func TestParseStubCatalog_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing library": `
exports:
  - {name: BASS_Init, returns: ok}
`,
		"empty name": `
library: bass.dll
exports:
  - {name: "", returns: ok}
`,
		"duplicate export": `
library: bass.dll
exports:
  - {name: BASS_Init, returns: ok}
  - {name: BASS_Init, returns: ok}
`,
		"unknown return kind": `
library: bass.dll
exports:
  - {name: BASS_Init, returns: maybe}
`,
	}
	for name, doc := range cases {
		if _, err := ParseStubCatalog([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
