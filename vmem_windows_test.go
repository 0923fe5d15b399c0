package kagero

import (
	"reflect"
	"syscall"
	"testing"
)

func TestNewVirtualAllocatedMemory(t *testing.T) {
	vmem, err := newVirtualAllocatedMemory(64, syscall.PAGE_EXECUTE_READWRITE)
	if err != nil {
		t.Fatal(err)
	}
	defer vmem.Close()
}

func TestVirtualAllocatedMemory_ReadWrite(t *testing.T) {
	vmem, err := newVirtualAllocatedMemory(64, syscall.PAGE_EXECUTE_READWRITE)
	if err != nil {
		t.Fatal(err)
	}
	defer vmem.Close()
	w := []byte("Hello, kagero")
	vmem.Write(w)

	r := make([]byte, len(w))
	vmem.Read(r)
	if !reflect.DeepEqual(r, w) {
		t.Errorf("%v != %v", r, w)
	}
}

func TestVirtualAllocatedMemory_WriteAt(t *testing.T) {
	vmem, err := newVirtualAllocatedMemory(64, syscall.PAGE_EXECUTE_READWRITE)
	if err != nil {
		t.Fatal(err)
	}
	defer vmem.Close()
	vmem.Write([]byte{1, 2, 3, 4})
	vmem.WriteAt([]byte{9, 9}, 2)

	r := make([]byte, 4)
	vmem.Read(r)
	if !reflect.DeepEqual(r, []byte{1, 2, 9, 9}) {
		t.Errorf("%v != [1 2 9 9]", r)
	}
}
