package kagero

import "unsafe"

func unsafeReadMemory(ptr uintptr, out []byte) {
	for i := range out {
		out[i] = *(*byte)(unsafe.Pointer(ptr + uintptr(i)))
	}
}

func unsafeWriteMemory(ptr uintptr, in []byte) {
	for i, b := range in {
		*(*byte)(unsafe.Pointer(ptr + uintptr(i))) = b
	}
}
