package memutils

import "unsafe"

// ZeroMemory writes size zero bytes starting at pointer
func ZeroMemory(pointer unsafe.Pointer, size int) {
	if size <= 0 {
		return
	}

	bytes := unsafe.Slice((*byte)(pointer), size)
	for i := range bytes {
		bytes[i] = 0
	}
}

// CopyMemory copies size bytes from source to dest. The two ranges may overlap.
func CopyMemory(dest unsafe.Pointer, source unsafe.Pointer, size int) {
	if size <= 0 || dest == source {
		return
	}

	copy(unsafe.Slice((*byte)(dest), size), unsafe.Slice((*byte)(source), size))
}

// Bytes views size bytes at pointer as a byte slice. The slice is only as valid as the pointer it was
// built from. A size of 0 or less produces an empty, non-nil slice.
func Bytes(pointer unsafe.Pointer, size int) []byte {
	if size <= 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(pointer), size)
}
