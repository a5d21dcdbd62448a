package storage

import (
	"unsafe"

	"github.com/vkngwrapper/storage/memutils"
)

// DefaultAllocateZeroed implements AllocateZeroed for s by calling Allocate and zero-filling the usable
// size of the new block. Implementations of Storage can call it from their own AllocateZeroed when they
// have no cheaper way to produce zeroed memory.
func DefaultAllocateZeroed[H any](s Storage[H], layout Layout) (H, int, error) {
	handle, size, err := s.Allocate(layout)
	if err != nil {
		return handle, 0, err
	}

	memutils.ZeroMemory(s.Resolve(handle), size)
	return handle, size, nil
}

// DefaultGrowZeroed implements GrowZeroed for s by calling Grow and zero-filling every usable byte past
// oldLayout.Size()
func DefaultGrowZeroed[H any](s Storage[H], handle H, oldLayout, newLayout Layout) (H, int, error) {
	checkGrowing(oldLayout, newLayout)

	newHandle, size, err := s.Grow(handle, oldLayout, newLayout)
	if err != nil {
		return handle, 0, err
	}

	oldSize := int(oldLayout.Size())
	pointer := s.Resolve(newHandle)
	memutils.ZeroMemory(unsafe.Add(pointer, oldSize), size-oldSize)
	return newHandle, size, nil
}

// GrowByReallocation implements Grow for a storage that can hold several blocks at once and resolves them
// to stable addresses: it allocates a new block for newLayout, copies the first oldLayout.Size() bytes
// and releases the old block. If the new allocation fails, the old block is untouched.
func GrowByReallocation[H any](s MultipleStableStorage[H], handle H, oldLayout, newLayout Layout) (H, int, error) {
	checkGrowing(oldLayout, newLayout)

	return reallocate[H](s, handle, oldLayout, newLayout, int(oldLayout.Size()), false)
}

// GrowZeroedByReallocation is GrowByReallocation with the new block obtained from AllocateZeroed
func GrowZeroedByReallocation[H any](s MultipleStableStorage[H], handle H, oldLayout, newLayout Layout) (H, int, error) {
	checkGrowing(oldLayout, newLayout)

	return reallocate[H](s, handle, oldLayout, newLayout, int(oldLayout.Size()), true)
}

// ShrinkByReallocation is the Shrink counterpart of GrowByReallocation, copying the first newLayout.Size()
// bytes into the new block
func ShrinkByReallocation[H any](s MultipleStableStorage[H], handle H, oldLayout, newLayout Layout) (H, int, error) {
	if memutils.DebugEnabled && newLayout.Size() > oldLayout.Size() {
		memutils.DebugFailf("%s must not be larger than %s", newLayout, oldLayout)
	}

	return reallocate[H](s, handle, oldLayout, newLayout, int(newLayout.Size()), false)
}

func reallocate[H any](s MultipleStableStorage[H], handle H, oldLayout, newLayout Layout, preserve int, zeroed bool) (H, int, error) {
	var newHandle H
	var size int
	var err error

	if zeroed {
		newHandle, size, err = s.AllocateZeroed(newLayout)
	} else {
		newHandle, size, err = s.Allocate(newLayout)
	}
	if err != nil {
		return handle, 0, err
	}

	// Both blocks are live and resolved at the same time, which needs both markers
	memutils.CopyMemory(s.Resolve(newHandle), s.Resolve(handle), preserve)
	s.Deallocate(handle, oldLayout)

	return newHandle, size, nil
}

func checkGrowing(oldLayout, newLayout Layout) {
	if memutils.DebugEnabled && newLayout.Size() < oldLayout.Size() {
		memutils.DebugFailf("%s must not be smaller than %s", newLayout, oldLayout)
	}
}
