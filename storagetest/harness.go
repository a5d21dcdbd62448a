// Package storagetest checks that a storage.Storage implementation honors the contract of the storage
// package and of every marker interface it declares. Conformance is established only by these property
// tests, never by inspecting the implementation.
package storagetest

import (
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/storage/memutils"
	"github.com/vkngwrapper/storage/storage"
)

// LayoutPair is a Grow or Shrink request from Old to New
type LayoutPair struct {
	Old storage.Layout
	New storage.Layout
}

// Config describes how to exercise a backend
type Config[H any, S storage.Storage[H]] struct {
	// New returns a fresh instance. It is called once per property.
	New func() S
	// Layouts must all be allocatable from a fresh instance
	Layouts []storage.Layout
	// Oversized must not be allocatable from a fresh instance. The zero Layout skips the failure
	// properties.
	Oversized storage.Layout
	// Grows lists Grow requests that must succeed on a fresh instance
	Grows []LayoutPair
	// Shrinks lists Shrink requests that must succeed on a fresh instance
	Shrinks []LayoutPair
	// Relocate moves an instance to a new location and returns it. It is required to check instances
	// declaring storage.PinningStorage.
	Relocate func(S) S
	// Seed drives the byte patterns written into blocks
	Seed int64
}

// Run checks every property that applies to the instances returned by config.New, based on the markers
// they declare
func Run[H any, S storage.Storage[H]](t *testing.T, config Config[H, S]) {
	require.NotNil(t, config.New)
	require.NotEmpty(t, config.Layouts)

	rng := rand.New(rand.NewSource(config.Seed))
	markers := storage.Capabilities[H](config.New())

	t.Run("RoundTrip", func(t *testing.T) {
		for _, layout := range config.Layouts {
			RoundTrip[H](t, config.New(), layout, rng.Int63())
		}
	})

	t.Run("AllocateZeroed", func(t *testing.T) {
		for _, layout := range config.Layouts {
			AllocateZeroed[H](t, config.New(), layout)
		}
	})

	t.Run("GrowPreservesPrefix", func(t *testing.T) {
		for _, pair := range config.Grows {
			GrowPreservesPrefix[H](t, config.New(), pair, rng.Int63())
		}
	})

	t.Run("GrowZeroed", func(t *testing.T) {
		for _, pair := range config.Grows {
			GrowZeroed[H](t, config.New(), pair, rng.Int63())
		}
	})

	t.Run("ShrinkPreservesPrefix", func(t *testing.T) {
		for _, pair := range config.Shrinks {
			ShrinkPreservesPrefix[H](t, config.New(), pair, rng.Int63())
		}
	})

	if config.Oversized.IsValid() {
		t.Run("IdempotentFailure", func(t *testing.T) {
			IdempotentFailure[H](t, config.New(), config.Layouts[0], config.Oversized, rng.Int63())
		})
	}

	if markers.Has(storage.MarkerMultiple) {
		t.Run("MultipleAllocationIsolation", func(t *testing.T) {
			s := any(config.New()).(storage.MultipleStorage[H])
			MultipleAllocationIsolation[H](t, s, config.Layouts, rng.Int63())
		})
	}

	if markers.Has(storage.MarkerStable) {
		t.Run("StableResolution", func(t *testing.T) {
			s := any(config.New()).(storage.StableStorage[H])
			StableResolution[H](t, s, config.Layouts[0], config.Oversized)
		})
	}

	if markers.Has(storage.MarkerPinned) {
		t.Run("PinnedResolution", func(t *testing.T) {
			require.NotNil(t, config.Relocate, "Relocate is required for a pinning storage")
			PinnedResolution[H, S](t, config.New(), config.Relocate, config.Layouts[0], rng.Int63())
		})
	}
}

// RoundTrip allocates layout, checks the usable size and alignment of the block, and checks that bytes
// written through the resolved address read back unchanged
func RoundTrip[H any](t *testing.T, s storage.Storage[H], layout storage.Layout, seed int64) {
	handle, size, err := s.Allocate(layout)
	require.NoError(t, err, "allocating %s", layout)
	require.GreaterOrEqual(t, size, int(layout.Size()))

	ptr := s.Resolve(handle)
	require.NotNil(t, ptr)
	require.True(t, memutils.IsAligned(ptr, layout.Align()), "address %p is not aligned to %d", ptr, layout.Align())

	pattern := Pattern(seed, size)
	copy(memutils.Bytes(ptr, size), pattern)
	require.Equal(t, pattern, readBlock[H](s, handle, size))

	s.Deallocate(handle, layout)
}

// AllocateZeroed dirties a block, releases it, and checks that AllocateZeroed hands back only zero bytes
func AllocateZeroed[H any](t *testing.T, s storage.Storage[H], layout storage.Layout) {
	handle, size, err := s.Allocate(layout)
	require.NoError(t, err)
	copy(memutils.Bytes(s.Resolve(handle), size), Pattern(-1, size))
	s.Deallocate(handle, layout)

	handle, size, err = s.AllocateZeroed(layout)
	require.NoError(t, err)
	require.GreaterOrEqual(t, size, int(layout.Size()))
	require.Equal(t, make([]byte, size), readBlock[H](s, handle, size))

	s.Deallocate(handle, layout)
}

// GrowPreservesPrefix checks that Grow keeps the first pair.Old.Size() bytes
func GrowPreservesPrefix[H any](t *testing.T, s storage.Storage[H], pair LayoutPair, seed int64) {
	handle, size, err := s.Allocate(pair.Old)
	require.NoError(t, err)

	prefix := int(pair.Old.Size())
	pattern := Pattern(seed, size)
	copy(memutils.Bytes(s.Resolve(handle), size), pattern)

	newHandle, newSize, err := s.Grow(handle, pair.Old, pair.New)
	require.NoError(t, err, "growing %s to %s", pair.Old, pair.New)
	require.GreaterOrEqual(t, newSize, int(pair.New.Size()))
	require.True(t, memutils.IsAligned(s.Resolve(newHandle), pair.New.Align()))
	require.Equal(t, pattern[:prefix], readBlock[H](s, newHandle, prefix))

	s.Deallocate(newHandle, pair.New)
}

// GrowZeroed checks that GrowZeroed keeps the first pair.Old.Size() bytes and zeroes the rest
func GrowZeroed[H any](t *testing.T, s storage.Storage[H], pair LayoutPair, seed int64) {
	handle, size, err := s.Allocate(pair.Old)
	require.NoError(t, err)

	prefix := int(pair.Old.Size())
	pattern := Pattern(seed, size)
	copy(memutils.Bytes(s.Resolve(handle), size), pattern)

	newHandle, newSize, err := s.GrowZeroed(handle, pair.Old, pair.New)
	require.NoError(t, err, "growing %s to %s", pair.Old, pair.New)

	contents := readBlock[H](s, newHandle, newSize)
	require.Equal(t, pattern[:prefix], contents[:prefix])
	require.Equal(t, make([]byte, newSize-prefix), contents[prefix:])

	s.Deallocate(newHandle, pair.New)
}

// ShrinkPreservesPrefix checks that Shrink keeps the first pair.New.Size() bytes
func ShrinkPreservesPrefix[H any](t *testing.T, s storage.Storage[H], pair LayoutPair, seed int64) {
	handle, size, err := s.Allocate(pair.Old)
	require.NoError(t, err)

	prefix := int(pair.New.Size())
	pattern := Pattern(seed, size)
	copy(memutils.Bytes(s.Resolve(handle), size), pattern)

	newHandle, newSize, err := s.Shrink(handle, pair.Old, pair.New)
	require.NoError(t, err, "shrinking %s to %s", pair.Old, pair.New)
	require.GreaterOrEqual(t, newSize, prefix)
	require.Equal(t, pattern[:prefix], readBlock[H](s, newHandle, prefix))

	s.Deallocate(newHandle, pair.New)
}

// IdempotentFailure checks that a request for oversized fails with storage.ErrAlloc every time it is
// made, and that failing requests leave a live block of layout untouched
func IdempotentFailure[H any](t *testing.T, s storage.Storage[H], layout, oversized storage.Layout, seed int64) {
	handle, size, err := s.Allocate(layout)
	require.NoError(t, err)

	pattern := Pattern(seed, size)
	copy(memutils.Bytes(s.Resolve(handle), size), pattern)

	for i := 0; i < 3; i++ {
		_, _, err = s.Allocate(oversized)
		require.True(t, errors.Is(err, storage.ErrAlloc), "expected ErrAlloc, got %v", err)

		_, _, err = s.AllocateZeroed(oversized)
		require.True(t, errors.Is(err, storage.ErrAlloc), "expected ErrAlloc, got %v", err)

		if oversized.Size() >= layout.Size() {
			_, _, err = s.Grow(handle, layout, oversized)
			require.True(t, errors.Is(err, storage.ErrAlloc), "expected ErrAlloc, got %v", err)

			_, _, err = s.GrowZeroed(handle, layout, oversized)
			require.True(t, errors.Is(err, storage.ErrAlloc), "expected ErrAlloc, got %v", err)
		}

		require.Equal(t, pattern, readBlock[H](s, handle, size))
	}

	s.Deallocate(handle, layout)
}

// MultipleAllocationIsolation keeps several blocks live at once and checks that writing to, allocating
// and deallocating blocks never disturbs the others
func MultipleAllocationIsolation[H any](t *testing.T, s storage.MultipleStorage[H], layouts []storage.Layout, seed int64) {
	type liveBlock struct {
		handle  H
		layout  storage.Layout
		pattern []byte
	}

	var live []liveBlock
	allocate := func(round int) {
		for i, layout := range layouts {
			handle, size, err := s.Allocate(layout)
			require.NoError(t, err)

			pattern := Pattern(seed+int64(round*len(layouts)+i), size)
			copy(memutils.Bytes(s.Resolve(handle), size), pattern)
			live = append(live, liveBlock{handle: handle, layout: layout, pattern: pattern})
		}
	}
	verify := func() {
		for _, block := range live {
			require.Equal(t, block.pattern, readBlock[H](s, block.handle, len(block.pattern)))
		}
	}

	allocate(0)
	allocate(1)
	verify()

	// Release every other block and fill the holes
	kept := live[:0]
	for i, block := range live {
		if i%2 == 0 {
			s.Deallocate(block.handle, block.layout)
		} else {
			kept = append(kept, block)
		}
	}
	live = kept
	verify()

	allocate(2)
	verify()

	for _, block := range live {
		s.Deallocate(block.handle, block.layout)
	}
}

// StableResolution checks that a live handle keeps resolving to the same address while other calls are
// made on the instance
func StableResolution[H any](t *testing.T, s storage.StableStorage[H], layout, oversized storage.Layout) {
	handle, _, err := s.Allocate(layout)
	require.NoError(t, err)

	first := s.Resolve(handle)
	require.Equal(t, first, s.Resolve(handle))

	if multiple, ok := s.(storage.MultipleStorage[H]); ok {
		other, _, err := multiple.Allocate(layout)
		require.NoError(t, err)
		require.NotNil(t, multiple.Resolve(other))
		require.Equal(t, first, s.Resolve(handle))

		multiple.Deallocate(other, layout)
		require.Equal(t, first, s.Resolve(handle))
	}

	if oversized.IsValid() {
		_, _, err = s.Allocate(oversized)
		require.Error(t, err)
		require.Equal(t, first, s.Resolve(handle))
	}

	s.Deallocate(handle, layout)
}

// PinnedResolution relocates the instance and checks that addresses resolved before the move still hold
// the block, and that the moved instance resolves the handle to the same address
func PinnedResolution[H any, S storage.Storage[H]](t *testing.T, s S, relocate func(S) S, layout storage.Layout, seed int64) {
	handle, size, err := s.Allocate(layout)
	require.NoError(t, err)

	ptr := s.Resolve(handle)
	pattern := Pattern(seed, size)
	copy(memutils.Bytes(ptr, size), pattern)

	moved := relocate(s)
	require.Equal(t, ptr, moved.Resolve(handle))
	require.Equal(t, pattern, append([]byte{}, memutils.Bytes(ptr, size)...))

	moved.Deallocate(handle, layout)
}

// Pattern returns size deterministic pseudo-random bytes for seed
func Pattern(seed int64, size int) []byte {
	pattern := make([]byte, size)
	rand.New(rand.NewSource(seed)).Read(pattern)
	return pattern
}

func readBlock[H any](s storage.Storage[H], handle H, size int) []byte {
	return append([]byte{}, memutils.Bytes(s.Resolve(handle), size)...)
}
