package storage

import (
	"strings"
	"unsafe"
)

// Storage hands out blocks of memory identified by opaque handles of type H instead of by address. A handle
// is meaningful only to the instance that produced it, and it must be resolved through that instance each
// time its address is needed.
//
// Every method may be called through a shared reference: implementations that want to be safe for
// concurrent use must synchronize internally. The interface never requires a consumer to take an
// exclusive lock around a call.
//
// Unless the implementation also satisfies one of the marker interfaces, the following invalidation rules
// apply:
//
//   - A successful Allocate or AllocateZeroed invalidates every handle previously returned by the instance.
//   - A successful Grow, GrowZeroed or Shrink invalidates the handle that was passed in.
//   - An address returned by Resolve is valid until the next call of any method on the instance, and only
//     until the instance itself is moved.
//
// Methods that accept a handle assume it is valid and belongs to this instance, and that the layout passed
// alongside it is the one last used to allocate, grow or shrink it. These preconditions are not checked
// and violating them is undefined behavior. Builds using the debug_mem_utils tag may check some of them.
//
// Blocks are not scanned by the garbage collector unless an implementation says otherwise. Values that
// contain Go pointers must not be written into them.
type Storage[H any] interface {
	// Dangling returns a handle that is never valid for Resolve. It has no side effects.
	Dangling() H

	// Allocate requests a block described by layout. On success it returns the handle and the usable size
	// of the block, which is at least layout.Size(). On failure it returns ErrAlloc and nothing changes.
	Allocate(layout Layout) (H, int, error)
	// Deallocate releases the block identified by handle. layout must be the layout the block was last
	// allocated, grown or shrunk with.
	Deallocate(handle H, layout Layout)
	// Resolve returns the current address of the block identified by handle. It does not invalidate the
	// handle.
	Resolve(handle H) unsafe.Pointer

	// Grow enlarges the block identified by handle from oldLayout to newLayout, whose size must be no
	// smaller than oldLayout's. On success the first oldLayout.Size() bytes are preserved and a possibly
	// different handle is returned in place of the old one. On failure it returns ErrAlloc and the old
	// handle and its contents are unchanged.
	Grow(handle H, oldLayout, newLayout Layout) (H, int, error)
	// Shrink is the mirror of Grow: newLayout's size must be no larger than oldLayout's and the first
	// newLayout.Size() bytes are preserved.
	Shrink(handle H, oldLayout, newLayout Layout) (H, int, error)

	// AllocateZeroed behaves like Allocate, and additionally guarantees that every usable byte of the new
	// block is zero. DefaultAllocateZeroed implements it on top of Allocate.
	AllocateZeroed(layout Layout) (H, int, error)
	// GrowZeroed behaves like Grow, and additionally guarantees that every usable byte past
	// oldLayout.Size() is zero. DefaultGrowZeroed implements it on top of Grow.
	GrowZeroed(handle H, oldLayout, newLayout Layout) (H, int, error)
}

// MultipleStorage is satisfied by a Storage that can hold any number of live blocks at once. Allocate and
// AllocateZeroed never invalidate other live handles, and Deallocate never invalidates handles other than
// its argument. Consumers holding more than one handle into the same instance, like trees and graphs,
// require it.
type MultipleStorage[H any] interface {
	Storage[H]

	// MultipleAllocation is a marker method and is never called
	MultipleAllocation()
}

// StableStorage is satisfied by a Storage where resolving a valid handle returns the same address every
// time, regardless of any other calls made on the instance in between, including calls that resolve
// other handles. Addresses still do not survive a move of the instance itself.
type StableStorage[H any] interface {
	Storage[H]

	// StableResolution is a marker method and is never called
	StableResolution()
}

// PinningStorage refines StableStorage: resolved addresses additionally survive a move of the instance.
type PinningStorage[H any] interface {
	StableStorage[H]

	// PinnedResolution is a marker method and is never called
	PinnedResolution()
}

// MultipleStableStorage combines MultipleStorage and StableStorage
type MultipleStableStorage[H any] interface {
	MultipleStorage[H]
	StableStorage[H]
}

// MultiplePinningStorage declares every marker
type MultiplePinningStorage[H any] interface {
	MultipleStorage[H]
	PinningStorage[H]
}

// Markers is a bit set reporting which marker interfaces a Storage satisfies
type Markers uint32

const (
	MarkerMultiple Markers = 1 << iota
	MarkerStable
	MarkerPinned
)

var markerMapping = map[Markers]string{
	MarkerMultiple: "MultipleAllocation",
	MarkerStable:   "StableResolution",
	MarkerPinned:   "PinnedResolution",
}

func (m Markers) String() string {
	if m == 0 {
		return "None"
	}

	var names []string
	for bit := MarkerMultiple; bit <= MarkerPinned; bit <<= 1 {
		if m&bit != 0 {
			names = append(names, markerMapping[bit])
		}
	}
	return strings.Join(names, "|")
}

// Has returns true if every marker in other is present in m
func (m Markers) Has(other Markers) bool {
	return m&other == other
}

// Capabilities reports the markers declared by s
func Capabilities[H any](s Storage[H]) Markers {
	var markers Markers

	if _, ok := s.(MultipleStorage[H]); ok {
		markers |= MarkerMultiple
	}

	if _, ok := s.(StableStorage[H]); ok {
		markers |= MarkerStable
	}

	if _, ok := s.(PinningStorage[H]); ok {
		markers |= MarkerPinned
	}

	return markers
}
