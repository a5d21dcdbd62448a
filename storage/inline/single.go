package inline

import (
	"fmt"
	"unsafe"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/storage/memutils"
	"github.com/vkngwrapper/storage/storage"
)

// Handle is the handle type of Single. A Single has exactly one block, so the handle carries no
// information and every Handle value, including the dangling one, is the same.
type Handle struct{}

// Single is a storage.Storage backed by a single block embedded in the Single itself, sized and aligned
// for one value of type T. It keeps no bookkeeping beyond the block: Allocate succeeds whenever the
// request fits in a T, and a second Allocate hands back the same block, invalidating the first.
//
// The block is part of the Single, so resolved addresses stay the same for as long as the Single is not
// moved, which makes it a storage.StableStorage. Copying the Single moves the block, so it does not pin.
//
// Because the block is typed as T, the garbage collector scans it as a T: values stored in it may
// contain Go pointers only where T does.
//
// Single performs no synchronization.
type Single[T any] struct {
	block T
}

var _ storage.StableStorage[Handle] = &Single[uint64]{}

// New returns an empty Single. The zero value of Single is also ready to use.
func New[T any]() *Single[T] {
	return &Single[T]{}
}

// Layout returns the layout of the embedded block
func (s *Single[T]) Layout() storage.Layout {
	return storage.LayoutOf[T]()
}

func (s *Single[T]) blockSize() int {
	return int(unsafe.Sizeof(s.block))
}

func (s *Single[T]) fits(layout storage.Layout) bool {
	return layout.IsValid() && layout.Fits(s.Layout())
}

func (s *Single[T]) Dangling() Handle {
	return Handle{}
}

func (s *Single[T]) Allocate(layout storage.Layout) (Handle, int, error) {
	if !s.fits(layout) {
		return Handle{}, 0, storage.ErrAlloc
	}

	return Handle{}, s.blockSize(), nil
}

// Deallocate does nothing: the block lives exactly as long as the Single
func (s *Single[T]) Deallocate(handle Handle, layout storage.Layout) {
	if memutils.DebugEnabled && !s.fits(layout) {
		memutils.DebugFailf("deallocating %s, which could never have been allocated from %s", layout, s)
	}
}

// Resolve returns the address of the embedded block
func (s *Single[T]) Resolve(handle Handle) unsafe.Pointer {
	return unsafe.Pointer(&s.block)
}

func (s *Single[T]) Grow(handle Handle, oldLayout, newLayout storage.Layout) (Handle, int, error) {
	if memutils.DebugEnabled && newLayout.Size() < oldLayout.Size() {
		memutils.DebugFailf("%s must not be smaller than %s", newLayout, oldLayout)
	}

	if !s.fits(newLayout) {
		return handle, 0, storage.ErrAlloc
	}

	return Handle{}, s.blockSize(), nil
}

func (s *Single[T]) Shrink(handle Handle, oldLayout, newLayout storage.Layout) (Handle, int, error) {
	if memutils.DebugEnabled && newLayout.Size() > oldLayout.Size() {
		memutils.DebugFailf("%s must not be larger than %s", newLayout, oldLayout)
	}

	// A smaller size always fits, but the alignment may still be too strict
	if !s.fits(newLayout) {
		return handle, 0, storage.ErrAlloc
	}

	return Handle{}, s.blockSize(), nil
}

func (s *Single[T]) AllocateZeroed(layout storage.Layout) (Handle, int, error) {
	if !s.fits(layout) {
		return Handle{}, 0, storage.ErrAlloc
	}

	var zero T
	s.block = zero

	return Handle{}, s.blockSize(), nil
}

func (s *Single[T]) GrowZeroed(handle Handle, oldLayout, newLayout storage.Layout) (Handle, int, error) {
	newHandle, size, err := s.Grow(handle, oldLayout, newLayout)
	if err != nil {
		return handle, 0, err
	}

	oldSize := int(oldLayout.Size())
	memutils.ZeroMemory(unsafe.Add(s.Resolve(newHandle), oldSize), size-oldSize)

	return newHandle, size, nil
}

// StableResolution marks Single as a storage.StableStorage
func (s *Single[T]) StableResolution() {}

// AddStatistics reports the block as capacity. Single does not track whether its block is in use.
func (s *Single[T]) AddStatistics(stats *memutils.Statistics) {
	stats.CapacityBytes += s.blockSize()
}

// PrintDetailedMap writes a JSON object describing the block
func (s *Single[T]) PrintDetailedMap(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	layout := s.Layout()
	obj.Name("Type").String("InlineSingle")
	obj.Name("TotalBytes").Int(int(layout.Size()))
	obj.Name("Alignment").Int(int(layout.Align()))
	obj.Name("Markers").String(storage.Capabilities[Handle](s).String())
}

func (s *Single[T]) String() string {
	layout := s.Layout()
	return fmt.Sprintf("InlineSingle{Size: %d, Align: %d}", layout.Size(), layout.Align())
}
