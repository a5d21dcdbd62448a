package heap

import (
	"math"
	"strconv"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/storage/internal/utils"
	"github.com/vkngwrapper/storage/memutils"
	"github.com/vkngwrapper/storage/storage"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

// Handle identifies a block in a Storage. Handles are never reused by an instance, and the zero Handle is
// the dangling handle.
type Handle uint64

const danglingHandle Handle = 0

// Options configures a Storage. The zero value is valid.
type Options struct {
	// ExternallySynchronized disables the internal lock. Set it only when the consumer guarantees that
	// no two calls on the instance run at the same time.
	ExternallySynchronized bool
	// MaxBytes caps the sum of the usable sizes of live blocks. Requests that would exceed it fail with
	// storage.ErrAlloc. 0 means unbounded.
	MaxBytes int
}

type block struct {
	backing []byte
	offset  int
	usable  int
	layout  storage.Layout
}

func (b *block) pointer() unsafe.Pointer {
	return unsafe.Pointer(&b.backing[b.offset])
}

type heapState struct {
	logger *slog.Logger
	mutex  utils.OptionalRWMutex

	maxBytes          int
	usedBytes         int
	failedAllocations int
	nextHandle        Handle
	blocks            *swiss.Map[Handle, *block]
}

// Storage is a storage.Storage whose blocks are individually allocated from the Go heap. It can hold any
// number of live blocks, resolves each of them to the same address for as long as it lives, and a Storage
// value only refers to its blocks, so copying it moves none of them: it declares every marker.
//
// Blocks are byte slices kept reachable by the instance and are not scanned for pointers.
type Storage struct {
	state *heapState
}

var _ storage.MultiplePinningStorage[Handle] = &Storage{}

// New creates a Storage
func New(logger *slog.Logger, options Options) *Storage {
	if logger == nil {
		logger = slog.Default()
	}

	return &Storage{
		state: &heapState{
			logger:     logger,
			mutex:      utils.OptionalRWMutex{UseMutex: !options.ExternallySynchronized},
			maxBytes:   options.MaxBytes,
			nextHandle: danglingHandle + 1,
			blocks:     swiss.NewMap[Handle, *block](42),
		},
	}
}

func (s *Storage) Dangling() Handle {
	return danglingHandle
}

func (s *Storage) Allocate(layout storage.Layout) (Handle, int, error) {
	s.state.logger.Debug("Storage::Allocate", slog.Int("Size", int(layout.Size())), slog.Int("Align", int(layout.Align())))

	s.state.mutex.Lock()
	defer s.state.mutex.Unlock()

	handle, b, err := s.allocateBlock(layout)
	if err != nil {
		return danglingHandle, 0, err
	}

	return handle, b.usable, nil
}

func (s *Storage) allocateBlock(layout storage.Layout) (Handle, *block, error) {
	if !layout.IsValid() {
		s.state.failedAllocations++
		return danglingHandle, nil, storage.ErrAlloc
	}
	memutils.DebugCheckPow2(layout.Align(), "layout alignment")

	usable := int(layout.PadToAlign().Size())
	align := int(layout.Align())

	if usable > math.MaxInt-align-memutils.DebugMargin ||
		(s.state.maxBytes > 0 && usable > s.state.maxBytes-s.state.usedBytes) {
		s.state.failedAllocations++
		s.state.logger.Debug("    Storage::Allocate FAILED", slog.Int("UsedBytes", s.state.usedBytes), slog.Int("MaxBytes", s.state.maxBytes))
		return danglingHandle, nil, storage.ErrAlloc
	}

	backing := make([]byte, usable+align+memutils.DebugMargin)
	offset := memutils.AlignPointerOffset(unsafe.Pointer(&backing[0]), uint(align))
	memutils.WriteMagicValue(unsafe.Pointer(&backing[0]), offset+usable)

	b := &block{
		backing: backing,
		offset:  offset,
		usable:  usable,
		layout:  layout,
	}

	handle := s.state.nextHandle
	s.state.nextHandle++
	s.state.blocks.Put(handle, b)
	s.state.usedBytes += usable

	memutils.DebugValidate(s.state)
	return handle, b, nil
}

// lookup fetches a live block. In debug builds, a handle that does not belong to a live block of this
// instance, or a layout that differs from the block's, panics.
func (s *Storage) lookup(handle Handle, layout *storage.Layout) *block {
	b, ok := s.state.blocks.Get(handle)
	if memutils.DebugEnabled {
		if !ok {
			memutils.DebugFailf("handle %d does not identify a live block of this storage", handle)
		} else if layout != nil && *layout != b.layout {
			memutils.DebugFailf("handle %d was allocated with %s, but %s was provided", handle, b.layout, *layout)
		}
	}
	return b
}

func (s *Storage) Deallocate(handle Handle, layout storage.Layout) {
	s.state.logger.Debug("Storage::Deallocate", slog.Uint64("Handle", uint64(handle)))

	s.state.mutex.Lock()
	defer s.state.mutex.Unlock()

	b := s.lookup(handle, &layout)
	if b == nil {
		return
	}

	s.state.blocks.Delete(handle)
	s.state.usedBytes -= b.usable

	memutils.DebugValidate(s.state)
}

func (s *Storage) Resolve(handle Handle) unsafe.Pointer {
	s.state.mutex.RLock()
	defer s.state.mutex.RUnlock()

	b := s.lookup(handle, nil)
	if b == nil {
		return nil
	}
	return b.pointer()
}

func (s *Storage) Grow(handle Handle, oldLayout, newLayout storage.Layout) (Handle, int, error) {
	s.state.logger.Debug("Storage::Grow", slog.Uint64("Handle", uint64(handle)), slog.Int("Size", int(newLayout.Size())))

	return storage.GrowByReallocation[Handle](s, handle, oldLayout, newLayout)
}

func (s *Storage) GrowZeroed(handle Handle, oldLayout, newLayout storage.Layout) (Handle, int, error) {
	s.state.logger.Debug("Storage::GrowZeroed", slog.Uint64("Handle", uint64(handle)), slog.Int("Size", int(newLayout.Size())))

	return storage.GrowZeroedByReallocation[Handle](s, handle, oldLayout, newLayout)
}

// Shrink keeps the block in place when its address already satisfies the new alignment, and reallocates
// otherwise
func (s *Storage) Shrink(handle Handle, oldLayout, newLayout storage.Layout) (Handle, int, error) {
	s.state.logger.Debug("Storage::Shrink", slog.Uint64("Handle", uint64(handle)), slog.Int("Size", int(newLayout.Size())))

	if !newLayout.IsValid() {
		return handle, 0, storage.ErrAlloc
	}

	s.state.mutex.Lock()
	b := s.lookup(handle, &oldLayout)
	if b != nil && memutils.IsAligned(b.pointer(), newLayout.Align()) {
		b.layout = newLayout
		s.state.mutex.Unlock()
		return handle, b.usable, nil
	}
	s.state.mutex.Unlock()

	return storage.ShrinkByReallocation[Handle](s, handle, oldLayout, newLayout)
}

func (s *Storage) AllocateZeroed(layout storage.Layout) (Handle, int, error) {
	// Fresh slices from make are already zeroed
	return s.Allocate(layout)
}

// MultipleAllocation marks Storage as a storage.MultipleStorage
func (s *Storage) MultipleAllocation() {}

// StableResolution marks Storage as a storage.StableStorage
func (s *Storage) StableResolution() {}

// PinnedResolution marks Storage as a storage.PinningStorage
func (s *Storage) PinnedResolution() {}

// BlockCount returns the number of live blocks
func (s *Storage) BlockCount() int {
	s.state.mutex.RLock()
	defer s.state.mutex.RUnlock()

	return s.state.blocks.Count()
}

// Statistics sums this instance's blocks into stats
func (s *Storage) Statistics(stats *memutils.DetailedStatistics) {
	s.state.mutex.RLock()
	defer s.state.mutex.RUnlock()

	stats.CapacityBytes += s.state.maxBytes
	stats.FailedAllocations += s.state.failedAllocations
	s.state.blocks.Iter(func(handle Handle, b *block) bool {
		stats.AddBlock(int(b.layout.Size()), b.usable)
		return false
	})
}

// CheckCorruption verifies the debug margin written after every live block. It returns nil unless
// the debug_mem_utils build tag is present and a margin was overwritten.
func (s *Storage) CheckCorruption() error {
	s.state.logger.Debug("Storage::CheckCorruption")

	s.state.mutex.RLock()
	defer s.state.mutex.RUnlock()

	var err error
	s.state.blocks.Iter(func(handle Handle, b *block) bool {
		if !memutils.ValidateMagicValue(unsafe.Pointer(&b.backing[0]), b.offset+b.usable) {
			err = errors.Wrapf(memutils.CorruptionError, "block %d (%s)", handle, b.layout)
			return true
		}
		return false
	})
	return err
}

// PrintDetailedMap writes a JSON object describing the instance and every live block, ordered by handle
func (s *Storage) PrintDetailedMap(writer *jwriter.Writer) {
	s.state.mutex.RLock()
	defer s.state.mutex.RUnlock()

	objState := writer.Object()
	defer objState.End()

	objState.Name("Type").String("Heap")
	objState.Name("Markers").String(storage.Capabilities[Handle](s).String())
	objState.Name("UsedBytes").Int(s.state.usedBytes)
	objState.Name("MaxBytes").Int(s.state.maxBytes)

	handles := make([]Handle, 0, s.state.blocks.Count())
	s.state.blocks.Iter(func(handle Handle, b *block) bool {
		handles = append(handles, handle)
		return false
	})
	slices.Sort(handles)

	blocksObj := objState.Name("Blocks").Object()
	defer blocksObj.End()

	for _, handle := range handles {
		b, _ := s.state.blocks.Get(handle)

		blockObj := blocksObj.Name(strconv.FormatUint(uint64(handle), 10)).Object()
		blockObj.Name("Size").Int(int(b.layout.Size()))
		blockObj.Name("Align").Int(int(b.layout.Align()))
		blockObj.Name("UsableBytes").Int(b.usable)
		blockObj.End()
	}
}

func (m *heapState) Validate() error {
	sum := 0
	m.blocks.Iter(func(handle Handle, b *block) bool {
		sum += b.usable
		return false
	})

	if sum != m.usedBytes {
		return errors.Errorf("the recorded number of used bytes (%d) does not match the sum of live block sizes (%d)", m.usedBytes, sum)
	}

	if m.maxBytes > 0 && m.usedBytes > m.maxBytes {
		return errors.Errorf("used bytes (%d) exceed the configured maximum (%d)", m.usedBytes, m.maxBytes)
	}

	return nil
}
