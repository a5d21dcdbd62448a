package inline_test

import (
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/storage/memutils"
	"github.com/vkngwrapper/storage/storage"
	"github.com/vkngwrapper/storage/storage/inline"
	"github.com/vkngwrapper/storage/storagetest"
)

// block16 is a 16-byte, 4-aligned shape
type block16 = [4]uint32

func TestSingleConformance(t *testing.T) {
	storagetest.Run[inline.Handle, *inline.Single[block16]](t, storagetest.Config[inline.Handle, *inline.Single[block16]]{
		New: inline.New[block16],
		Layouts: []storage.Layout{
			storage.MustLayout(8, 4),
			storage.MustLayout(16, 4),
			storage.MustLayout(1, 1),
			storage.MustLayout(0, 1),
		},
		Oversized: storage.MustLayout(32, 4),
		Grows: []storagetest.LayoutPair{
			{Old: storage.MustLayout(8, 4), New: storage.MustLayout(16, 4)},
			{Old: storage.MustLayout(0, 1), New: storage.MustLayout(12, 2)},
		},
		Shrinks: []storagetest.LayoutPair{
			{Old: storage.MustLayout(16, 4), New: storage.MustLayout(8, 4)},
			{Old: storage.MustLayout(16, 4), New: storage.MustLayout(0, 1)},
		},
		Seed: 1,
	})
}

func TestSingleScenario(t *testing.T) {
	s := inline.New[block16]()

	handle, size, err := s.Allocate(storage.MustLayout(8, 4))
	require.NoError(t, err)
	require.GreaterOrEqual(t, size, 8)

	ptr := s.Resolve(handle)
	copy(memutils.Bytes(ptr, 8), []byte{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA})

	again := s.Resolve(handle)
	require.Equal(t, ptr, again)
	require.Equal(t, []byte{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA}, memutils.Bytes(again, 8))

	_, _, err = s.Allocate(storage.MustLayout(32, 4))
	require.True(t, errors.Is(err, storage.ErrAlloc))
	require.Equal(t, []byte{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA}, memutils.Bytes(s.Resolve(handle), 8))

	grown, size, err := s.Grow(handle, storage.MustLayout(8, 4), storage.MustLayout(16, 4))
	require.NoError(t, err)
	require.GreaterOrEqual(t, size, 16)
	require.Equal(t, []byte{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA}, memutils.Bytes(s.Resolve(grown), 8))

	s.Deallocate(grown, storage.MustLayout(16, 4))
}

func TestSingleRejectsStricterAlignment(t *testing.T) {
	s := inline.New[block16]()

	_, _, err := s.Allocate(storage.MustLayout(4, 8))
	require.True(t, errors.Is(err, storage.ErrAlloc))

	handle, _, err := s.Allocate(storage.MustLayout(16, 4))
	require.NoError(t, err)
	*(*uint32)(s.Resolve(handle)) = 99

	_, _, err = s.Shrink(handle, storage.MustLayout(16, 4), storage.MustLayout(8, 16))
	require.True(t, errors.Is(err, storage.ErrAlloc))

	_, _, err = s.Grow(handle, storage.MustLayout(16, 4), storage.MustLayout(17, 4))
	require.True(t, errors.Is(err, storage.ErrAlloc))
	require.Equal(t, uint32(99), *(*uint32)(s.Resolve(handle)))
}

func TestSingleSecondAllocationReusesBlock(t *testing.T) {
	s := inline.New[uint64]()
	layout := storage.LayoutOf[uint64]()

	first, _, err := s.Allocate(layout)
	require.NoError(t, err)
	*(*uint64)(s.Resolve(first)) = 7

	second, _, err := s.Allocate(layout)
	require.NoError(t, err)
	*(*uint64)(s.Resolve(second)) = 8

	// The first handle was invalidated and its block handed out again
	require.Equal(t, s.Resolve(first), s.Resolve(second))
	require.Equal(t, s.Dangling(), second)
}

func TestSingleDoesNotPin(t *testing.T) {
	s := inline.New[uint64]()
	handle, _, err := s.Allocate(storage.LayoutOf[uint64]())
	require.NoError(t, err)
	*(*uint64)(s.Resolve(handle)) = 1234

	moved := *s
	require.NotEqual(t, s.Resolve(handle), moved.Resolve(handle))
	require.Equal(t, uint64(1234), *(*uint64)(moved.Resolve(handle)))

	_, pinned := any(s).(storage.PinningStorage[inline.Handle])
	require.False(t, pinned)
	_, multiple := any(s).(storage.MultipleStorage[inline.Handle])
	require.False(t, multiple)
}

func TestSingleGrowZeroed(t *testing.T) {
	s := inline.New[block16]()
	handle, _, err := s.Allocate(storage.MustLayout(4, 4))
	require.NoError(t, err)

	ptr := s.Resolve(handle)
	copy(memutils.Bytes(ptr, 16), storagetest.Pattern(3, 16))

	grown, size, err := s.GrowZeroed(handle, storage.MustLayout(4, 4), storage.MustLayout(12, 4))
	require.NoError(t, err)
	require.Equal(t, 16, size)

	contents := memutils.Bytes(s.Resolve(grown), size)
	require.Equal(t, storagetest.Pattern(3, 4), contents[:4])
	require.Equal(t, make([]byte, 12), contents[4:])
}

func TestSingleIntrospection(t *testing.T) {
	s := inline.New[block16]()
	require.Equal(t, storage.MustLayout(16, 4), s.Layout())
	require.Equal(t, "InlineSingle{Size: 16, Align: 4}", s.String())

	var stats memutils.Statistics
	s.AddStatistics(&stats)
	require.Equal(t, memutils.Statistics{CapacityBytes: 16}, stats)

	writer := jwriter.NewWriter()
	s.PrintDetailedMap(&writer)
	require.NoError(t, writer.Error())
	require.JSONEq(t, `{"Type":"InlineSingle","TotalBytes":16,"Alignment":4,"Markers":"StableResolution"}`, string(writer.Bytes()))
}

func TestSingleHoldsPointers(t *testing.T) {
	type node struct {
		Name  *string
		Value int
	}

	s := inline.New[node]()
	handle, _, err := s.Allocate(storage.LayoutOf[node]())
	require.NoError(t, err)

	name := "inline"
	*(*node)(s.Resolve(handle)) = node{Name: &name, Value: 3}

	value := (*node)(unsafe.Pointer(s.Resolve(handle)))
	require.Equal(t, "inline", *value.Name)
	require.Equal(t, 3, value.Value)
}

func TestSingleRejectsZeroLayout(t *testing.T) {
	s := inline.New[block16]()

	_, _, err := s.Allocate(storage.Layout{})
	require.True(t, errors.Is(err, storage.ErrAlloc))
	_, _, err = s.AllocateZeroed(storage.Layout{})
	require.True(t, errors.Is(err, storage.ErrAlloc))

	handle, _, err := s.Allocate(storage.MustLayout(0, 1))
	require.NoError(t, err)
	require.Equal(t, []byte{}, memutils.Bytes(s.Resolve(handle), 0))
}
