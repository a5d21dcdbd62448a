package storage_test

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/storage/memutils"
	"github.com/vkngwrapper/storage/storage"
	"github.com/vkngwrapper/storage/storage/heap"
	"github.com/vkngwrapper/storage/storage/inline"
)

func TestNewLayout(t *testing.T) {
	layout, err := storage.NewLayout(8, 4)
	require.NoError(t, err)
	require.Equal(t, uint(8), layout.Size())
	require.Equal(t, uint(4), layout.Align())
	require.True(t, layout.IsValid())
	require.Equal(t, "Layout{Size: 8, Align: 4}", layout.String())

	empty, err := storage.NewLayout(0, 1)
	require.NoError(t, err)
	require.Equal(t, uint(0), empty.Size())
}

func TestNewLayoutRejectsInvalid(t *testing.T) {
	_, err := storage.NewLayout(8, 0)
	require.True(t, errors.Is(err, storage.ErrInvalidLayout))
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))

	_, err = storage.NewLayout(8, 12)
	require.True(t, errors.Is(err, storage.ErrInvalidLayout))
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))

	// Rounding up to the alignment would overflow
	_, err = storage.NewLayout(math.MaxInt, 8)
	require.True(t, errors.Is(err, storage.ErrInvalidLayout))
	require.True(t, errors.Is(err, memutils.OverflowError))

	_, err = storage.NewLayout(math.MaxInt+1, 1)
	require.True(t, errors.Is(err, storage.ErrInvalidLayout))

	require.False(t, storage.Layout{}.IsValid())
	require.Panics(t, func() { storage.MustLayout(1, 3) })
}

func TestLayoutOf(t *testing.T) {
	type pair struct {
		A uint32
		B uint64
	}

	require.Equal(t, storage.MustLayout(16, 8), storage.LayoutOf[pair]())
	require.Equal(t, storage.MustLayout(1, 1), storage.LayoutOf[byte]())
	require.Equal(t, storage.MustLayout(0, 1), storage.LayoutOf[struct{}]())

	array, err := storage.ArrayLayout[uint32](10)
	require.NoError(t, err)
	require.Equal(t, storage.MustLayout(40, 4), array)

	_, err = storage.ArrayLayout[uint64](math.MaxUint / 4)
	require.True(t, errors.Is(err, storage.ErrInvalidLayout))
	require.True(t, errors.Is(err, memutils.OverflowError))
}

func TestLayoutFitsAndPadding(t *testing.T) {
	block := storage.MustLayout(16, 4)

	require.True(t, storage.MustLayout(8, 4).Fits(block))
	require.True(t, storage.MustLayout(16, 1).Fits(block))
	require.False(t, storage.MustLayout(32, 4).Fits(block))
	require.False(t, storage.MustLayout(8, 8).Fits(block))

	require.Equal(t, storage.MustLayout(16, 8), storage.MustLayout(9, 8).PadToAlign())
	require.Equal(t, storage.MustLayout(0, 8), storage.MustLayout(0, 8).PadToAlign())
}

func TestCapabilities(t *testing.T) {
	require.Equal(t, storage.MarkerStable, storage.Capabilities[inline.Handle](inline.New[uint64]()))
	require.Equal(t, "StableResolution", storage.MarkerStable.String())

	all := storage.Capabilities[heap.Handle](heap.New(nil, heap.Options{}))
	require.Equal(t, storage.MarkerMultiple|storage.MarkerStable|storage.MarkerPinned, all)
	require.True(t, all.Has(storage.MarkerMultiple|storage.MarkerPinned))
	require.Equal(t, "MultipleAllocation|StableResolution|PinnedResolution", all.String())

	require.Equal(t, "None", storage.Markers(0).String())
	require.False(t, storage.MarkerStable.Has(storage.MarkerPinned))
}
