package collection_test

import (
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/storage/collection"
	"github.com/vkngwrapper/storage/storage"
	"github.com/vkngwrapper/storage/storage/heap"
	"github.com/vkngwrapper/storage/storage/inline"
	mock_storage "github.com/vkngwrapper/storage/storage/mocks"
	"go.uber.org/mock/gomock"
)

type inlineEither = collection.Either[inline.Handle, *inline.Single[int64], int64, float64]

var destroyed int

// tracked counts how many times it is destroyed in place
type tracked int64

func (t *tracked) Destroy() {
	destroyed++
}

func newInlineA(t *testing.T, value int64) *inlineEither {
	e, err := collection.NewA[inline.Handle, *inline.Single[int64], int64, float64](inline.New[int64](), value)
	require.NoError(t, err)
	return e
}

func TestEitherScenario(t *testing.T) {
	e := newInlineA(t, 42)
	require.Equal(t, collection.StateOccupied, e.State())
	require.Equal(t, collection.VariantA, e.Variant())

	a, ok := e.A()
	require.True(t, ok)
	require.Equal(t, int64(42), *a)

	value, s, err := e.TakeA()
	require.NoError(t, err)
	require.Equal(t, int64(42), value)
	require.NotNil(t, s)
	require.Equal(t, collection.StateMovedFrom, e.State())
	require.Equal(t, collection.VariantNone, e.Variant())

	_, ok = e.A()
	require.False(t, ok)

	e.Destroy()
	require.Equal(t, collection.StateGone, e.State())
}

func TestEitherMovedFromDestroyMakesNoCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := mock_storage.NewMockStorage[uint32](ctrl)

	var cell int64
	layout := storage.LayoutOf[int64]()

	s.EXPECT().Allocate(layout).Return(uint32(5), 8, nil)
	s.EXPECT().Resolve(uint32(5)).Return(unsafe.Pointer(&cell))

	e, err := collection.NewA[uint32, *mock_storage.MockStorage[uint32], tracked, float64](s, 42)
	require.NoError(t, err)
	require.Equal(t, int64(42), cell)

	s.EXPECT().Dangling().Return(uint32(0))
	s.EXPECT().Resolve(uint32(5)).Return(unsafe.Pointer(&cell))
	s.EXPECT().Deallocate(uint32(5), layout)

	destroyed = 0
	value, returned, err := e.TakeA()
	require.NoError(t, err)
	require.Equal(t, tracked(42), value)
	require.Same(t, s, returned)

	// Any storage call from here on fails the controller
	e.Destroy()
	e.Destroy()
	require.Equal(t, 0, destroyed)
	require.Equal(t, collection.StateGone, e.State())
}

func TestEitherDestroyOccupied(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := mock_storage.NewMockStorage[uint32](ctrl)

	var cell float64
	layout := storage.LayoutOf[float64]()

	s.EXPECT().Allocate(layout).Return(uint32(9), 8, nil)
	s.EXPECT().Resolve(uint32(9)).Return(unsafe.Pointer(&cell)).Times(2)
	s.EXPECT().Deallocate(uint32(9), layout)
	s.EXPECT().Dangling().Return(uint32(0))

	e, err := collection.NewB[uint32, *mock_storage.MockStorage[uint32], tracked, float64](s, 2.5)
	require.NoError(t, err)
	require.Equal(t, 2.5, cell)

	destroyed = 0
	e.Destroy()
	// float64 is not a Destroyer
	require.Equal(t, 0, destroyed)
	require.Equal(t, collection.StateGone, e.State())
	e.Destroy()
}

func TestEitherRunsDestructorOnce(t *testing.T) {
	e, err := collection.NewA[inline.Handle, *inline.Single[int64], tracked, float64](inline.New[int64](), 1)
	require.NoError(t, err)

	destroyed = 0
	e.Destroy()
	e.Destroy()
	require.Equal(t, 1, destroyed)
}

func TestEitherAllocationFailure(t *testing.T) {
	e, err := collection.NewA[inline.Handle, *inline.Single[int32], int64, float64](inline.New[int32](), 42)
	require.Nil(t, e)
	require.True(t, errors.Is(err, storage.ErrAlloc))

	var empty collection.Either[inline.Handle, *inline.Single[int32], int64, int16]
	err = empty.InitA(inline.New[int32](), 42)
	require.True(t, errors.Is(err, storage.ErrAlloc))
	require.Equal(t, collection.StateEmpty, empty.State())

	require.NoError(t, empty.InitB(inline.New[int32](), 7))
	b, ok := empty.B()
	require.True(t, ok)
	require.Equal(t, int16(7), *b)
}

func TestEitherStateErrors(t *testing.T) {
	e := newInlineA(t, 3)

	err := e.InitB(inline.New[int64](), 1.5)
	require.True(t, errors.Is(err, collection.ErrAlreadyConstructed))

	_, ok := e.B()
	require.False(t, ok)

	_, _, err = e.TakeB()
	require.True(t, errors.Is(err, collection.ErrWrongVariant))
	require.Equal(t, collection.StateOccupied, e.State())

	_, _, err = e.TakeA()
	require.NoError(t, err)

	_, _, err = e.TakeA()
	require.True(t, errors.Is(err, collection.ErrNotOccupied))

	_, err = e.Detach()
	require.True(t, errors.Is(err, collection.ErrNotOccupied))

	var empty inlineEither
	require.Equal(t, collection.StateEmpty, empty.State())
	_, _, err = empty.TakeA()
	require.True(t, errors.Is(err, collection.ErrNotOccupied))
	empty.Destroy()
	require.Equal(t, collection.StateGone, empty.State())
}

func TestEitherDetachAndReattach(t *testing.T) {
	e, err := collection.NewB[inline.Handle, *inline.Single[int64], int64, float64](inline.New[int64](), 6.25)
	require.NoError(t, err)
	require.Equal(t, "Either(B: 6.25)", e.String())

	parts, err := e.Detach()
	require.NoError(t, err)
	require.Equal(t, collection.VariantB, parts.Variant)
	require.Equal(t, storage.LayoutOf[float64](), parts.Layout)
	require.Equal(t, collection.StateMovedFrom, e.State())
	require.Equal(t, "Either(MovedFrom)", e.String())

	_, err = collection.EitherFromParts[inline.Handle, *inline.Single[int64], int64, int32](parts)
	require.Error(t, err)

	rebuilt, err := collection.EitherFromParts[inline.Handle, *inline.Single[int64], int64, float64](parts)
	require.NoError(t, err)

	b, ok := rebuilt.B()
	require.True(t, ok)
	require.Equal(t, 6.25, *b)

	rebuilt.Destroy()
}

func TestEitherOverHeap(t *testing.T) {
	s := heap.New(nil, heap.Options{})

	e, err := collection.NewA[heap.Handle, *heap.Storage, [4]uint64, uint16](s, [4]uint64{1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, 1, s.BlockCount())

	a, ok := e.A()
	require.True(t, ok)
	a[3] = 40

	value, returned, err := e.TakeA()
	require.NoError(t, err)
	require.Equal(t, [4]uint64{1, 2, 3, 40}, value)
	require.Same(t, s, returned)
	require.Equal(t, 0, s.BlockCount())

	e.Destroy()
	require.Equal(t, 0, s.BlockCount())
}
