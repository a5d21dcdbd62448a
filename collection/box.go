package collection

import (
	"fmt"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/storage/storage"
)

// Box holds a single value of type T in a block of the storage instance it owns. It follows the same
// lifecycle as Either.
type Box[H any, S storage.Storage[H], T any] struct {
	owner owner[H, S]
}

// NewBox constructs a Box holding value in a block allocated from s
func NewBox[H any, S storage.Storage[H], T any](s S, value T) (*Box[H, S, T], error) {
	b := &Box[H, S, T]{}
	ptr, err := b.owner.construct(s, storage.LayoutOf[T](), VariantA, false)
	if err != nil {
		return nil, err
	}

	*(*T)(ptr) = value
	return b, nil
}

// NewBoxZeroed constructs a Box holding the zero T, using s.AllocateZeroed rather than writing the value
func NewBoxZeroed[H any, S storage.Storage[H], T any](s S) (*Box[H, S, T], error) {
	b := &Box[H, S, T]{}
	if _, err := b.owner.construct(s, storage.LayoutOf[T](), VariantA, true); err != nil {
		return nil, err
	}
	return b, nil
}

// BoxFromParts rebuilds a Box from parts obtained from Box.Detach with the same type arguments
func BoxFromParts[H any, S storage.Storage[H], T any](parts Parts[H, S]) (*Box[H, S, T], error) {
	if expected := storage.LayoutOf[T](); parts.Layout != expected {
		return nil, errors.Newf("parts were allocated with %s, but the box needs %s", parts.Layout, expected)
	}

	return &Box[H, S, T]{
		owner: owner[H, S]{
			storage: parts.Storage,
			handle:  parts.Handle,
			layout:  parts.Layout,
			variant: VariantA,
			state:   StateOccupied,
		},
	}, nil
}

func (b *Box[H, S, T]) State() State {
	return b.owner.state
}

// Get returns a pointer to the held value. The pointer must not be used after any other call on the Box,
// or on its storage.
func (b *Box[H, S, T]) Get() (*T, bool) {
	ptr, err := b.owner.resolve(VariantA)
	if err != nil {
		return nil, false
	}
	return (*T)(ptr), true
}

// Set replaces the held value, destroying the old one in place first
func (b *Box[H, S, T]) Set(value T) error {
	ptr, err := b.owner.resolve(VariantA)
	if err != nil {
		return err
	}

	destroyInPlace((*T)(ptr))
	*(*T)(ptr) = value
	return nil
}

// Take moves the value out of the Box, releases its block and hands back the storage instance
func (b *Box[H, S, T]) Take() (T, S, error) {
	return take[T, H, S](&b.owner, VariantA)
}

// Detach transfers the storage instance and the still-allocated block to the caller
func (b *Box[H, S, T]) Detach() (Parts[H, S], error) {
	return b.owner.detach(VariantA)
}

// Destroy calls Destroy on the value in place when it implements Destroyer, then deallocates its block.
// It makes no storage calls unless the Box is Occupied.
func (b *Box[H, S, T]) Destroy() {
	b.owner.destroy(func(ptr unsafe.Pointer, _ Variant) {
		destroyInPlace((*T)(ptr))
	})
}

func (b *Box[H, S, T]) String() string {
	if value, ok := b.Get(); ok {
		return fmt.Sprintf("Box(%v)", *value)
	}
	return fmt.Sprintf("Box(%s)", b.owner.state)
}
