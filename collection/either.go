package collection

import (
	"fmt"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/storage/storage"
)

// Either holds a value of type A or of type B in a block of the storage instance it owns. It works over
// any storage.Storage: it keeps exactly one handle, resolves it again whenever it needs the value, and
// never keeps a resolved address between calls, so it needs none of the marker guarantees.
//
// The value lives in storage memory, so A and B must not contain Go pointers unless the backend's
// blocks are scanned by the garbage collector (see storage.Storage).
//
// An Either is Empty until InitA or InitB succeeds, Occupied until its value is transferred out with
// TakeA, TakeB or Detach, and Gone after Destroy. The zero Either is Empty.
type Either[H any, S storage.Storage[H], A any, B any] struct {
	owner owner[H, S]
}

// NewA constructs an Either holding a in a block allocated from s
func NewA[H any, S storage.Storage[H], A any, B any](s S, a A) (*Either[H, S, A, B], error) {
	e := &Either[H, S, A, B]{}
	if err := e.InitA(s, a); err != nil {
		return nil, err
	}
	return e, nil
}

// NewB constructs an Either holding b in a block allocated from s
func NewB[H any, S storage.Storage[H], A any, B any](s S, b B) (*Either[H, S, A, B], error) {
	e := &Either[H, S, A, B]{}
	if err := e.InitB(s, b); err != nil {
		return nil, err
	}
	return e, nil
}

// EitherFromParts rebuilds an Either from parts obtained from Either.Detach with the same type arguments
func EitherFromParts[H any, S storage.Storage[H], A any, B any](parts Parts[H, S]) (*Either[H, S, A, B], error) {
	var expected storage.Layout
	switch parts.Variant {
	case VariantA:
		expected = storage.LayoutOf[A]()
	case VariantB:
		expected = storage.LayoutOf[B]()
	default:
		return nil, errors.Wrapf(ErrWrongVariant, "parts hold variant %s", parts.Variant)
	}

	if parts.Layout != expected {
		return nil, errors.Newf("parts were allocated with %s, but variant %s needs %s", parts.Layout, parts.Variant, expected)
	}

	return &Either[H, S, A, B]{
		owner: owner[H, S]{
			storage: parts.Storage,
			handle:  parts.Handle,
			layout:  parts.Layout,
			variant: parts.Variant,
			state:   StateOccupied,
		},
	}, nil
}

// InitA constructs a into an Empty Either. If allocation fails, the Either stays Empty and the error wraps
// storage.ErrAlloc.
func (e *Either[H, S, A, B]) InitA(s S, a A) error {
	ptr, err := e.owner.construct(s, storage.LayoutOf[A](), VariantA, false)
	if err != nil {
		return err
	}

	*(*A)(ptr) = a
	return nil
}

// InitB constructs b into an Empty Either. If allocation fails, the Either stays Empty and the error wraps
// storage.ErrAlloc.
func (e *Either[H, S, A, B]) InitB(s S, b B) error {
	ptr, err := e.owner.construct(s, storage.LayoutOf[B](), VariantB, false)
	if err != nil {
		return err
	}

	*(*B)(ptr) = b
	return nil
}

// State returns the lifecycle state of the Either
func (e *Either[H, S, A, B]) State() State {
	return e.owner.state
}

// Variant returns the variant of the held value, or VariantNone if the Either is not Occupied
func (e *Either[H, S, A, B]) Variant() Variant {
	if e.owner.state != StateOccupied {
		return VariantNone
	}
	return e.owner.variant
}

// A returns a pointer to the held value if it is an A. The pointer must not be used after any other call
// on the Either, or on its storage.
func (e *Either[H, S, A, B]) A() (*A, bool) {
	ptr, err := e.owner.resolve(VariantA)
	if err != nil {
		return nil, false
	}
	return (*A)(ptr), true
}

// B returns a pointer to the held value if it is a B. The pointer must not be used after any other call
// on the Either, or on its storage.
func (e *Either[H, S, A, B]) B() (*B, bool) {
	ptr, err := e.owner.resolve(VariantB)
	if err != nil {
		return nil, false
	}
	return (*B)(ptr), true
}

// TakeA moves the held A out of the Either, releases its block and hands back the storage instance. The
// Either is MovedFrom afterward.
func (e *Either[H, S, A, B]) TakeA() (A, S, error) {
	return take[A, H, S](&e.owner, VariantA)
}

// TakeB moves the held B out of the Either, releases its block and hands back the storage instance. The
// Either is MovedFrom afterward.
func (e *Either[H, S, A, B]) TakeB() (B, S, error) {
	return take[B, H, S](&e.owner, VariantB)
}

// Detach transfers the storage instance and the still-allocated block to the caller without touching the
// value. The Either is MovedFrom afterward and its Destroy will release nothing.
func (e *Either[H, S, A, B]) Detach() (Parts[H, S], error) {
	return e.owner.detach(VariantNone)
}

// Destroy releases the held value, if any: it calls Destroy on the value in place when it implements
// Destroyer, then deallocates the block with the layout it was constructed with. Destroying an Either that
// is Empty, MovedFrom or already Gone makes no storage calls.
func (e *Either[H, S, A, B]) Destroy() {
	e.owner.destroy(func(ptr unsafe.Pointer, variant Variant) {
		if variant == VariantA {
			destroyInPlace((*A)(ptr))
		} else {
			destroyInPlace((*B)(ptr))
		}
	})
}

func (e *Either[H, S, A, B]) String() string {
	if a, ok := e.A(); ok {
		return fmt.Sprintf("Either(A: %v)", *a)
	}
	if b, ok := e.B(); ok {
		return fmt.Sprintf("Either(B: %v)", *b)
	}
	return fmt.Sprintf("Either(%s)", e.owner.state)
}

func take[T any, H any, S storage.Storage[H]](o *owner[H, S], variant Variant) (T, S, error) {
	var value T

	parts, err := o.detach(variant)
	if err != nil {
		return value, parts.Storage, err
	}

	value = *(*T)(parts.Storage.Resolve(parts.Handle))
	parts.Storage.Deallocate(parts.Handle, parts.Layout)

	return value, parts.Storage, nil
}
