package collection

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/storage/storage"
)

// State is the lifecycle state of a handle-owning container
type State uint32

const (
	// StateEmpty is the state of a container that has not been constructed yet
	StateEmpty State = iota
	// StateOccupied is the state of a container that owns a block holding a live value
	StateOccupied
	// StateMovedFrom is the state of a container whose block and storage were transferred to the caller
	StateMovedFrom
	// StateGone is the state of a destroyed container
	StateGone
)

var stateMapping = map[State]string{
	StateEmpty:     "Empty",
	StateOccupied:  "Occupied",
	StateMovedFrom: "MovedFrom",
	StateGone:      "Gone",
}

func (s State) String() string {
	return stateMapping[s]
}

// Variant identifies which of the two types a tagged container holds
type Variant uint32

const (
	VariantNone Variant = iota
	VariantA
	VariantB
)

var variantMapping = map[Variant]string{
	VariantNone: "None",
	VariantA:    "A",
	VariantB:    "B",
}

func (v Variant) String() string {
	return variantMapping[v]
}

// Destroyer is implemented by values that must release something before their memory is handed back to
// storage. Containers call Destroy on the value in place, through the resolved address, right before
// deallocating its block.
type Destroyer interface {
	Destroy()
}

func destroyInPlace[T any](value *T) {
	if destroyer, ok := any(value).(Destroyer); ok {
		destroyer.Destroy()
	}
}

// Parts is the raw ownership of a container's block: the storage instance, the handle into it and the
// layout the block was allocated with. The holder of a Parts is responsible for eventually calling
// Storage.Deallocate(Handle, Layout).
type Parts[H any, S storage.Storage[H]] struct {
	Storage S
	Handle  H
	Layout  storage.Layout
	Variant Variant
}

// owner is the state machine shared by every container in this package. It owns one storage instance and
// at most one handle into it.
type owner[H any, S storage.Storage[H]] struct {
	storage S
	handle  H
	layout  storage.Layout
	variant Variant
	state   State
}

// construct allocates a block for layout and returns its address. On failure the owner stays Empty.
func (o *owner[H, S]) construct(s S, layout storage.Layout, variant Variant, zeroed bool) (ptr unsafe.Pointer, err error) {
	if o.state != StateEmpty {
		return nil, errors.Wrapf(ErrAlreadyConstructed, "container is %s", o.state)
	}

	var handle H
	if zeroed {
		handle, _, err = s.AllocateZeroed(layout)
	} else {
		handle, _, err = s.Allocate(layout)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "allocating %s for variant %s", layout, variant)
	}

	o.storage = s
	o.handle = handle
	o.layout = layout
	o.variant = variant
	o.state = StateOccupied

	return s.Resolve(handle), nil
}

// check returns an error unless the owner holds a value of the requested variant. VariantNone matches
// any live value.
func (o *owner[H, S]) check(variant Variant) error {
	if o.state != StateOccupied {
		return errors.Wrapf(ErrNotOccupied, "container is %s", o.state)
	}

	if variant != VariantNone && o.variant != variant {
		return errors.Wrapf(ErrWrongVariant, "requested %s, holding %s", variant, o.variant)
	}

	return nil
}

func (o *owner[H, S]) resolve(variant Variant) (unsafe.Pointer, error) {
	if err := o.check(variant); err != nil {
		return nil, err
	}

	return o.storage.Resolve(o.handle), nil
}

// detach moves the storage and handle out of the owner. The owner is MovedFrom before detach returns,
// so a later destroy releases nothing.
func (o *owner[H, S]) detach(variant Variant) (Parts[H, S], error) {
	if err := o.check(variant); err != nil {
		return Parts[H, S]{}, err
	}

	parts := Parts[H, S]{
		Storage: o.storage,
		Handle:  o.handle,
		Layout:  o.layout,
		Variant: o.variant,
	}

	o.state = StateMovedFrom
	o.handle = o.storage.Dangling()
	var zero S
	o.storage = zero

	return parts, nil
}

// destroy runs destructor on the live value, if any, and deallocates its block with the construction
// layout. The owner is Gone afterward, whatever state it started in.
func (o *owner[H, S]) destroy(destructor func(ptr unsafe.Pointer, variant Variant)) {
	if o.state != StateOccupied {
		o.state = StateGone
		return
	}

	o.state = StateGone
	destructor(o.storage.Resolve(o.handle), o.variant)
	o.storage.Deallocate(o.handle, o.layout)

	o.handle = o.storage.Dangling()
	var zero S
	o.storage = zero
}
