package storage

import (
	"fmt"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/storage/memutils"
)

// Layout describes the size and alignment of a block requested from a Storage. The zero value is not a
// valid Layout: use NewLayout, LayoutOf or ArrayLayout to build one.
type Layout struct {
	size  uint
	align uint
}

// NewLayout builds a Layout from a size and an alignment in bytes. It fails if align is not a power of two, or
// if size rounded up to a multiple of align cannot be represented as an int. Invalid combinations are never
// clamped.
func NewLayout(size, align uint) (Layout, error) {
	if err := memutils.CheckPow2(align, "align"); err != nil {
		return Layout{}, errors.Mark(errors.Wrapf(err, "layout size %d", size), ErrInvalidLayout)
	}

	if _, err := memutils.CheckedAlignUp(size, align); err != nil {
		return Layout{}, errors.Mark(err, ErrInvalidLayout)
	}

	return Layout{size: size, align: align}, nil
}

// MustLayout is NewLayout for layouts known to be valid, such as constants. It panics on error.
func MustLayout(size, align uint) Layout {
	layout, err := NewLayout(size, align)
	if err != nil {
		panic(err)
	}
	return layout
}

// LayoutOf returns the Layout of the Go type T
func LayoutOf[T any]() Layout {
	var zero T
	return Layout{
		size:  uint(unsafe.Sizeof(zero)),
		align: uint(unsafe.Alignof(zero)),
	}
}

// ArrayLayout returns the Layout of count contiguous values of T
func ArrayLayout[T any](count uint) (Layout, error) {
	element := LayoutOf[T]()
	size, err := memutils.CheckedMul(element.size, count)
	if err != nil {
		return Layout{}, errors.Mark(errors.Wrapf(err, "array of %d elements", count), ErrInvalidLayout)
	}

	return NewLayout(size, element.align)
}

// Size is the requested size in bytes
func (l Layout) Size() uint { return l.size }

// Align is the requested alignment in bytes, always a power of two
func (l Layout) Align() uint { return l.align }

// IsValid returns false for the zero Layout
func (l Layout) IsValid() bool { return l.align != 0 }

// PadToAlign returns a Layout whose size is rounded up to a multiple of its alignment
func (l Layout) PadToAlign() Layout {
	return Layout{size: memutils.AlignUp(l.size, l.align), align: l.align}
}

// Fits returns true if a block described by other can hold a request described by l: the size and the
// alignment of l must both be no greater than those of other.
func (l Layout) Fits(other Layout) bool {
	return l.size <= other.size && l.align <= other.align
}

func (l Layout) String() string {
	return fmt.Sprintf("Layout{Size: %d, Align: %d}", l.size, l.align)
}
