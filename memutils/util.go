package memutils

import (
	"math"
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Unsigned | ~int
}

func CheckPow2[T Number](number T, name string) error {
	if number == 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to the next multiple of alignment, which must be a power of two
func AlignUp[T Number](value T, alignment T) T {
	return (value + alignment - 1) &^ (alignment - 1)
}

// AlignDown rounds value down to the previous multiple of alignment, which must be a power of two
func AlignDown[T Number](value T, alignment T) T {
	return value &^ (alignment - 1)
}

// CheckedAlignUp behaves like AlignUp but reports OverflowError when the rounded value would exceed
// math.MaxInt, the largest size any block can be.
func CheckedAlignUp(value uint, alignment uint) (uint, error) {
	if value > math.MaxInt || alignment > math.MaxInt || value > math.MaxInt-(alignment-1) {
		return 0, cerrors.Wrapf(OverflowError, "aligning %d to %d", value, alignment)
	}
	return AlignUp(value, alignment), nil
}

// CheckedMul multiplies two sizes, reporting OverflowError when the product exceeds math.MaxInt
func CheckedMul(a, b uint) (uint, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxInt/b {
		return 0, cerrors.Wrapf(OverflowError, "%d * %d", a, b)
	}
	return a * b, nil
}

// IsAligned returns true if the pointer is a multiple of alignment
func IsAligned(pointer unsafe.Pointer, alignment uint) bool {
	return uintptr(pointer)&uintptr(alignment-1) == 0
}

// AlignPointerOffset returns the number of bytes that must be skipped from pointer to reach
// the first address aligned to alignment
func AlignPointerOffset(pointer unsafe.Pointer, alignment uint) int {
	address := uintptr(pointer)
	return int(AlignUp(address, uintptr(alignment)) - address)
}
