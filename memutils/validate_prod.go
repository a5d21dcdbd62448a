//go:build !debug_mem_utils

package memutils

import "unsafe"

const (
	// DebugEnabled is true when the debug_mem_utils build tag is present. Backends use it to guard
	// precondition checks that are left unchecked in release builds.
	DebugEnabled bool = false
	// DebugMargin is the size of the guard margin a backend reserves past each block's usable bytes
	DebugMargin int = 0
)

// ValidateMagicValue reports whether the guard margin at data+offset, written by WriteMagicValue, is intact.
// A false result means something wrote past the end of the block preceding the margin. Release builds
// have no margin and always report true.
func ValidateMagicValue(data unsafe.Pointer, offset int) bool {
	return true
}

// WriteMagicValue fills the DebugMargin bytes at data+offset, directly past a block's usable bytes, with
// a guard pattern. Release builds have no margin, so nothing is written.
func WriteMagicValue(data unsafe.Pointer, offset int) {
}

// DebugValidate panics if a storage's bookkeeping fails its own Validate. Only debug_mem_utils builds
// call Validate.
func DebugValidate(validatable Validatable) {
}

// DebugCheckPow2 panics when a requested alignment is not a power of two. Layouts built with
// storage.NewLayout already guarantee it, so only debug_mem_utils builds check again.
func DebugCheckPow2[T Number](value T, name string) {
}

// DebugFailf panics with a formatted precondition violation. This method no-ops unless the
// debug_mem_utils build tag is present.
func DebugFailf(format string, args ...any) {
}
