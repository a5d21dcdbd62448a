package storage

import "github.com/cockroachdb/errors"

// ErrAlloc is returned by Allocate, AllocateZeroed, Grow, GrowZeroed and Shrink when a request cannot be
// satisfied. It carries no reason: the backend is out of room or cannot honor the requested alignment,
// and the caller should treat both the same way. Test for it with errors.Is.
var ErrAlloc = errors.New("storage: allocation request could not be satisfied")

// ErrInvalidLayout is wrapped by errors returned from NewLayout and ArrayLayout
var ErrInvalidLayout = errors.New("storage: invalid layout")
