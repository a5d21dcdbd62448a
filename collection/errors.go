package collection

import "github.com/cockroachdb/errors"

var (
	// ErrNotOccupied is returned when a value is requested from a container that does not hold one,
	// because it was never constructed or its value was already transferred out or destroyed
	ErrNotOccupied = errors.New("collection: container does not hold a value")
	// ErrWrongVariant is returned when a tagged container is asked for the variant it does not hold
	ErrWrongVariant = errors.New("collection: container holds the other variant")
	// ErrAlreadyConstructed is returned when a value is constructed into a container that is not empty
	ErrAlreadyConstructed = errors.New("collection: container was already constructed")
)
