package memutils

// Validatable is implemented by backend bookkeeping that can audit its own invariants, such as the
// byte totals a storage keeps alongside its live blocks. DebugValidate calls it after every mutation.
type Validatable interface {
	Validate() error
}
