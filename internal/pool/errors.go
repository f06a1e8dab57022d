package pool

// Predefined pool error instances.
var (
	ErrMissingRegistry = PoolError{"P1", "Pool registry is nil, the manager cannot start"}
	ErrOverdraw        = PoolError{
		"P2",
		"Released object is not pooled while pooling is enforced, a pool overdraw has occurred",
	}
	ErrAcquireFailed     = PoolError{"P3", "Object could not be acquired or instantiated"}
	ErrUnknownCategory   = PoolError{"P4", "No pool category with that name"}
	ErrDuplicateCategory = PoolError{"P5", "Pool category name already registered"}
	ErrNilPrototype      = PoolError{"P6", "Pool category has no prototype"}
	ErrInvalidCapacity   = PoolError{"P7", "Pool category capacity must not be negative"}
)

// PoolError represents a pool error with its code and description.
type PoolError struct {
	Code        string // two-character error code
	Description string // human-readable description
}

// Error implements the Go error interface: "<Code>: <Description>".
func (e PoolError) Error() string {
	return e.Code + ": " + e.Description
}

// CodeOnly returns only the error code (e.g., "P2"), for embedding in wire responses.
func (e PoolError) CodeOnly() string {
	return e.Code
}
