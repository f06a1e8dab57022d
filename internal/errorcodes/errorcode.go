// Package errorcodes defines the status codes of the pool wire protocol.
// WireError holds the two-character code and human-readable description.
package errorcodes

import (
	"errors"

	"github.com/andrei-cloud/go_pool/internal/pool"
)

// Predefined wire status instances. Pool errors keep their own codes (P1..P7).
var (
	Err00 = WireError{"00", "No error"}
	Err01 = WireError{"01", "No instance available, pooling is enforced"}
	Err15 = WireError{
		"15",
		"Invalid input data (invalid format, invalid characters, or not enough data provided)",
	}
	Err16 = WireError{"16", "Unknown instance id"}
	Err17 = WireError{"17", "Unknown prototype"}
	Err68 = WireError{"68", "Command not recognized"}
	Err99 = WireError{"99", "Internal error"}
)

// WireError represents a protocol status with its code and description.
type WireError struct {
	Code        string // two-character status code
	Description string // human-readable description
}

// Error implements the Go error interface: "<Code>: <Description>".
func (e WireError) Error() string {
	return e.Code + ": " + e.Description
}

// CodeOnly returns only the status code (e.g., "15"), for embedding in responses.
func (e WireError) CodeOnly() string {
	return e.Code
}

// Code maps err to the two-character status sent on the wire.
func Code(err error) string {
	if err == nil {
		return Err00.Code
	}

	var we WireError
	if errors.As(err, &we) {
		return we.Code
	}
	var pe pool.PoolError
	if errors.As(err, &pe) {
		return pe.Code
	}

	return Err99.Code
}
