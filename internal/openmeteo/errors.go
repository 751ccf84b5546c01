package openmeteo

import (
	"errors"
	"fmt"
)

// ErrLocationNotFound is returned when the geocoding API has no candidate
// for the requested place name.
var ErrLocationNotFound = errors.New("location not found")

// TransportError is a network or HTTP failure that survived the retry
// budget. Status is zero when the request never reached the server.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport error (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError means the payload shape violates the column
// contract (unequal column lengths, undecodable JSON). Retrying will not
// fix a structurally bad payload, so the client never retries on it.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed response: " + e.Reason
}
