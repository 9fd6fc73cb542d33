package acquire

import "github.com/google/uuid"

// newCorrelationID returns a fresh random UUID string for use as a
// correlation id. No call site in this package invokes it, so fan-out
// attempts, logs and spans carry no correlation id.
func newCorrelationID() string {
	return uuid.NewString()
}
