package match

import "fmt"

// ValidationError indicates a malformed or degenerate inbound event (or
// an empty scoreboard at format time). It is surfaced straight back to
// the webhook caller and never retried.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return "invalid match payload: " + e.Reason
}

// ExternalServiceError wraps a transport failure or non-2xx response from
// one of the external collaborators. Whether it is fatal to a pipeline
// run depends on which branch raised it.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e ExternalServiceError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a single failed row insert. The append path
// logs these and keeps going; they never abort the batch.
type PersistenceError struct {
	SteamID string
	Err     error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persisting row for %s: %v", e.SteamID, e.Err)
}

func (e PersistenceError) Unwrap() error {
	return e.Err
}
