package session

import (
	"errors"
	"fmt"
)

// User-facing failure messages
const (
	MsgInvalidIdentifier = "invalid identifier"
	MsgConnectionError   = "connection error"
	MsgAnalysisFailed    = "analysis failed — trial not found or invalid identifier"
)

// ErrSuperseded is returned by Submit when a newer submission was started
// before this one resolved. The session state was left untouched.
var ErrSuperseded = errors.New("submission superseded by a newer one")

var errMissingFields = errors.New("payload is missing deterministic or uncertainty")

// ValidationError rejects a blank identifier before any network call
type ValidationError struct {
	Input string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid identifier %q", e.Input)
}

// TransportError covers network failures, non-2xx responses and
// undecodable payloads
type TransportError struct {
	NCTID string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetching prediction for %s: %v", e.NCTID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ApplicationError is a well-formed response saying no prediction could be made
type ApplicationError struct {
	NCTID  string
	Remote string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("prediction service rejected %s: %s", e.NCTID, e.Remote)
}

// UserMessage maps a failure to the message shown to the user
func UserMessage(err error) string {
	var (
		validationErr  *ValidationError
		transportErr   *TransportError
		applicationErr *ApplicationError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return MsgInvalidIdentifier
	case errors.As(err, &applicationErr):
		return MsgAnalysisFailed
	case errors.As(err, &transportErr):
		return MsgConnectionError
	}
	return MsgConnectionError
}
