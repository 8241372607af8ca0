package portal

import (
	"errors"
	"fmt"
)

// errMissingResult marks envelopes whose result payload is absent or not
// the expected container shape.
var errMissingResult = errors.New("missing expected result payload")

// TransportErrorKind classifies how a portal request failed before a
// usable payload was obtained.
type TransportErrorKind string

const (
	// KindTimeout means the per-call deadline elapsed.
	KindTimeout TransportErrorKind = "timeout"
	// KindHTTPStatus means the portal answered with a non-2xx status.
	KindHTTPStatus TransportErrorKind = "http_status"
	// KindRequestFailure covers connect/DNS/read failures below HTTP.
	KindRequestFailure TransportErrorKind = "request_failure"
)

// TransportError is returned for any failure between issuing a request
// and obtaining a response body. BodyPrefix holds at most the first
// 200 bytes of the response body, when one was received.
type TransportError struct {
	Kind       TransportErrorKind
	Status     int
	BodyPrefix string
	Err        error
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("portal: http status %d: %s", e.Status, e.BodyPrefix)
	case KindTimeout:
		return "portal: request timed out"
	default:
		return fmt.Sprintf("portal: request failed: %v", e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError is returned when a response body is not valid JSON or does
// not have the expected envelope shape.
type DecodeError struct {
	BodyPrefix string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("portal: decode response: %v: %s", e.Err, e.BodyPrefix)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ApplicationError is returned when the portal answered 2xx but reported
// success=false in the envelope.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("portal: upstream reported failure: %s", e.Message)
}
