package model

import (
	"errors"
	"fmt"
)

// TransportError reports a network-level failure talking to a collaborator.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a domain error reported by the API collaborator, or the
// generic wrapper applied to any collaborator error this core does not
// recognize.
type APIError struct {
	Code    string
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("api error: %s", e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// CertificateError reports malformed directory-server trust material. Fatal
// to the 3DS2 path only; it degrades to an error result, never a crash.
type CertificateError struct {
	Reason string
	Err    error
}

func (e *CertificateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("directory server certificate: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("directory server certificate: %s", e.Reason)
}

func (e *CertificateError) Unwrap() error { return e.Err }

// ProtocolError is a challenge-engine-reported 3DS2 protocol violation.
type ProtocolError struct {
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("challenge protocol error: %s", e.Detail)
}

// RuntimeError is a challenge-engine-reported internal failure.
type RuntimeError struct {
	Detail string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("challenge runtime error: %s", e.Detail)
}

// TypeMismatchError reports an API contract violation: the fetched intent's
// concrete kind differs from the kind the attempt expected.
type TypeMismatchError struct {
	Expected IntentKind
	Got      IntentKind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("intent kind mismatch: expected %s, got %s", e.Expected, e.Got)
}

// WrapAPIError passes recognized domain errors through verbatim and wraps
// anything else as a generic APIError.
func WrapAPIError(err error) error {
	if err == nil {
		return nil
	}
	var (
		transportErr *TransportError
		apiErr       *APIError
		certErr      *CertificateError
		protoErr     *ProtocolError
		runtimeErr   *RuntimeError
		mismatchErr  *TypeMismatchError
	)
	switch {
	case errors.As(err, &transportErr),
		errors.As(err, &apiErr),
		errors.As(err, &certErr),
		errors.As(err, &protoErr),
		errors.As(err, &runtimeErr),
		errors.As(err, &mismatchErr):
		return err
	}
	return &APIError{Message: err.Error(), Err: err}
}
