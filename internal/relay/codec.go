// Package relay carries authentication results across the asynchronous UI
// hand-off boundary. A launch and its result share no call stack; the only
// link between them is the correlation record encoded here, demultiplexed by
// three fixed request codes.
package relay

import (
	"encoding/json"
	"fmt"

	"github.com/wangdaliu/payauth/internal/config"
	"github.com/wangdaliu/payauth/internal/model"
)

// AttemptKind distinguishes the three attempt flavors a correlation record
// can belong to.
type AttemptKind string

const (
	AttemptPayment AttemptKind = "payment"
	AttemptSetup   AttemptKind = "setup"
	AttemptSource  AttemptKind = "source"
)

// RequestCode returns the fixed correlation code for this attempt kind.
func (k AttemptKind) RequestCode() int {
	switch k {
	case AttemptPayment:
		return config.RequestCodePayment
	case AttemptSetup:
		return config.RequestCodeSetup
	case AttemptSource:
		return config.RequestCodeSource
	default:
		return 0
	}
}

// KindForCode maps a request code back to its attempt kind.
func KindForCode(code int) (AttemptKind, bool) {
	switch code {
	case config.RequestCodePayment:
		return AttemptPayment, true
	case config.RequestCodeSetup:
		return AttemptSetup, true
	case config.RequestCodeSource:
		return AttemptSource, true
	default:
		return "", false
	}
}

// ErrorDescriptor is the wire form of a typed error crossing the hand-off
// boundary.
type ErrorDescriptor struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// DescribeError flattens a typed error into its wire form.
func DescribeError(err error) *ErrorDescriptor {
	if err == nil {
		return nil
	}
	kind := "api"
	switch err.(type) {
	case *model.TransportError:
		kind = "transport"
	case *model.CertificateError:
		kind = "certificate"
	case *model.ProtocolError:
		kind = "protocol"
	case *model.RuntimeError:
		kind = "runtime"
	case *model.TypeMismatchError:
		kind = "type_mismatch"
	}
	return &ErrorDescriptor{Kind: kind, Message: err.Error()}
}

// Err reconstructs a typed error from the wire form.
func (d *ErrorDescriptor) Err() error {
	switch d.Kind {
	case "certificate":
		return &model.CertificateError{Reason: d.Message}
	case "protocol":
		return &model.ProtocolError{Detail: d.Message}
	case "runtime":
		return &model.RuntimeError{Detail: d.Message}
	default:
		return &model.APIError{Message: d.Message}
	}
}

// Record is the correlation payload carried across the UI hand-off. It must
// round-trip losslessly.
type Record struct {
	Kind            AttemptKind             `json:"kind"`
	RequestCode     int                     `json:"request_code"`
	ClientSecret    string                  `json:"client_secret"`
	SourceID        string                  `json:"source_id,omitempty"`
	CancelDependent bool                    `json:"cancel_dependent"`
	Outcome         *model.ChallengeOutcome `json:"outcome,omitempty"`
	Error           *ErrorDescriptor        `json:"error,omitempty"`
}

// Encode serializes a record into the opaque payload form.
func Encode(r Record) ([]byte, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode correlation record: %w", err)
	}
	return payload, nil
}

// Decode parses an opaque payload back into a record.
func Decode(payload []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(payload, &r); err != nil {
		return Record{}, fmt.Errorf("decode correlation record: %w", err)
	}
	return r, nil
}
