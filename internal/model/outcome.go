package model

// OutcomeKind tags the terminal event reported by the challenge engine for
// one transaction. The engine contract promises exactly one terminal event
// per transaction.
type OutcomeKind string

const (
	OutcomeCompleted     OutcomeKind = "completed"
	OutcomeCanceled      OutcomeKind = "canceled"
	OutcomeTimedOut      OutcomeKind = "timed_out"
	OutcomeProtocolError OutcomeKind = "protocol_error"
	OutcomeRuntimeError  OutcomeKind = "runtime_error"
)

// ChallengeOutcome is the tagged terminal result of a challenge transaction.
// Success is meaningful only for OutcomeCompleted; Detail only for the two
// error kinds.
type ChallengeOutcome struct {
	Kind    OutcomeKind `json:"kind"`
	Success bool        `json:"success,omitempty"`
	Detail  string      `json:"detail,omitempty"`
}

// ResultCode classifies a finished authentication attempt for the caller.
type ResultCode string

const (
	ResultUnknown   ResultCode = "unknown"
	ResultSucceeded ResultCode = "succeeded"
	ResultFailed    ResultCode = "failed"
	ResultCanceled  ResultCode = "canceled"
	ResultTimedOut  ResultCode = "timed_out"
)

// ResultCode maps the terminal challenge event to the caller-facing
// classification. Protocol and runtime errors classify as failed; the typed
// error travels separately on the FinalResult.
func (o ChallengeOutcome) ResultCode() ResultCode {
	switch o.Kind {
	case OutcomeCompleted:
		if o.Success {
			return ResultSucceeded
		}
		return ResultFailed
	case OutcomeCanceled:
		return ResultCanceled
	case OutcomeTimedOut:
		return ResultTimedOut
	case OutcomeProtocolError, OutcomeRuntimeError:
		return ResultFailed
	default:
		return ResultUnknown
	}
}

// Err returns the typed error carried by an error-kind outcome, or nil for
// the non-error kinds.
func (o ChallengeOutcome) Err() error {
	switch o.Kind {
	case OutcomeProtocolError:
		return &ProtocolError{Detail: o.Detail}
	case OutcomeRuntimeError:
		return &RuntimeError{Detail: o.Detail}
	default:
		return nil
	}
}

// ResultForStatus derives a result classification from an intent status
// alone. Used when no challenge outcome exists, e.g. bypass and redirect
// returns, where the re-fetched server state is the only signal.
func ResultForStatus(s IntentStatus) ResultCode {
	switch s {
	case StatusSucceeded, StatusRequiresCapture, StatusProcessing:
		return ResultSucceeded
	case StatusCanceled:
		return ResultCanceled
	case StatusRequiresPaymentMethod:
		return ResultFailed
	default:
		return ResultUnknown
	}
}

// FinalResult is the single terminal product of one authentication attempt.
// Exactly one of Intent or Source is set on success; Err is set when the
// attempt failed before a usable intent state was obtained, or carries the
// challenge-engine error alongside the re-fetched intent.
type FinalResult struct {
	Intent  *Intent
	Source  *Source
	Outcome ResultCode
	Err     error
}
