package model

// SourceFlow identifies how a source completes authentication.
type SourceFlow string

const (
	FlowRedirect         SourceFlow = "redirect"
	FlowCodeVerification SourceFlow = "code_verification"
	FlowReceiver         SourceFlow = "receiver"
	FlowNone             SourceFlow = "none"
)

// SourceStatus represents the server-side status of a source.
type SourceStatus string

const (
	SourcePending    SourceStatus = "pending"
	SourceChargeable SourceStatus = "chargeable"
	SourceConsumed   SourceStatus = "consumed"
	SourceCanceled   SourceStatus = "canceled"
	SourceFailed     SourceStatus = "failed"
)

// Source is a standalone payment source with its own two-state
// authentication flow: redirect, or nothing.
type Source struct {
	ID           string        `json:"id"`
	ClientSecret string        `json:"client_secret"`
	Flow         SourceFlow    `json:"flow"`
	Status       SourceStatus  `json:"status"`
	Redirect     *RedirectData `json:"redirect,omitempty"`
}

// ResultForSourceStatus classifies a source status for the caller.
func ResultForSourceStatus(s SourceStatus) ResultCode {
	switch s {
	case SourceChargeable, SourceConsumed:
		return ResultSucceeded
	case SourceCanceled:
		return ResultCanceled
	case SourceFailed:
		return ResultFailed
	default:
		return ResultUnknown
	}
}
