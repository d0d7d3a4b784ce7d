// Package analytics is the fire-and-forget observability sink. Emission is
// best-effort and must never block or fail a protocol-critical path.
package analytics

import "log/slog"

// Event names one observable moment in an authentication flow.
type Event string

const (
	EventConfirmStarted       Event = "confirm_started"
	EventRedirectLaunched     Event = "redirect_launched"
	EventFingerprintParsed    Event = "3ds2_fingerprint_parsed"
	EventFrictionless         Event = "3ds2_frictionless"
	EventFallbackRedirect     Event = "3ds2_fallback_redirect"
	EventChallengeLaunched    Event = "3ds2_challenge_launched"
	EventChallengeCompleted   Event = "3ds2_challenge_completed"
	EventChallengeCanceled    Event = "3ds2_challenge_canceled"
	EventChallengeTimedOut    Event = "3ds2_challenge_timed_out"
	EventChallengeProtocolErr Event = "3ds2_challenge_protocol_error"
	EventChallengeRuntimeErr  Event = "3ds2_challenge_runtime_error"
	EventChallengeErrored     Event = "3ds2_auth_failed"
)

// Sink consumes analytics events. Implementations must never fail visibly.
type Sink interface {
	Emit(event Event, fields map[string]string)
}

// SlogSink logs events through a structured logger.
type SlogSink struct {
	Logger *slog.Logger
}

// NewSlogSink creates a sink backed by the given logger, or the default
// logger when nil.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{Logger: logger}
}

func (s *SlogSink) Emit(event Event, fields map[string]string) {
	attrs := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	s.Logger.Info(string(event), attrs...)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Emit(Event, map[string]string) {}
