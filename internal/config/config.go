package config

import "time"

const (
	// RequestCodePayment correlates payment-intent attempts across the UI
	// hand-off boundary.
	RequestCodePayment = 50000

	// RequestCodeSetup correlates setup-intent attempts.
	RequestCodeSetup = 50001

	// RequestCodeSource correlates source authentication attempts.
	RequestCodeSource = 50002

	// DefaultChallengeTimeout bounds a 3DS2 challenge when no explicit
	// timeout is configured.
	DefaultChallengeTimeout = 5 * time.Minute

	// MinChallengeTimeout and MaxChallengeTimeout bound configurable
	// challenge timeouts; out-of-range values clamp to the default.
	MinChallengeTimeout = 5 * time.Minute
	MaxChallengeTimeout = 99 * time.Minute

	// PreChallengeDelay is the fixed pause between showing the preparing
	// indicator and handing off to the challenge UI. A UX affordance only,
	// never on a correctness path.
	PreChallengeDelay = 2 * time.Second

	// DefaultMessageVersion is the 3DS2 protocol message version used when
	// the directory-server data does not negotiate one.
	DefaultMessageVersion = "2.1.0"
)

// ChallengeTimeout clamps d into the allowed challenge timeout range,
// falling back to the default for out-of-range values.
func ChallengeTimeout(d time.Duration) time.Duration {
	if d < MinChallengeTimeout || d > MaxChallengeTimeout {
		return DefaultChallengeTimeout
	}
	return d
}
