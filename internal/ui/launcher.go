// Package ui models the host UI surfaces as fire-and-forget collaborators.
// Launches never return results directly; outcomes arrive later through the
// correlation payload the host delivers back to the result handlers.
package ui

// LaunchKind identifies which UI surface a launch targets.
type LaunchKind string

const (
	KindRedirect  LaunchKind = "redirect"
	KindChallenge LaunchKind = "challenge"
)

// Args are the launch arguments handed to the host UI.
type Args struct {
	ClientSecret string
	URL          string
	ReturnURL    string
	UIType       string
}

// Launcher is the host UI collaborator. Both operations are fire-and-forget
// and must never block the protocol.
type Launcher interface {
	// ShowProgress presents a transient "preparing" indicator.
	ShowProgress()

	// Launch hands the args and correlation code to the host surface.
	Launch(kind LaunchKind, args Args, requestCode int)
}
