package orchestrator

import (
	"github.com/wangdaliu/payauth/internal/challenge"
	"github.com/wangdaliu/payauth/internal/model"
)

// ActionKind tags the verification mechanism the classifier selected.
type ActionKind string

const (
	ActionBypass        ActionKind = "bypass"
	ActionBegin3DS2     ActionKind = "begin_3ds2"
	ActionBeginRedirect ActionKind = "begin_redirect"
	ActionFail          ActionKind = "fail"
)

// Action is the classifier's decision. Fingerprint is set for Begin3DS2,
// the URL pair for BeginRedirect, Err for Fail.
type Action struct {
	Kind        ActionKind
	Fingerprint *challenge.DirectoryServerFingerprint
	URL         string
	ReturnURL   string
	Err         error
}

// Classify decides which verification mechanism an intent requires. Pure,
// no I/O. Unrecognized next-action kinds degrade to bypass, never to an
// error, so newer server-side action types don't break older clients.
func Classify(intent *model.Intent) Action {
	if !intent.RequiresAction() {
		return Action{Kind: ActionBypass}
	}

	na := intent.NextAction
	switch na.Type {
	case model.NextActionUseSDK:
		if na.SDK == nil {
			return Action{Kind: ActionBypass}
		}
		switch na.SDK.Type {
		case model.SDKThreeDS2:
			fp, err := challenge.ParseFingerprint(na.SDK.ThreeDS2)
			if err != nil {
				return Action{Kind: ActionFail, Err: err}
			}
			return Action{Kind: ActionBegin3DS2, Fingerprint: fp}
		case model.SDKThreeDS1:
			return Action{Kind: ActionBeginRedirect, URL: na.SDK.RedirectURL}
		default:
			return Action{Kind: ActionBypass}
		}
	case model.NextActionRedirectToURL:
		if na.RedirectToURL == nil {
			return Action{Kind: ActionBypass}
		}
		return Action{
			Kind:      ActionBeginRedirect,
			URL:       na.RedirectToURL.URL,
			ReturnURL: na.RedirectToURL.ReturnURL,
		}
	default:
		return Action{Kind: ActionBypass}
	}
}
