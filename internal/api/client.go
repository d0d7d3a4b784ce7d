package api

import (
	"context"

	"github.com/wangdaliu/payauth/internal/model"
)

// RequestOptions carries per-request credentials for the API collaborator.
// Opaque to the orchestration core.
type RequestOptions struct {
	APIKey  string
	Account string
}

// ConfirmParams are the parameters for confirming an intent. UseSDK marks
// the confirmation as driven by this SDK's native flow; the orchestrator
// forces it before submitting.
type ConfirmParams struct {
	Kind            model.IntentKind
	ClientSecret    string
	PaymentMethodID string
	ReturnURL       string
	UseSDK          bool
}

// WithSDKUsage returns a copy of the params with the native-SDK flag set.
func (p ConfirmParams) WithSDKUsage() ConfirmParams {
	p.UseSDK = true
	return p
}

// AuthParams is the authentication request submitted to start a 3DS2
// authentication, derived from the challenge transaction plus the
// fingerprint's attempt-source token.
type AuthParams struct {
	SourceID              string
	SDKAppID              string
	SDKReferenceNumber    string
	SDKTransactionID      string
	DeviceData            string
	SDKEphemeralPublicKey string
	MessageVersion        string
	MaxTimeoutMinutes     int
}

// ARes is the authentication response returned by the directory server when
// the 3DS2 authentication produced one.
type ARes struct {
	ChallengeMandated bool
	SignedContent     string
	ServerTransID     string
	AcsTransID        string
	UIType            string
}

// AuthResponse is the API collaborator's answer to a start-3DS2-auth call.
// Exactly one of three shapes is usable: an ARes (challenge or frictionless),
// a fallback redirect URL, or neither, which the orchestrator treats as a
// protocol error.
type AuthResponse struct {
	SourceID            string
	Ares                *ARes
	FallbackRedirectURL string
}

// Client is the payment API collaborator. All operations are network calls
// and may fail with a recognized domain error or anything else, which the
// core wraps as a generic API error. Transport, serialization and retry are
// the implementation's concern, not this core's.
type Client interface {
	ConfirmIntent(ctx context.Context, params ConfirmParams, opts RequestOptions) (*model.Intent, error)
	RetrieveIntent(ctx context.Context, kind model.IntentKind, clientSecret string, opts RequestOptions) (*model.Intent, error)
	RetrieveSource(ctx context.Context, id, clientSecret string, opts RequestOptions) (*model.Source, error)
	CancelIntentSource(ctx context.Context, intent *model.Intent, sourceID string, opts RequestOptions) (*model.Intent, error)
	Start3DS2Auth(ctx context.Context, params AuthParams, intentID string, opts RequestOptions) (*AuthResponse, error)
	Complete3DS2Auth(ctx context.Context, sourceID string, opts RequestOptions) (bool, error)
}
