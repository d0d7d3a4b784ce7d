package challenge

import (
	"context"
	"crypto"
	"crypto/x509"
	"time"

	"github.com/wangdaliu/payauth/internal/model"
	"github.com/wangdaliu/payauth/internal/ui"
)

// TransactionParams is the directory-server material a transaction is
// created from.
type TransactionParams struct {
	DirectoryServerID string
	MessageVersion    string
	LiveMode          bool
	NetworkName       string
	RootCerts         []*x509.Certificate
	ServerPublicKey   crypto.PublicKey
	KeyID             string
}

// AuthRequestParams are the device and SDK parameters submitted to start a
// 3DS2 authentication on the API side.
type AuthRequestParams struct {
	SDKAppID              string
	SDKReferenceNumber    string
	SDKTransactionID      string
	DeviceData            string
	SDKEphemeralPublicKey string
	MessageVersion        string
}

// Params carries the ACS material needed to execute an interactive
// challenge.
type Params struct {
	SignedContent string
	ServerTransID string
	AcsTransID    string
}

// OutcomeFunc receives the single terminal event of one challenge
// transaction. The engine contract promises at most one invocation per
// transaction.
type OutcomeFunc func(model.ChallengeOutcome)

// Transaction is one challenge attempt. Created per attempt, owned by its
// orchestrator, never reused.
type Transaction interface {
	// AuthRequestParams derives the authentication-request parameters for
	// this transaction.
	AuthRequestParams() AuthRequestParams

	// UIType describes the challenge UI this transaction will render.
	UIType() string

	// ExecuteChallenge renders the challenge into the UI handle and
	// eventually delivers exactly one terminal outcome. Resolution happens
	// on an execution context distinct from the caller's.
	ExecuteChallenge(ctx context.Context, handle ui.Launcher, params Params, deliver OutcomeFunc, timeout time.Duration)
}

// Engine is the external 3DS2 challenge engine collaborator. Construction
// failure (malformed trust material) is fatal to the attempt only.
type Engine interface {
	CreateTransaction(params TransactionParams) (Transaction, error)
}
