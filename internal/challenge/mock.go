package challenge

import (
	"context"
	"sync"
	"time"

	"github.com/wangdaliu/payauth/internal/model"
	"github.com/wangdaliu/payauth/internal/ui"
)

// MockEngineConfig scripts a MockEngine's behavior.
type MockEngineConfig struct {
	CreateErr error
	Outcome   model.ChallengeOutcome
	Delay     time.Duration
	UIType    string

	// Redeliver makes the mock violate the at-most-once contract by
	// delivering the terminal outcome twice, for exercising duplicate
	// suppression downstream.
	Redeliver bool
}

// MockEngine simulates the external 3DS2 challenge engine.
type MockEngine struct {
	config MockEngineConfig

	mu          sync.Mutex
	createCalls int
	lastParams  TransactionParams
	lastTxn     *MockTransaction
}

// NewMockEngine creates a mock engine from the given script.
func NewMockEngine(cfg MockEngineConfig) *MockEngine {
	if cfg.UIType == "" {
		cfg.UIType = "04" // out-of-band, arbitrary default
	}
	return &MockEngine{config: cfg}
}

func (e *MockEngine) CreateTransaction(params TransactionParams) (Transaction, error) {
	e.mu.Lock()
	e.createCalls++
	e.lastParams = params
	e.mu.Unlock()
	if e.config.CreateErr != nil {
		return nil, e.config.CreateErr
	}
	txn := &MockTransaction{
		config: e.config,
		params: AuthRequestParams{
			SDKAppID:              "com.payauth.sdk",
			SDKReferenceNumber:    "payauth-go-1.0.0",
			SDKTransactionID:      NewTransactionID(),
			DeviceData:            "mock-device-data",
			SDKEphemeralPublicKey: "mock-ephemeral-key",
			MessageVersion:        params.MessageVersion,
		},
	}
	e.mu.Lock()
	e.lastTxn = txn
	e.mu.Unlock()
	return txn, nil
}

// CreateCalls returns how many transactions were created.
func (e *MockEngine) CreateCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.createCalls
}

// LastParams returns the parameters of the most recent transaction.
func (e *MockEngine) LastParams() TransactionParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastParams
}

// LastTransaction returns the most recently created transaction.
func (e *MockEngine) LastTransaction() *MockTransaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastTxn
}

// MockTransaction is the transaction counterpart of MockEngine. It delivers
// the scripted outcome on its own goroutine after the configured delay.
type MockTransaction struct {
	config MockEngineConfig
	params AuthRequestParams

	mu           sync.Mutex
	executeCalls int
	lastChal     Params
}

func (t *MockTransaction) AuthRequestParams() AuthRequestParams { return t.params }

func (t *MockTransaction) UIType() string { return t.config.UIType }

func (t *MockTransaction) ExecuteChallenge(ctx context.Context, handle ui.Launcher, params Params, deliver OutcomeFunc, timeout time.Duration) {
	t.mu.Lock()
	t.executeCalls++
	t.lastChal = params
	t.mu.Unlock()

	handle.Launch(ui.KindChallenge, ui.Args{UIType: t.config.UIType}, 0)

	go func() {
		if t.config.Delay > 0 {
			select {
			case <-time.After(t.config.Delay):
			case <-ctx.Done():
				deliver(model.ChallengeOutcome{Kind: model.OutcomeRuntimeError, Detail: ctx.Err().Error()})
				return
			}
		}
		deliver(t.config.Outcome)
		if t.config.Redeliver {
			deliver(t.config.Outcome)
		}
	}()
}

// ExecuteCalls returns how many times a challenge execution was requested.
func (t *MockTransaction) ExecuteCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.executeCalls
}

// LastChallengeParams returns the most recent challenge parameters.
func (t *MockTransaction) LastChallengeParams() Params {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastChal
}
