package api

import (
	"context"
	"sync"

	"github.com/wangdaliu/payauth/internal/model"
)

// MockConfig scripts a MockClient's responses. Unset fields fall back to
// permissive defaults so simple scenarios need minimal setup.
type MockConfig struct {
	ConfirmIntent  *model.Intent
	ConfirmErr     error
	Intents        []*model.Intent // served by RetrieveIntent in order; last one repeats
	RetrieveErr    error
	Source         *model.Source
	SourceErr      error
	CanceledIntent *model.Intent
	CancelErr      error
	AuthResponse   *AuthResponse
	AuthErr        error
	CompleteOK     bool
	CompleteErr    error
}

// MockClient simulates the payment API with scripted responses and
// mutex-guarded call counters.
type MockClient struct {
	config MockConfig

	mu            sync.Mutex
	retrieveCalls int
	cancelCalls   int
	confirmCalls  int
	authCalls     int
	completeCalls int
	lastConfirm   ConfirmParams
	lastAuth      AuthParams
	lastCancelSrc string
}

// NewMockClient creates a mock API client from the given script.
func NewMockClient(cfg MockConfig) *MockClient {
	return &MockClient{config: cfg}
}

func (c *MockClient) ConfirmIntent(ctx context.Context, params ConfirmParams, opts RequestOptions) (*model.Intent, error) {
	c.mu.Lock()
	c.confirmCalls++
	c.lastConfirm = params
	c.mu.Unlock()
	if c.config.ConfirmErr != nil {
		return nil, c.config.ConfirmErr
	}
	return c.config.ConfirmIntent, nil
}

func (c *MockClient) RetrieveIntent(ctx context.Context, kind model.IntentKind, clientSecret string, opts RequestOptions) (*model.Intent, error) {
	c.mu.Lock()
	n := c.retrieveCalls
	c.retrieveCalls++
	c.mu.Unlock()
	if c.config.RetrieveErr != nil {
		return nil, c.config.RetrieveErr
	}
	if len(c.config.Intents) == 0 {
		return nil, &model.APIError{Code: "resource_missing", Message: "no such intent"}
	}
	if n >= len(c.config.Intents) {
		n = len(c.config.Intents) - 1
	}
	return c.config.Intents[n], nil
}

func (c *MockClient) RetrieveSource(ctx context.Context, id, clientSecret string, opts RequestOptions) (*model.Source, error) {
	if c.config.SourceErr != nil {
		return nil, c.config.SourceErr
	}
	return c.config.Source, nil
}

func (c *MockClient) CancelIntentSource(ctx context.Context, intent *model.Intent, sourceID string, opts RequestOptions) (*model.Intent, error) {
	c.mu.Lock()
	c.cancelCalls++
	c.lastCancelSrc = sourceID
	c.mu.Unlock()
	if c.config.CancelErr != nil {
		return nil, c.config.CancelErr
	}
	if c.config.CanceledIntent != nil {
		return c.config.CanceledIntent, nil
	}
	return intent, nil
}

func (c *MockClient) Start3DS2Auth(ctx context.Context, params AuthParams, intentID string, opts RequestOptions) (*AuthResponse, error) {
	c.mu.Lock()
	c.authCalls++
	c.lastAuth = params
	c.mu.Unlock()
	if c.config.AuthErr != nil {
		return nil, c.config.AuthErr
	}
	return c.config.AuthResponse, nil
}

func (c *MockClient) Complete3DS2Auth(ctx context.Context, sourceID string, opts RequestOptions) (bool, error) {
	c.mu.Lock()
	c.completeCalls++
	c.mu.Unlock()
	if c.config.CompleteErr != nil {
		return false, c.config.CompleteErr
	}
	return c.config.CompleteOK, nil
}

// RetrieveCalls returns how many intent re-fetches occurred.
func (c *MockClient) RetrieveCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retrieveCalls
}

// CancelCalls returns how many dependent-resource cancellations occurred.
func (c *MockClient) CancelCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelCalls
}

// ConfirmCalls returns how many confirmations occurred.
func (c *MockClient) ConfirmCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.confirmCalls
}

// AuthCalls returns how many start-3DS2-auth calls occurred.
func (c *MockClient) AuthCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authCalls
}

// CompleteCalls returns how many complete-3DS2-auth calls occurred.
func (c *MockClient) CompleteCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completeCalls
}

// LastConfirmParams returns the most recent confirmation parameters.
func (c *MockClient) LastConfirmParams() ConfirmParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastConfirm
}

// LastAuthParams returns the most recent start-3DS2-auth parameters.
func (c *MockClient) LastAuthParams() AuthParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAuth
}

// LastCanceledSource returns the source id passed to the most recent
// cancellation.
func (c *MockClient) LastCanceledSource() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastCancelSrc
}
