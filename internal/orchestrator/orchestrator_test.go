package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wangdaliu/payauth/internal/api"
	"github.com/wangdaliu/payauth/internal/challenge"
	"github.com/wangdaliu/payauth/internal/config"
	"github.com/wangdaliu/payauth/internal/model"
	"github.com/wangdaliu/payauth/internal/relay"
	"github.com/wangdaliu/payauth/internal/ui"
)

func TestAuthenticateIntent_BypassWhenNoActionRequired(t *testing.T) {
	intent := &model.Intent{
		Kind:         model.KindPayment,
		ID:           "pi_done",
		ClientSecret: "pi_done_secret",
		Status:       model.StatusSucceeded,
	}
	deps := newTestOrch(api.MockConfig{Intents: []*model.Intent{intent}}, challenge.MockEngineConfig{})

	results := deps.orch.AuthenticateIntent(context.Background(), model.KindPayment, intent.ClientSecret, testOpts)
	res := awaitResult(t, results)

	require.NoError(t, res.Err)
	assert.Equal(t, model.ResultSucceeded, res.Outcome)
	assert.Same(t, intent, res.Intent)
	assert.Empty(t, deps.launcher.Launches())
}

func TestAuthenticateIntent_UnsupportedActionBypassesWithoutError(t *testing.T) {
	intent := &model.Intent{
		Kind:         model.KindPayment,
		ID:           "pi_future",
		ClientSecret: "pi_future_secret",
		Status:       model.StatusRequiresAction,
		NextAction:   &model.NextAction{Type: "display_qr_code"},
	}
	deps := newTestOrch(api.MockConfig{Intents: []*model.Intent{intent}}, challenge.MockEngineConfig{})

	res := awaitResult(t, deps.orch.AuthenticateIntent(context.Background(), model.KindPayment, intent.ClientSecret, testOpts))

	require.NoError(t, res.Err)
	assert.Same(t, intent, res.Intent)
	assert.Empty(t, deps.launcher.Launches())
	assert.Zero(t, deps.client.AuthCalls())
}

func TestAuthenticateIntent_RedirectLaunchesExactURLPair(t *testing.T) {
	intent := redirectIntent()
	deps := newTestOrch(api.MockConfig{
		Intents: []*model.Intent{intent, finishedIntent(intent, model.StatusSucceeded)},
	}, challenge.MockEngineConfig{})

	results := deps.orch.AuthenticateIntent(context.Background(), model.KindPayment, intent.ClientSecret, testOpts)

	require.Eventually(t, func() bool {
		return len(deps.launcher.Launches()) == 1
	}, time.Second, 10*time.Millisecond)

	launch := deps.launcher.Launches()[0]
	assert.Equal(t, ui.KindRedirect, launch.Kind)
	assert.Equal(t, "https://bank.example/authorize", launch.Args.URL)
	assert.Equal(t, "app://return", launch.Args.ReturnURL)
	assert.Equal(t, intent.ClientSecret, launch.Args.ClientSecret)
	assert.Equal(t, config.RequestCodePayment, launch.RequestCode)

	// No network call happens until a correlated result arrives.
	assert.Equal(t, 1, deps.client.RetrieveCalls())

	// The host delivers the correlated payload; the parked attempt completes.
	payload, err := relay.Encode(relay.Record{
		Kind:         relay.AttemptPayment,
		RequestCode:  config.RequestCodePayment,
		ClientSecret: intent.ClientSecret,
	})
	require.NoError(t, err)

	handled, err := deps.orch.HandlePaymentResult(context.Background(), payload, testOpts)
	require.NoError(t, err)
	require.NotNil(t, handled)
	assert.Equal(t, model.ResultSucceeded, handled.Outcome)

	res := awaitResult(t, results)
	assert.Equal(t, model.ResultSucceeded, res.Outcome)
}

func TestHandlePaymentResult_BypassPathReturnsSucceeded(t *testing.T) {
	fresh := &model.Intent{
		Kind:         model.KindPayment,
		ID:           "pi_1",
		ClientSecret: "pi_1_secret",
		Status:       model.StatusSucceeded,
	}
	deps := newTestOrch(api.MockConfig{Intents: []*model.Intent{fresh}}, challenge.MockEngineConfig{})

	payload, err := relay.Encode(relay.Record{
		Kind:         relay.AttemptPayment,
		RequestCode:  config.RequestCodePayment,
		ClientSecret: fresh.ClientSecret,
	})
	require.NoError(t, err)

	res, err := deps.orch.HandlePaymentResult(context.Background(), payload, testOpts)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, model.ResultSucceeded, res.Outcome)
	assert.Same(t, fresh, res.Intent)
}

func TestHandleResult_ForeignRequestCodeNotApplicable(t *testing.T) {
	deps := newTestOrch(api.MockConfig{}, challenge.MockEngineConfig{})

	payload, err := relay.Encode(relay.Record{
		Kind:         relay.AttemptSetup,
		RequestCode:  config.RequestCodeSetup,
		ClientSecret: "seti_1_secret",
	})
	require.NoError(t, err)

	res, err := deps.orch.HandlePaymentResult(context.Background(), payload, testOpts)
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = deps.orch.HandleSourceResult(context.Background(), payload, testOpts)
	require.NoError(t, err)
	assert.Nil(t, res)

	// No network traffic for a payload the handler does not own.
	assert.Zero(t, deps.client.RetrieveCalls())
}

func TestHandleResult_MalformedPayload(t *testing.T) {
	deps := newTestOrch(api.MockConfig{}, challenge.MockEngineConfig{})
	_, err := deps.orch.HandlePaymentResult(context.Background(), []byte("junk"), testOpts)
	assert.Error(t, err)
}

func TestHandleSetupResult_CancelOnceFromPayload(t *testing.T) {
	intent := &model.Intent{
		Kind:         model.KindSetup,
		ID:           "seti_1",
		ClientSecret: "seti_1_secret",
		Status:       model.StatusRequiresAction,
		NextAction:   &model.NextAction{Type: model.NextActionRedirectToURL, RedirectToURL: &model.RedirectData{URL: "https://bank.example"}},
	}
	canceled := finishedIntent(intent, model.StatusCanceled)
	deps := newTestOrch(api.MockConfig{
		Intents:        []*model.Intent{intent, canceled},
		CanceledIntent: canceled,
	}, challenge.MockEngineConfig{})

	payload, err := relay.Encode(relay.Record{
		Kind:            relay.AttemptSetup,
		RequestCode:     config.RequestCodeSetup,
		ClientSecret:    intent.ClientSecret,
		SourceID:        "src_dep",
		CancelDependent: true,
		Outcome:         &model.ChallengeOutcome{Kind: model.OutcomeCanceled},
	})
	require.NoError(t, err)

	res, err := deps.orch.HandleSetupResult(context.Background(), payload, testOpts)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, model.ResultCanceled, res.Outcome)
	assert.Equal(t, 1, deps.client.CancelCalls())
	assert.Equal(t, "src_dep", deps.client.LastCanceledSource())
}

func TestHandlePaymentResult_ErrorPayload(t *testing.T) {
	deps := newTestOrch(api.MockConfig{}, challenge.MockEngineConfig{})

	payload, err := relay.Encode(relay.Record{
		Kind:        relay.AttemptPayment,
		RequestCode: config.RequestCodePayment,
		Error:       &relay.ErrorDescriptor{Kind: "runtime", Message: "challenge host died"},
	})
	require.NoError(t, err)

	res, err := deps.orch.HandlePaymentResult(context.Background(), payload, testOpts)
	require.NoError(t, err)
	require.NotNil(t, res)

	var runtimeErr *model.RuntimeError
	require.ErrorAs(t, res.Err, &runtimeErr)
	// Error payloads never hit the network.
	assert.Zero(t, deps.client.RetrieveCalls())
}

func TestConfirmAndAuthenticate_ForcesSDKFlag(t *testing.T) {
	confirmed := &model.Intent{
		Kind:         model.KindPayment,
		ID:           "pi_c",
		ClientSecret: "pi_c_secret",
		Status:       model.StatusSucceeded,
	}
	deps := newTestOrch(api.MockConfig{ConfirmIntent: confirmed}, challenge.MockEngineConfig{})

	res := awaitResult(t, deps.orch.ConfirmAndAuthenticate(context.Background(), api.ConfirmParams{
		Kind:            model.KindPayment,
		ClientSecret:    confirmed.ClientSecret,
		PaymentMethodID: "pm_card",
	}, testOpts))

	require.NoError(t, res.Err)
	assert.True(t, deps.client.LastConfirmParams().UseSDK)
	assert.Equal(t, model.ResultSucceeded, res.Outcome)
}

func TestConfirmAndAuthenticate_FailureShortCircuits(t *testing.T) {
	deps := newTestOrch(api.MockConfig{
		ConfirmErr: &model.APIError{Code: "card_declined", Message: "declined"},
	}, challenge.MockEngineConfig{})

	res := awaitResult(t, deps.orch.ConfirmAndAuthenticate(context.Background(), api.ConfirmParams{
		Kind:         model.KindPayment,
		ClientSecret: "pi_x_secret",
	}, testOpts))

	var apiErr *model.APIError
	require.ErrorAs(t, res.Err, &apiErr)
	assert.Equal(t, "card_declined", apiErr.Code)

	// The classifier is never consulted: no fetches, no launches.
	assert.Zero(t, deps.client.RetrieveCalls())
	assert.Empty(t, deps.launcher.Launches())
}

func TestAuthenticateSource_RedirectFlow(t *testing.T) {
	src := &model.Source{
		ID:           "src_r",
		ClientSecret: "src_r_secret",
		Flow:         model.FlowRedirect,
		Status:       model.SourcePending,
		Redirect: &model.RedirectData{
			URL:       "https://bank.example/source",
			ReturnURL: "app://source-return",
		},
	}
	deps := newTestOrch(api.MockConfig{Source: src}, challenge.MockEngineConfig{})

	results := deps.orch.AuthenticateSource(context.Background(), src.ID, src.ClientSecret, testOpts)

	require.Eventually(t, func() bool {
		return len(deps.launcher.Launches()) == 1
	}, time.Second, 10*time.Millisecond)

	launch := deps.launcher.Launches()[0]
	assert.Equal(t, ui.KindRedirect, launch.Kind)
	assert.Equal(t, config.RequestCodeSource, launch.RequestCode)
	assert.Equal(t, "https://bank.example/source", launch.Args.URL)
	assert.Equal(t, "app://source-return", launch.Args.ReturnURL)
	assert.Equal(t, src.ClientSecret, launch.Args.ClientSecret)

	// No result until the host delivers the correlated payload.
	select {
	case res := <-results:
		t.Fatalf("unexpected result before redirect returned: %+v", res)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAuthenticateSource_NonRedirectBypasses(t *testing.T) {
	src := &model.Source{
		ID:           "src_n",
		ClientSecret: "src_n_secret",
		Flow:         model.FlowNone,
		Status:       model.SourceChargeable,
	}
	deps := newTestOrch(api.MockConfig{Source: src}, challenge.MockEngineConfig{})

	res := awaitResult(t, deps.orch.AuthenticateSource(context.Background(), src.ID, src.ClientSecret, testOpts))

	require.NoError(t, res.Err)
	assert.Same(t, src, res.Source)
	assert.Equal(t, model.ResultSucceeded, res.Outcome)
	assert.Empty(t, deps.launcher.Launches())
}

func TestHandleSourceResult_DeliversToParkedAttempt(t *testing.T) {
	src := &model.Source{
		ID:           "src_r",
		ClientSecret: "src_r_secret",
		Flow:         model.FlowRedirect,
		Status:       model.SourceChargeable,
		Redirect: &model.RedirectData{
			URL: "https://bank.example/source",
		},
	}
	deps := newTestOrch(api.MockConfig{Source: src}, challenge.MockEngineConfig{})

	results := deps.orch.AuthenticateSource(context.Background(), src.ID, src.ClientSecret, testOpts)
	require.Eventually(t, func() bool {
		return len(deps.launcher.Launches()) == 1
	}, time.Second, 10*time.Millisecond)

	payload, err := relay.Encode(relay.Record{
		Kind:         relay.AttemptSource,
		RequestCode:  config.RequestCodeSource,
		ClientSecret: src.ClientSecret,
		SourceID:     src.ID,
	})
	require.NoError(t, err)

	handled, err := deps.orch.HandleSourceResult(context.Background(), payload, testOpts)
	require.NoError(t, err)
	require.NotNil(t, handled)
	assert.Equal(t, model.ResultSucceeded, handled.Outcome)
	assert.Same(t, src, handled.Source)

	res := awaitResult(t, results)
	assert.Same(t, src, res.Source)
	assert.Equal(t, model.ResultSucceeded, res.Outcome)
}
