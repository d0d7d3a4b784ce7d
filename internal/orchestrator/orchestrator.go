// Package orchestrator coordinates authentication of a payment or setup
// confirmation: it classifies the verification an intent requires, drives
// the selected mechanism to completion, and reconciles the asynchronously
// delivered outcome back into a single caller-facing result.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wangdaliu/payauth/internal/analytics"
	"github.com/wangdaliu/payauth/internal/api"
	"github.com/wangdaliu/payauth/internal/challenge"
	"github.com/wangdaliu/payauth/internal/config"
	"github.com/wangdaliu/payauth/internal/model"
	"github.com/wangdaliu/payauth/internal/relay"
	"github.com/wangdaliu/payauth/internal/ui"
)

// Orchestrator is the public entry surface for intent and source
// authentication. It is the only component with asynchronous network
// collaborators; attempts share nothing but read-only configuration.
type Orchestrator struct {
	client   api.Client
	engine   challenge.Engine
	launcher ui.Launcher
	sink     analytics.Sink
	mailbox  *relay.Mailbox

	challengeTimeout time.Duration
	preDelay         time.Duration
}

// New creates an Orchestrator with the default challenge timeout and
// pre-challenge delay.
func New(client api.Client, engine challenge.Engine, launcher ui.Launcher, sink analytics.Sink) *Orchestrator {
	return NewWithConfig(client, engine, launcher, sink, config.DefaultChallengeTimeout, config.PreChallengeDelay)
}

// NewWithConfig creates an Orchestrator with custom timing, useful for
// testing. The challenge timeout clamps into the allowed range; the delay is
// taken as given.
func NewWithConfig(client api.Client, engine challenge.Engine, launcher ui.Launcher, sink analytics.Sink, challengeTimeout, preDelay time.Duration) *Orchestrator {
	if sink == nil {
		sink = analytics.NopSink{}
	}
	return &Orchestrator{
		client:           client,
		engine:           engine,
		launcher:         launcher,
		sink:             sink,
		mailbox:          relay.NewMailbox(),
		challengeTimeout: config.ChallengeTimeout(challengeTimeout),
		preDelay:         preDelay,
	}
}

// attempt owns the identity and result channel of one logical
// authentication flow. Each attempt produces exactly one terminal result.
type attempt struct {
	id      string
	kind    relay.AttemptKind
	results chan model.FinalResult
	once    sync.Once
}

func newAttempt(kind relay.AttemptKind) *attempt {
	return &attempt{
		id:      challenge.NewTransactionID(),
		kind:    kind,
		results: make(chan model.FinalResult, 1),
	}
}

// deliver publishes the attempt's single terminal result. The channel is
// buffered, so delivery to an abandoned flow is dropped silently instead of
// leaking a goroutine.
func (a *attempt) deliver(res model.FinalResult) {
	a.once.Do(func() {
		select {
		case a.results <- res:
		default:
		}
	})
}

// ConfirmAndAuthenticate confirms the intent and, on success, dispatches it
// to the verification mechanism its state requires. The native-SDK flag is
// forced on the confirmation parameters. A confirmation failure
// short-circuits to an error result without consulting the classifier.
func (o *Orchestrator) ConfirmAndAuthenticate(ctx context.Context, params api.ConfirmParams, opts api.RequestOptions) <-chan model.FinalResult {
	att := newAttempt(attemptKindForIntent(params.Kind))
	o.sink.Emit(analytics.EventConfirmStarted, map[string]string{"attempt_id": att.id})
	go func() {
		intent, err := o.client.ConfirmIntent(ctx, params.WithSDKUsage(), opts)
		if err != nil {
			slog.Warn("confirm_failed", "attempt_id", att.id, "error", err)
			att.deliver(model.FinalResult{Err: model.WrapAPIError(err)})
			return
		}
		o.dispatch(ctx, att, intent, opts)
	}()
	return att.results
}

// AuthenticateIntent fetches an existing intent by client secret and
// dispatches it without confirming first.
func (o *Orchestrator) AuthenticateIntent(ctx context.Context, kind model.IntentKind, clientSecret string, opts api.RequestOptions) <-chan model.FinalResult {
	att := newAttempt(attemptKindForIntent(kind))
	go func() {
		intent, err := o.client.RetrieveIntent(ctx, kind, clientSecret, opts)
		if err != nil {
			att.deliver(model.FinalResult{Err: model.WrapAPIError(err)})
			return
		}
		o.dispatch(ctx, att, intent, opts)
	}()
	return att.results
}

// AuthenticateSource runs the two-state source flow: fetch the source, then
// either launch its redirect or surface it as-is.
func (o *Orchestrator) AuthenticateSource(ctx context.Context, id, clientSecret string, opts api.RequestOptions) <-chan model.FinalResult {
	att := newAttempt(relay.AttemptSource)
	go func() {
		src, err := o.client.RetrieveSource(ctx, id, clientSecret, opts)
		if err != nil {
			att.deliver(model.FinalResult{Err: model.WrapAPIError(err)})
			return
		}
		if src.Flow == model.FlowRedirect && src.Redirect != nil {
			o.mailbox.Register(config.RequestCodeSource, att.id, att.deliver)
			o.sink.Emit(analytics.EventRedirectLaunched, map[string]string{"attempt_id": att.id, "source": src.ID})
			slog.Info("source_redirect_launched", "attempt_id", att.id, "source", src.ID)
			o.launcher.Launch(ui.KindRedirect, ui.Args{
				ClientSecret: src.ClientSecret,
				URL:          src.Redirect.URL,
				ReturnURL:    src.Redirect.ReturnURL,
			}, config.RequestCodeSource)
			return
		}
		att.deliver(model.FinalResult{Source: src, Outcome: model.ResultForSourceStatus(src.Status)})
	}()
	return att.results
}

// dispatch routes a fetched or freshly confirmed intent to the mechanism the
// classifier selects.
func (o *Orchestrator) dispatch(ctx context.Context, att *attempt, intent *model.Intent, opts api.RequestOptions) {
	action := Classify(intent)
	switch action.Kind {
	case ActionBegin3DS2:
		o.beginChallenge(ctx, att, intent, action.Fingerprint, opts)
	case ActionBeginRedirect:
		o.beginRedirect(att, intent.ClientSecret, action.URL, action.ReturnURL)
	case ActionFail:
		slog.Warn("classification_failed", "attempt_id", att.id, "intent", intent.ID, "error", action.Err)
		att.deliver(model.FinalResult{Err: action.Err})
	default:
		slog.Info("authentication_bypassed",
			"attempt_id", att.id,
			"intent", intent.ID,
			"status", string(intent.Status),
		)
		att.deliver(model.FinalResult{Intent: intent, Outcome: model.ResultForStatus(intent.Status)})
	}
}

// beginRedirect hands the URL pair and correlation code to the host UI and
// parks the attempt until a correlated result arrives. No retries here; the
// host owns back-navigation semantics.
func (o *Orchestrator) beginRedirect(att *attempt, clientSecret, url, returnURL string) {
	code := att.kind.RequestCode()
	o.mailbox.Register(code, att.id, att.deliver)
	o.sink.Emit(analytics.EventRedirectLaunched, map[string]string{"attempt_id": att.id})
	slog.Info("redirect_launched", "attempt_id", att.id, "request_code", code)
	o.launcher.Launch(ui.KindRedirect, ui.Args{
		ClientSecret: clientSecret,
		URL:          url,
		ReturnURL:    returnURL,
	}, code)
}

// HandlePaymentResult consumes a correlated payload for a payment-intent
// attempt. Payloads carrying any other request code return (nil, nil).
func (o *Orchestrator) HandlePaymentResult(ctx context.Context, payload []byte, opts api.RequestOptions) (*model.FinalResult, error) {
	return o.handleIntentResult(ctx, payload, opts, model.KindPayment, config.RequestCodePayment)
}

// HandleSetupResult consumes a correlated payload for a setup-intent
// attempt. Payloads carrying any other request code return (nil, nil).
func (o *Orchestrator) HandleSetupResult(ctx context.Context, payload []byte, opts api.RequestOptions) (*model.FinalResult, error) {
	return o.handleIntentResult(ctx, payload, opts, model.KindSetup, config.RequestCodeSetup)
}

// HandleSourceResult consumes a correlated payload for a source attempt.
// Payloads carrying any other request code return (nil, nil).
func (o *Orchestrator) HandleSourceResult(ctx context.Context, payload []byte, opts api.RequestOptions) (*model.FinalResult, error) {
	rec, err := relay.Decode(payload)
	if err != nil {
		return nil, err
	}
	if rec.RequestCode != config.RequestCodeSource {
		return nil, nil
	}
	var res model.FinalResult
	if rec.Error != nil {
		res = model.FinalResult{Err: rec.Error.Err()}
	} else {
		src, err := o.client.RetrieveSource(ctx, rec.SourceID, rec.ClientSecret, opts)
		if err != nil {
			res = model.FinalResult{Err: model.WrapAPIError(err)}
		} else {
			res = model.FinalResult{Source: src, Outcome: model.ResultForSourceStatus(src.Status)}
		}
	}
	o.deliverCorrelated(config.RequestCodeSource, res)
	return &res, nil
}

func (o *Orchestrator) handleIntentResult(ctx context.Context, payload []byte, opts api.RequestOptions, kind model.IntentKind, code int) (*model.FinalResult, error) {
	rec, err := relay.Decode(payload)
	if err != nil {
		return nil, err
	}
	if rec.RequestCode != code {
		return nil, nil
	}
	var res model.FinalResult
	if rec.Error != nil {
		res = model.FinalResult{Err: rec.Error.Err()}
	} else {
		res = o.finalize(ctx, kind, rec.ClientSecret, rec.SourceID, rec.Outcome, rec.CancelDependent, opts)
	}
	o.deliverCorrelated(code, res)
	return &res, nil
}

// deliverCorrelated completes a parked attempt, if one is waiting on this
// request code. Take removes the entry first, so delivery happens at most
// once per attempt.
func (o *Orchestrator) deliverCorrelated(code int, res model.FinalResult) {
	if deliver, ok := o.mailbox.Take(code); ok {
		deliver(res)
	}
}

func attemptKindForIntent(kind model.IntentKind) relay.AttemptKind {
	if kind == model.KindSetup {
		return relay.AttemptSetup
	}
	return relay.AttemptPayment
}
