package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wangdaliu/payauth/internal/analytics"
	"github.com/wangdaliu/payauth/internal/api"
	"github.com/wangdaliu/payauth/internal/challenge"
	"github.com/wangdaliu/payauth/internal/model"
)

// completionNotifyTimeout bounds the best-effort completion notification,
// which runs detached from the flow's own context.
const completionNotifyTimeout = 10 * time.Second

// beginChallenge creates a challenge transaction from the fingerprint,
// starts the 3DS2 authentication on the API side and drives the result:
// interactive challenge, frictionless completion, fallback redirect, or
// error. Any failure before a transaction-level outcome exists finalizes
// immediately as an error without attempting a challenge.
func (o *Orchestrator) beginChallenge(ctx context.Context, att *attempt, intent *model.Intent, fp *challenge.DirectoryServerFingerprint, opts api.RequestOptions) {
	o.sink.Emit(analytics.EventFingerprintParsed, map[string]string{
		"attempt_id":       att.id,
		"directory_server": fp.DirectoryServerID,
	})

	txn, err := o.engine.CreateTransaction(challenge.TransactionParams{
		DirectoryServerID: fp.DirectoryServerID,
		MessageVersion:    fp.MessageVersion,
		LiveMode:          intent.LiveMode,
		NetworkName:       fp.NetworkName,
		RootCerts:         fp.RootCerts,
		ServerPublicKey:   fp.ServerPublicKey,
		KeyID:             fp.KeyID,
	})
	if err != nil {
		slog.Error("challenge_transaction_failed", "attempt_id", att.id, "error", err)
		att.deliver(model.FinalResult{Err: model.WrapAPIError(err)})
		return
	}

	o.launcher.ShowProgress()

	areq := txn.AuthRequestParams()
	resp, err := o.client.Start3DS2Auth(ctx, api.AuthParams{
		SourceID:              fp.SourceID,
		SDKAppID:              areq.SDKAppID,
		SDKReferenceNumber:    areq.SDKReferenceNumber,
		SDKTransactionID:      areq.SDKTransactionID,
		DeviceData:            areq.DeviceData,
		SDKEphemeralPublicKey: areq.SDKEphemeralPublicKey,
		MessageVersion:        areq.MessageVersion,
		MaxTimeoutMinutes:     int(o.challengeTimeout / time.Minute),
	}, intent.ID, opts)
	if err != nil {
		o.sink.Emit(analytics.EventChallengeErrored, map[string]string{"attempt_id": att.id})
		slog.Warn("3ds2_auth_failed", "attempt_id", att.id, "error", err)
		att.deliver(model.FinalResult{Err: model.WrapAPIError(err)})
		return
	}

	srcID := resp.SourceID
	if srcID == "" {
		srcID = fp.SourceID
	}

	switch {
	case resp.Ares != nil && resp.Ares.ChallengeMandated:
		o.startChallengeFlow(ctx, att, intent, txn, challenge.Params{
			SignedContent: resp.Ares.SignedContent,
			ServerTransID: resp.Ares.ServerTransID,
			AcsTransID:    resp.Ares.AcsTransID,
		}, srcID, opts)
	case resp.Ares != nil:
		// Frictionless: the directory server authenticated without an
		// interactive challenge.
		o.sink.Emit(analytics.EventFrictionless, map[string]string{"attempt_id": att.id})
		slog.Info("3ds2_frictionless", "attempt_id", att.id, "intent", intent.ID)
		outcome := model.ChallengeOutcome{Kind: model.OutcomeCompleted, Success: true}
		att.deliver(o.finalize(ctx, intent.Kind, intent.ClientSecret, srcID, &outcome, false, opts))
	case resp.FallbackRedirectURL != "":
		o.sink.Emit(analytics.EventFallbackRedirect, map[string]string{"attempt_id": att.id})
		slog.Info("3ds2_fallback_redirect", "attempt_id", att.id, "intent", intent.ID)
		o.beginRedirect(att, intent.ClientSecret, resp.FallbackRedirectURL, "")
	default:
		att.deliver(model.FinalResult{
			Err: &model.ProtocolError{Detail: "authentication response carried neither challenge nor fallback"},
		})
	}
}

// startChallengeFlow hands the transaction its ACS parameters after the
// fixed pre-challenge pause. The pause waits out the preparing indicator's
// dismissal animation off the calling goroutine; it is a UX affordance, not
// a protocol step, and an abandoned flow must not start the challenge.
func (o *Orchestrator) startChallengeFlow(ctx context.Context, att *attempt, intent *model.Intent, txn challenge.Transaction, params challenge.Params, srcID string, opts api.RequestOptions) {
	go func() {
		if o.preDelay > 0 {
			select {
			case <-time.After(o.preDelay):
			case <-ctx.Done():
				att.deliver(model.FinalResult{Err: model.WrapAPIError(ctx.Err())})
				return
			}
		} else if ctx.Err() != nil {
			att.deliver(model.FinalResult{Err: model.WrapAPIError(ctx.Err())})
			return
		}

		o.sink.Emit(analytics.EventChallengeLaunched, map[string]string{
			"attempt_id": att.id,
			"ui_type":    txn.UIType(),
		})
		slog.Info("challenge_launched", "attempt_id", att.id, "intent", intent.ID, "ui_type", txn.UIType())
		txn.ExecuteChallenge(ctx, o.launcher, params, o.challengeReceiver(ctx, att, intent, srcID, opts), o.challengeTimeout)
	}()
}

// challengeReceiver maps each terminal transaction event into exactly one
// finalize call via a single tagged-variant switch. Classification events
// and the completion notification are best-effort and never gate
// finalization. The once guard suppresses duplicate terminal events from a
// misbehaving engine.
func (o *Orchestrator) challengeReceiver(ctx context.Context, att *attempt, intent *model.Intent, srcID string, opts api.RequestOptions) challenge.OutcomeFunc {
	var once sync.Once
	return func(outcome model.ChallengeOutcome) {
		once.Do(func() {
			o.emitOutcome(att, outcome)
			go o.notifyCompletion(srcID, opts)

			cancelDependent := outcome.Kind == model.OutcomeCanceled || outcome.Kind == model.OutcomeTimedOut
			att.deliver(o.finalize(ctx, intent.Kind, intent.ClientSecret, srcID, &outcome, cancelDependent, opts))
		})
	}
}

func (o *Orchestrator) emitOutcome(att *attempt, outcome model.ChallengeOutcome) {
	var event analytics.Event
	switch outcome.Kind {
	case model.OutcomeCompleted:
		event = analytics.EventChallengeCompleted
	case model.OutcomeCanceled:
		event = analytics.EventChallengeCanceled
	case model.OutcomeTimedOut:
		event = analytics.EventChallengeTimedOut
	case model.OutcomeProtocolError:
		event = analytics.EventChallengeProtocolErr
	case model.OutcomeRuntimeError:
		event = analytics.EventChallengeRuntimeErr
	default:
		return
	}
	fields := map[string]string{"attempt_id": att.id}
	if outcome.Detail != "" {
		fields["detail"] = outcome.Detail
	}
	o.sink.Emit(event, fields)
}

// notifyCompletion tells the API side the challenge flow reached a terminal
// state. Best-effort: failures are logged, never surfaced, and the call runs
// detached so caller abandonment cannot interrupt it.
func (o *Orchestrator) notifyCompletion(srcID string, opts api.RequestOptions) {
	ctx, cancel := context.WithTimeout(context.Background(), completionNotifyTimeout)
	defer cancel()
	if _, err := o.client.Complete3DS2Auth(ctx, srcID, opts); err != nil {
		slog.Warn("challenge_completion_notify_failed", "source_id", srcID, "error", err)
	}
}
