package orchestrator

import (
	"context"
	"log/slog"

	"github.com/wangdaliu/payauth/internal/api"
	"github.com/wangdaliu/payauth/internal/model"
)

// finalize reconciles an attempt's outcome into the caller-facing result.
// It always re-fetches the intent, since the challenge may have changed
// server-side state and the locally held copy is never trusted, and applies
// the cancel-once policy: if the freshly fetched intent still requires
// action and the attempt asked for dependent-resource teardown, cancel the
// dependent source once and re-check. The flag is spent before the re-check,
// bounding the path to a single cancellation per logical flow even if the
// server keeps reporting an outstanding action.
func (o *Orchestrator) finalize(ctx context.Context, kind model.IntentKind, clientSecret, sourceID string, outcome *model.ChallengeOutcome, cancelDependent bool, opts api.RequestOptions) model.FinalResult {
	for {
		fetched, err := o.client.RetrieveIntent(ctx, kind, clientSecret, opts)
		if err != nil {
			return model.FinalResult{Err: model.WrapAPIError(err)}
		}
		if fetched.Kind != kind {
			return model.FinalResult{Err: &model.TypeMismatchError{Expected: kind, Got: fetched.Kind}}
		}

		if cancelDependent && fetched.RequiresAction() {
			slog.Info("cancel_once_applied", "intent", fetched.ID, "source_id", sourceID)
			if _, err := o.client.CancelIntentSource(ctx, fetched, sourceID, opts); err != nil {
				return model.FinalResult{Err: model.WrapAPIError(err)}
			}
			cancelDependent = false
			continue
		}

		res := model.FinalResult{Intent: fetched}
		if outcome != nil {
			res.Outcome = outcome.ResultCode()
			res.Err = outcome.Err()
		} else {
			// Redirect and bypass returns carry no challenge outcome; the
			// re-fetched server state is the only classification signal.
			res.Outcome = model.ResultForStatus(fetched.Status)
		}
		return res
	}
}
