// Command simulator runs scripted end-to-end authentication flows against
// the in-tree collaborator mocks and logs each outcome.
package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"log/slog"
	"math/big"
	"os"
	"time"

	"github.com/wangdaliu/payauth/internal/analytics"
	"github.com/wangdaliu/payauth/internal/api"
	"github.com/wangdaliu/payauth/internal/challenge"
	"github.com/wangdaliu/payauth/internal/config"
	"github.com/wangdaliu/payauth/internal/model"
	"github.com/wangdaliu/payauth/internal/orchestrator"
	"github.com/wangdaliu/payauth/internal/relay"
	"github.com/wangdaliu/payauth/internal/ui"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("simulator_starting")

	runFrictionless()
	runChallengeCompleted()
	runChallengeCanceled()
	runRedirectReturn()
	runBypass()

	slog.Info("simulator_done")
}

func runFrictionless() {
	intent := intentWith3DS2("pi_frictionless")
	client := api.NewMockClient(api.MockConfig{
		Intents: []*model.Intent{
			intent,
			succeededCopy(intent),
		},
		AuthResponse: &api.AuthResponse{
			SourceID: "src_1",
			Ares:     &api.ARes{ChallengeMandated: false},
		},
		CompleteOK: true,
	})
	res := runFlow("frictionless", client, challenge.MockEngineConfig{})
	logResult("frictionless", res)
}

func runChallengeCompleted() {
	intent := intentWith3DS2("pi_challenge")
	client := api.NewMockClient(api.MockConfig{
		Intents: []*model.Intent{
			intent,
			succeededCopy(intent),
		},
		AuthResponse: &api.AuthResponse{
			SourceID: "src_2",
			Ares: &api.ARes{
				ChallengeMandated: true,
				SignedContent:     "signed-content",
				ServerTransID:     "server-trans",
				AcsTransID:        "acs-trans",
			},
		},
		CompleteOK: true,
	})
	res := runFlow("challenge_completed", client, challenge.MockEngineConfig{
		Outcome: model.ChallengeOutcome{Kind: model.OutcomeCompleted, Success: true},
	})
	logResult("challenge_completed", res)
}

func runChallengeCanceled() {
	intent := intentWith3DS2("pi_canceled")
	canceled := &model.Intent{
		Kind:         model.KindPayment,
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       model.StatusCanceled,
	}
	client := api.NewMockClient(api.MockConfig{
		// Still requires action on the first re-fetch, so the cancel-once
		// policy fires exactly once.
		Intents:        []*model.Intent{intent, intent, canceled},
		CanceledIntent: canceled,
		AuthResponse: &api.AuthResponse{
			SourceID: "src_3",
			Ares: &api.ARes{
				ChallengeMandated: true,
				SignedContent:     "signed-content",
				ServerTransID:     "server-trans",
				AcsTransID:        "acs-trans",
			},
		},
		CompleteOK: true,
	})
	res := runFlow("challenge_canceled", client, challenge.MockEngineConfig{
		Outcome: model.ChallengeOutcome{Kind: model.OutcomeCanceled},
	})
	slog.Info("cancel_calls", "scenario", "challenge_canceled", "count", client.CancelCalls())
	logResult("challenge_canceled", res)
}

func runRedirectReturn() {
	intent := &model.Intent{
		Kind:         model.KindPayment,
		ID:           "pi_redirect",
		ClientSecret: "pi_redirect_secret",
		Status:       model.StatusRequiresAction,
		NextAction: &model.NextAction{
			Type: model.NextActionRedirectToURL,
			RedirectToURL: &model.RedirectData{
				URL:       "https://bank.example/authorize",
				ReturnURL: "app://return",
			},
		},
	}
	client := api.NewMockClient(api.MockConfig{
		Intents: []*model.Intent{intent, succeededCopy(intent)},
	})
	launcher := ui.NewRecordingLauncher()
	orch := orchestrator.NewWithConfig(client, challenge.NewMockEngine(challenge.MockEngineConfig{}), launcher, analytics.NewSlogSink(nil), config.DefaultChallengeTimeout, 0)

	ctx := context.Background()
	results := orch.AuthenticateIntent(ctx, model.KindPayment, intent.ClientSecret, api.RequestOptions{APIKey: "sk_test"})

	// Play the host: the redirect came back, deliver the correlated payload.
	payload, err := relay.Encode(relay.Record{
		Kind:         relay.AttemptPayment,
		RequestCode:  config.RequestCodePayment,
		ClientSecret: intent.ClientSecret,
	})
	if err != nil {
		slog.Error("encode_failed", "error", err)
		return
	}
	deadline := time.Now().Add(5 * time.Second)
	for len(launcher.Launches()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if _, err := orch.HandlePaymentResult(ctx, payload, api.RequestOptions{APIKey: "sk_test"}); err != nil {
		slog.Error("handle_result_failed", "error", err)
		return
	}
	logResult("redirect_return", await(results))
}

func runBypass() {
	intent := &model.Intent{
		Kind:         model.KindPayment,
		ID:           "pi_done",
		ClientSecret: "pi_done_secret",
		Status:       model.StatusSucceeded,
	}
	client := api.NewMockClient(api.MockConfig{Intents: []*model.Intent{intent}})
	res := runFlow("bypass", client, challenge.MockEngineConfig{})
	logResult("bypass", res)
}

func runFlow(scenario string, client *api.MockClient, engineCfg challenge.MockEngineConfig) model.FinalResult {
	engine := challenge.NewMockEngine(engineCfg)
	launcher := ui.NewRecordingLauncher()
	orch := orchestrator.NewWithConfig(client, engine, launcher, analytics.NewSlogSink(nil), config.DefaultChallengeTimeout, 0)

	slog.Info("scenario_starting", "scenario", scenario)
	results := orch.AuthenticateIntent(context.Background(), model.KindPayment, "secret", api.RequestOptions{APIKey: "sk_test"})
	return await(results)
}

func await(results <-chan model.FinalResult) model.FinalResult {
	select {
	case res := <-results:
		return res
	case <-time.After(5 * time.Second):
		return model.FinalResult{Err: &model.RuntimeError{Detail: "simulator timed out waiting for result"}}
	}
}

func logResult(scenario string, res model.FinalResult) {
	attrs := []any{"scenario", scenario, "outcome", string(res.Outcome)}
	if res.Intent != nil {
		attrs = append(attrs, "intent", res.Intent.ID, "status", string(res.Intent.Status))
	}
	if res.Source != nil {
		attrs = append(attrs, "source", res.Source.ID)
	}
	if res.Err != nil {
		attrs = append(attrs, "error", res.Err.Error())
		slog.Warn("scenario_failed", attrs...)
		return
	}
	slog.Info("scenario_result", attrs...)
}

func intentWith3DS2(id string) *model.Intent {
	certPEM := selfSignedCertPEM()
	return &model.Intent{
		Kind:         model.KindPayment,
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       model.StatusRequiresAction,
		NextAction: &model.NextAction{
			Type: model.NextActionUseSDK,
			SDK: &model.SDKData{
				Type: model.SDKThreeDS2,
				ThreeDS2: &model.ThreeDS2Data{
					DirectoryServerID:      "F000000000",
					NetworkName:            "visa",
					RootCertsPEM:           []string{certPEM},
					DirectoryServerCertPEM: certPEM,
					KeyID:                  "key-1",
					Source:                 "src_" + id,
				},
			},
		},
	}
}

func succeededCopy(in *model.Intent) *model.Intent {
	return &model.Intent{
		Kind:         in.Kind,
		ID:           in.ID,
		ClientSecret: in.ClientSecret,
		LiveMode:     in.LiveMode,
		Status:       model.StatusSucceeded,
	}
}

func selfSignedCertPEM() string {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		panic(err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "simulated directory server"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		panic(err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
}
