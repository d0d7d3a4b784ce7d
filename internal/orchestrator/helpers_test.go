package orchestrator

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wangdaliu/payauth/internal/analytics"
	"github.com/wangdaliu/payauth/internal/api"
	"github.com/wangdaliu/payauth/internal/challenge"
	"github.com/wangdaliu/payauth/internal/config"
	"github.com/wangdaliu/payauth/internal/model"
	"github.com/wangdaliu/payauth/internal/ui"
)

func testCertPEM(t *testing.T) string {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test directory server"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
}

func threeDS2Intent(t *testing.T, kind model.IntentKind) *model.Intent {
	t.Helper()
	cert := testCertPEM(t)
	return &model.Intent{
		Kind:         kind,
		ID:           "pi_3ds2",
		ClientSecret: "pi_3ds2_secret",
		Status:       model.StatusRequiresAction,
		NextAction: &model.NextAction{
			Type: model.NextActionUseSDK,
			SDK: &model.SDKData{
				Type: model.SDKThreeDS2,
				ThreeDS2: &model.ThreeDS2Data{
					DirectoryServerID:      "F000000000",
					NetworkName:            "visa",
					RootCertsPEM:           []string{cert},
					DirectoryServerCertPEM: cert,
					KeyID:                  "key-1",
					Source:                 "src_3ds2",
				},
			},
		},
	}
}

func redirectIntent() *model.Intent {
	return &model.Intent{
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
}

func finishedIntent(src *model.Intent, status model.IntentStatus) *model.Intent {
	return &model.Intent{
		Kind:         src.Kind,
		ID:           src.ID,
		ClientSecret: src.ClientSecret,
		LiveMode:     src.LiveMode,
		Status:       status,
	}
}

func challengeMandatedResponse() *api.AuthResponse {
	return &api.AuthResponse{
		SourceID: "src_3ds2",
		Ares: &api.ARes{
			ChallengeMandated: true,
			SignedContent:     "signed-content",
			ServerTransID:     "server-trans",
			AcsTransID:        "acs-trans",
		},
	}
}

type orchDeps struct {
	client   *api.MockClient
	engine   *challenge.MockEngine
	launcher *ui.RecordingLauncher
	sink     *analytics.RecordingSink
	orch     *Orchestrator
}

func newTestOrch(clientCfg api.MockConfig, engineCfg challenge.MockEngineConfig) orchDeps {
	client := api.NewMockClient(clientCfg)
	engine := challenge.NewMockEngine(engineCfg)
	launcher := ui.NewRecordingLauncher()
	sink := analytics.NewRecordingSink()
	orch := NewWithConfig(client, engine, launcher, sink, config.DefaultChallengeTimeout, 0)
	return orchDeps{client: client, engine: engine, launcher: launcher, sink: sink, orch: orch}
}

func awaitResult(t *testing.T, results <-chan model.FinalResult) model.FinalResult {
	t.Helper()
	select {
	case res := <-results:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for final result")
		return model.FinalResult{}
	}
}

var testOpts = api.RequestOptions{APIKey: "sk_test_123"}
