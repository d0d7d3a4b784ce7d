package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wangdaliu/payauth/internal/model"
)

func TestClassify_NoActionRequired(t *testing.T) {
	// No next action at all.
	action := Classify(&model.Intent{Status: model.StatusSucceeded})
	assert.Equal(t, ActionBypass, action.Kind)

	// A stale descriptor on an already-resolved intent is ignored too.
	action = Classify(&model.Intent{
		Status: model.StatusSucceeded,
		NextAction: &model.NextAction{
			Type:          model.NextActionRedirectToURL,
			RedirectToURL: &model.RedirectData{URL: "https://bank.example"},
		},
	})
	assert.Equal(t, ActionBypass, action.Kind)
}

func TestClassify_ThreeDS2(t *testing.T) {
	intent := threeDS2Intent(t, model.KindPayment)
	action := Classify(intent)

	require.Equal(t, ActionBegin3DS2, action.Kind)
	require.NotNil(t, action.Fingerprint)
	assert.Equal(t, "F000000000", action.Fingerprint.DirectoryServerID)
	assert.Equal(t, "src_3ds2", action.Fingerprint.SourceID)
}

func TestClassify_ThreeDS2_MalformedCertFails(t *testing.T) {
	intent := threeDS2Intent(t, model.KindPayment)
	intent.NextAction.SDK.ThreeDS2.RootCertsPEM = []string{"garbage"}

	action := Classify(intent)
	require.Equal(t, ActionFail, action.Kind)

	var certErr *model.CertificateError
	require.ErrorAs(t, action.Err, &certErr)
}

func TestClassify_ThreeDS1Redirect(t *testing.T) {
	intent := &model.Intent{
		Status: model.StatusRequiresAction,
		NextAction: &model.NextAction{
			Type: model.NextActionUseSDK,
			SDK: &model.SDKData{
				Type:        model.SDKThreeDS1,
				RedirectURL: "https://acs.example/3ds1",
			},
		},
	}
	action := Classify(intent)
	require.Equal(t, ActionBeginRedirect, action.Kind)
	assert.Equal(t, "https://acs.example/3ds1", action.URL)
	assert.Empty(t, action.ReturnURL)
}

func TestClassify_GenericRedirect(t *testing.T) {
	action := Classify(redirectIntent())
	require.Equal(t, ActionBeginRedirect, action.Kind)
	assert.Equal(t, "https://bank.example/authorize", action.URL)
	assert.Equal(t, "app://return", action.ReturnURL)
}

func TestClassify_UnsupportedKindsDegradeToBypass(t *testing.T) {
	tests := []struct {
		name   string
		action *model.NextAction
	}{
		{
			name: "unknown_sdk_data_type",
			action: &model.NextAction{
				Type: model.NextActionUseSDK,
				SDK:  &model.SDKData{Type: "hologram_scan"},
			},
		},
		{
			name:   "sdk_action_without_data",
			action: &model.NextAction{Type: model.NextActionUseSDK},
		},
		{
			name:   "unknown_action_type",
			action: &model.NextAction{Type: "display_qr_code"},
		},
		{
			name:   "redirect_without_data",
			action: &model.NextAction{Type: model.NextActionRedirectToURL},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action := Classify(&model.Intent{
				Status:     model.StatusRequiresAction,
				NextAction: tt.action,
			})
			assert.Equal(t, ActionBypass, action.Kind)
			assert.NoError(t, action.Err)
		})
	}
}
