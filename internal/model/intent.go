package model

// IntentKind distinguishes the two concrete intent flavors. The kind
// determines which correlation request code an attempt uses and which typed
// result wraps its outcome.
type IntentKind string

const (
	KindPayment IntentKind = "payment_intent"
	KindSetup   IntentKind = "setup_intent"
)

// IntentStatus represents the server-side status of an intent.
type IntentStatus string

const (
	StatusRequiresPaymentMethod IntentStatus = "requires_payment_method"
	StatusRequiresConfirmation  IntentStatus = "requires_confirmation"
	StatusRequiresAction        IntentStatus = "requires_action"
	StatusProcessing            IntentStatus = "processing"
	StatusRequiresCapture       IntentStatus = "requires_capture"
	StatusCanceled              IntentStatus = "canceled"
	StatusSucceeded             IntentStatus = "succeeded"
)

// NextActionType identifies the variant of a next-action descriptor.
type NextActionType string

const (
	NextActionRedirectToURL NextActionType = "redirect_to_url"
	NextActionUseSDK        NextActionType = "use_sdk"
)

// SDKDataType identifies the flavor of embedded-SDK next-action data.
type SDKDataType string

const (
	SDKThreeDS1 SDKDataType = "three_ds1_redirect"
	SDKThreeDS2 SDKDataType = "three_ds2_fingerprint"
)

// RedirectData carries the URL pair for a browser redirect hand-off.
type RedirectData struct {
	URL       string `json:"url"`
	ReturnURL string `json:"return_url,omitempty"`
}

// ThreeDS2Data is the raw directory-server material attached to a 3DS2
// next action. Certificate fields are PEM-encoded and may be malformed;
// parsing them is the fingerprint's job, not this struct's.
type ThreeDS2Data struct {
	DirectoryServerID      string   `json:"directory_server_id"`
	NetworkName            string   `json:"network_name"`
	RootCertsPEM           []string `json:"root_certs"`
	DirectoryServerCertPEM string   `json:"directory_server_cert"`
	KeyID                  string   `json:"key_id,omitempty"`
	Source                 string   `json:"source"`
	MessageVersion         string   `json:"message_version,omitempty"`
}

// SDKData is the embedded-SDK variant of a next action. Exactly one of the
// typed payloads is set for the kinds this core recognizes; any other Type
// value is treated as unsupported and degrades to bypass.
type SDKData struct {
	Type        SDKDataType   `json:"type"`
	RedirectURL string        `json:"redirect_url,omitempty"` // 3DS1 only
	ThreeDS2    *ThreeDS2Data `json:"three_ds2,omitempty"`
}

// NextAction describes the additional customer verification an intent
// requires before it can complete.
type NextAction struct {
	Type          NextActionType `json:"type"`
	RedirectToURL *RedirectData  `json:"redirect_to_url,omitempty"`
	SDK           *SDKData       `json:"sdk,omitempty"`
}

// Intent is the server-side record of an in-progress payment or setup
// operation. The core only reads intents; fresher copies arrive from
// re-fetches, never from local mutation.
type Intent struct {
	Kind         IntentKind   `json:"kind"`
	ID           string       `json:"id"`
	ClientSecret string       `json:"client_secret"`
	LiveMode     bool         `json:"livemode"`
	Status       IntentStatus `json:"status"`
	NextAction   *NextAction  `json:"next_action,omitempty"`
}

// RequiresAction reports whether the intent still has an unresolved
// next-action descriptor.
func (in *Intent) RequiresAction() bool {
	return in.Status == StatusRequiresAction && in.NextAction != nil
}
