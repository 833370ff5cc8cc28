// Package client provides the SDK entrypoint for the intent API: validated,
// encrypted, HMAC-signed intent submission over HTTP and a blocking
// WebSocket listener for proof notifications.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iancoleman/orderedmap"

	"github.com/shade-labs/shade-privacy-go/pkg/encryption"
	"github.com/shade-labs/shade-privacy-go/pkg/sdkerrors"
	"github.com/shade-labs/shade-privacy-go/pkg/signing"
	"github.com/shade-labs/shade-privacy-go/pkg/types"
)

const (
	// DefaultBaseURL is the API endpoint used when none is configured.
	DefaultBaseURL = "http://localhost:8000/api"

	userAgent = "ShadePrivacySDK-Go/1.0.0"

	defaultListLimit = 50
)

// Config holds the configuration for the intent client
type Config struct {
	// APIKey authenticates the caller, sent as x-api-key. Required.
	APIKey string
	// HMACSecret derives the AES key/IV and keys the request signature.
	// Never transmitted. Required.
	HMACSecret string
	// BaseURL of the API, default http://localhost:8000/api. A trailing
	// slash is stripped.
	BaseURL string
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// HTTPClient defaults to a client with a 30s timeout.
	HTTPClient *http.Client
}

// Client submits intents to the backend and listens for proof events.
// Methods are safe for concurrent use; the only shared state is the pooled
// HTTP transport.
type Client struct {
	apiKey     string
	hmacSecret string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new intent client instance
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, sdkerrors.NewValidationError("config cannot be nil")
	}
	if config.APIKey == "" {
		return nil, sdkerrors.NewValidationError("api_key is required")
	}
	if config.HMACSecret == "" {
		return nil, sdkerrors.NewValidationError("hmac_secret is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		apiKey:     config.APIKey,
		hmacSecret: config.HMACSecret,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// CreateIntent validates, encrypts, signs, and submits an intent.
//
// The payload must contain recipient, amount, token, and walletType; extra
// fields pass through unvalidated. The wallet signature is merged into the
// payload before encryption, while the raw payload is sent alongside in
// cleartext for the backend's bookkeeping. Returns the parsed response body
// unmodified.
func (c *Client) CreateIntent(ctx context.Context, payload *types.IntentPayload, walletSignature string, metadata map[string]interface{}) (map[string]interface{}, error) {
	if err := validateCreateIntentInput(payload, walletSignature); err != nil {
		return nil, err
	}

	// Merge the wallet signature into a copy so the caller's payload and the
	// cleartext copy in the request stay untouched.
	combined := orderedmap.New()
	for _, key := range payload.Keys() {
		value, _ := payload.Get(key)
		combined.Set(key, value)
	}
	combined.Set("walletSignature", walletSignature)

	envelope, err := encryption.Encrypt(combined, c.hmacSecret)
	if err != nil {
		return nil, err
	}

	// One instant serves both the signature and the header; the receiver
	// recomputes the signature from the header value.
	timestamp := utcTimestamp()
	signature := signing.Sign(envelope, c.hmacSecret, timestamp)

	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	reqBody := types.CreateIntentRequest{
		Intent:        types.IntentBody{Payload: payload},
		EncryptedData: envelope,
		Metadata:      metadata,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, sdkerrors.NewCryptoError("failed to serialize request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/intents/", bytes.NewReader(body))
	if err != nil {
		return nil, sdkerrors.NewAPIError(fmt.Sprintf("failed to build request: %v", err), 0)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(types.HeaderAPIKey, c.apiKey)
	req.Header.Set(types.HeaderSignature, signature)
	req.Header.Set(types.HeaderTimestamp, timestamp)

	result, err := c.do(req)
	if err != nil {
		c.logger.Sugar().Warnw("Failed to submit intent", "error", err)
		return nil, err
	}

	c.logger.Sugar().Infow("Intent submitted successfully", "intent_id", result["intentId"])
	return result, nil
}

// GetIntent fetches a single intent record by ID.
func (c *Client) GetIntent(ctx context.Context, intentID string) (map[string]interface{}, error) {
	if intentID == "" {
		return nil, sdkerrors.NewValidationError("intent_id is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/intents/"+intentID+"/", nil)
	if err != nil {
		return nil, sdkerrors.NewAPIError(fmt.Sprintf("failed to build request: %v", err), 0)
	}
	return c.do(req)
}

// ListIntents fetches intents with pagination. A non-positive limit falls
// back to the server default of 50; offset defaults to 0.
func (c *Client) ListIntents(ctx context.Context, limit, offset int) (map[string]interface{}, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("offset", fmt.Sprintf("%d", offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/intents/?"+params.Encode(), nil)
	if err != nil {
		return nil, sdkerrors.NewAPIError(fmt.Sprintf("failed to build request: %v", err), 0)
	}
	return c.do(req)
}

// do sends the request with the session headers and parses the JSON
// response. Transport failures and non-2xx responses surface as APIError.
func (c *Client) do(req *http.Request) (map[string]interface{}, error) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &sdkerrors.APIError{Message: "API request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, sdkerrors.NewAPIError(fmt.Sprintf("failed to read response: %v", err), resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, sdkerrors.NewAPIError(
			fmt.Sprintf("API request failed: %s", extractErrorMessage(body)), resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &sdkerrors.APIError{
			Message:    "failed to decode response",
			StatusCode: resp.StatusCode,
			Err:        errors.Wrap(err, "invalid JSON body"),
		}
	}
	return result, nil
}

// extractErrorMessage pulls a human-readable message out of an error
// response body, preferring "message", then "detail", then the raw text.
func extractErrorMessage(body []byte) string {
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if msg, ok := parsed["message"].(string); ok && msg != "" {
			return msg
		}
		if detail, ok := parsed["detail"].(string); ok && detail != "" {
			return detail
		}
	}
	return string(body)
}

// validateCreateIntentInput fails fast before any crypto or network work.
func validateCreateIntentInput(payload *types.IntentPayload, walletSignature string) error {
	if payload == nil || len(payload.Keys()) == 0 {
		return sdkerrors.NewValidationError("payload must be a non-empty map")
	}
	if walletSignature == "" {
		return sdkerrors.NewValidationError("wallet_signature is required and must be a string")
	}

	var missing []string
	for _, field := range types.RequiredPayloadFields {
		if _, ok := payload.Get(field); !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return sdkerrors.NewValidationError("missing required payload fields: %s", strings.Join(missing, ", "))
	}

	rawAmount, _ := payload.Get("amount")
	amount, ok := numericValue(rawAmount)
	if !ok || amount <= 0 {
		return sdkerrors.NewValidationError("amount must be a positive number")
	}

	recipient, _ := payload.Get("recipient")
	addr, ok := recipient.(string)
	if !ok || len(addr) < 20 {
		return sdkerrors.NewValidationError("recipient must be a valid address string")
	}

	return nil
}

// numericValue reports the float value of a JSON-ish number. Strings are not
// numbers here, matching the backend's validation.
func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// utcTimestamp formats the current time as ISO-8601 UTC with a literal Z and
// up to microsecond precision. Go trims trailing zeros from the fraction
// (".5" where some peers would emit ".500000"); this never affects the wire
// protocol because the receiver verifies the signature against the exact
// header string, never a re-rendered timestamp.
func utcTimestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.999999") + "Z"
}
