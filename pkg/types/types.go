// Package types holds the wire types exchanged with the intent API.
package types

import (
	"github.com/iancoleman/orderedmap"
)

// Request header names expected by the backend.
const (
	HeaderAPIKey    = "x-api-key"
	HeaderSignature = "x-signature"
	HeaderTimestamp = "x-timestamp"
)

// RequiredPayloadFields lists the payload fields every intent must carry, in
// the conventional serialization order.
var RequiredPayloadFields = []string{"recipient", "amount", "token", "walletType"}

// IntentPayload is the transaction payload submitted with an intent. Key
// order is significant: the canonical JSON fed into encryption preserves
// insertion order, so two clients must insert fields in the same order to
// produce identical ciphertext.
type IntentPayload = orderedmap.OrderedMap

// NewIntentPayload builds a payload with the four required fields in the
// conventional order. Additional fields may be appended with Set.
func NewIntentPayload(recipient string, amount float64, token, walletType string) *IntentPayload {
	p := orderedmap.New()
	p.Set("recipient", recipient)
	p.Set("amount", amount)
	p.Set("token", token)
	p.Set("walletType", walletType)
	return p
}

// EncryptedEnvelope carries the encrypted payload. Ciphertext is the
// standard base64 encoding of IV || AES-CBC ciphertext.
type EncryptedEnvelope struct {
	Ciphertext string `json:"ciphertext"`
}

// IntentBody wraps the raw payload inside the create-intent request.
type IntentBody struct {
	Payload *IntentPayload `json:"payload"`
}

// CreateIntentRequest is the POST /intents/ body. The raw payload travels in
// cleartext alongside the encrypted copy; the backend uses it for
// non-cryptographic bookkeeping only.
type CreateIntentRequest struct {
	Intent        IntentBody             `json:"intent"`
	EncryptedData *EncryptedEnvelope     `json:"encryptedData"`
	Metadata      map[string]interface{} `json:"metadata"`
}
