// Package signing computes the HMAC request signatures the intent API
// verifies against the x-signature header.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/shade-labs/shade-privacy-go/pkg/types"
)

// Sign computes the HMAC-SHA256 signature over "<ciphertext>:<timestamp>"
// keyed by the UTF-8 bytes of secret, returned as a lowercase hex string.
// A nil envelope contributes an empty ciphertext; the receiver rejects the
// request, not the signer.
//
// The signature is only valid when recomputed over the exact ciphertext and
// timestamp placed in the outgoing request.
func Sign(envelope *types.EncryptedEnvelope, secret, timestamp string) string {
	var ciphertext string
	if envelope != nil {
		ciphertext = envelope.Ciphertext
	}

	message := fmt.Sprintf("%s:%s", ciphertext, timestamp)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}
