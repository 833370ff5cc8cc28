package signing

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shade-labs/shade-privacy-go/pkg/types"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Golden vectors generated with an independent HMAC-SHA256 implementation
// over "<ciphertext>:<timestamp>".
func TestSign_GoldenVectors(t *testing.T) {
	tests := []struct {
		name       string
		ciphertext string
		secret     string
		timestamp  string
		expected   string
	}{
		{
			name:       "simple message",
			ciphertext: "abc123",
			secret:     "topsecret",
			timestamp:  "2024-01-01T00:00:00Z",
			expected:   "0a5986464e4508925d663912e430ff6aed9f6e6abb498e2506ee6416ee578235",
		},
		{
			name:       "golden envelope",
			ciphertext: "pNgOrJqyakotoEElvCwJalPlhJTmH85g1iouM5zC7N/zAHm9qgCWM41yebhcNC/PzbCQ4AvTYkmf+HB7HRp3Gyj7mVhpnA4p+t0pQJ+rgwwvaVjglk8lwRP1qeSXm6Dx31wOmBWmqjndnVU3AC1dG0Ja/0V3KhTA/sTLqiiemFJLuP1m6xCwVtL8YKf29IrD/cqtmIWhV96YytfGtGCnwg==",
			secret:     "s3cr3t",
			timestamp:  "2024-01-15T10:30:00.123456Z",
			expected:   "722df40c48e0738ce6b35bf32140fbc66117b46746e678c870d66b771a745daa",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envelope := &types.EncryptedEnvelope{Ciphertext: tt.ciphertext}
			require.Equal(t, tt.expected, Sign(envelope, tt.secret, tt.timestamp))
		})
	}
}

func TestSign_DeterministicHexDigest(t *testing.T) {
	envelope := &types.EncryptedEnvelope{Ciphertext: "some-ciphertext"}

	first := Sign(envelope, "secret", "2024-06-01T12:00:00Z")
	second := Sign(envelope, "secret", "2024-06-01T12:00:00Z")

	require.Equal(t, first, second)
	require.Regexp(t, hexDigest, first)
}

func TestSign_TamperDetection(t *testing.T) {
	envelope := &types.EncryptedEnvelope{Ciphertext: "AAAABBBBCCCC"}
	secret := "s3cr3t"
	timestamp := "2024-01-15T10:30:00Z"
	base := Sign(envelope, secret, timestamp)

	// Any change to the ciphertext, timestamp, or secret must change the
	// signature.
	require.NotEqual(t, base, Sign(&types.EncryptedEnvelope{Ciphertext: "AAAABBBBCCCD"}, secret, timestamp))
	require.NotEqual(t, base, Sign(envelope, secret, "2024-01-15T10:30:01Z"))
	require.NotEqual(t, base, Sign(envelope, "other-secret", timestamp))
}

func TestSign_NilEnvelopeUsesEmptyCiphertext(t *testing.T) {
	secret := "s3cr3t"
	timestamp := "2024-01-15T10:30:00Z"

	require.Equal(t,
		Sign(&types.EncryptedEnvelope{}, secret, timestamp),
		Sign(nil, secret, timestamp),
	)
}
