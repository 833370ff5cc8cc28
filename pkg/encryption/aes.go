// Package encryption implements the symmetric envelope recipe used by the
// intent API: canonical JSON, AES-256-CBC with key and IV derived from the
// shared secret, PKCS#7 padding, and base64(IV || ciphertext).
//
// Key and IV are pure functions of the secret (SHA-256 and MD5 of its UTF-8
// bytes), so encrypting the same payload with the same secret always yields
// the same ciphertext. That determinism leaks payload equality to an
// observer; it is part of the wire format and must not be strengthened
// without breaking the counterpart implementation.
package encryption

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/shade-labs/shade-privacy-go/pkg/sdkerrors"
	"github.com/shade-labs/shade-privacy-go/pkg/types"
)

// CanonicalJSON serializes payload to the canonical form fed into the
// cipher: insertion-ordered keys, comma and colon separators, no whitespace.
// Any byte-level difference here invalidates the request signature, so the
// object is assembled by hand rather than trusting a library's framing
// (OrderedMap's own MarshalJSON emits encoder newlines between tokens).
func CanonicalJSON(payload *types.IntentPayload) ([]byte, error) {
	if payload == nil {
		return nil, sdkerrors.NewCryptoError("cannot serialize nil payload", nil)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range payload.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, sdkerrors.NewCryptoError("failed to serialize payload", err)
		}
		buf.Write(k)
		buf.WriteByte(':')

		value, _ := payload.Get(key)
		// json.Marshal compacts nested Marshaler output, so embedded
		// ordered maps keep their key order without stray whitespace.
		v, err := json.Marshal(value)
		if err != nil {
			return nil, sdkerrors.NewCryptoError("failed to serialize payload", err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DeriveKey returns the 32-byte AES-256 key for secret: SHA-256 of its
// UTF-8 bytes.
func DeriveKey(secret string) []byte {
	key := sha256.Sum256([]byte(secret))
	return key[:]
}

// DeriveIV returns the 16-byte CBC initialization vector for secret: MD5 of
// its UTF-8 bytes. Deterministic by design, see the package comment.
func DeriveIV(secret string) []byte {
	iv := md5.Sum([]byte(secret))
	return iv[:]
}

// Encrypt serializes payload to canonical JSON and encrypts it with
// AES-256-CBC using the key and IV derived from secret. The returned
// envelope holds base64(IV || ciphertext). Failures wrap as CryptoError and
// no partial result is returned.
func Encrypt(payload *types.IntentPayload, secret string) (*types.EncryptedEnvelope, error) {
	plaintext, err := CanonicalJSON(payload)
	if err != nil {
		return nil, err
	}

	key := DeriveKey(secret)
	iv := DeriveIV(secret)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, sdkerrors.NewCryptoError("failed to create cipher", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	combined := make([]byte, 0, len(iv)+len(ciphertext))
	combined = append(combined, iv...)
	combined = append(combined, ciphertext...)

	return &types.EncryptedEnvelope{
		Ciphertext: base64.StdEncoding.EncodeToString(combined),
	}, nil
}

// Decrypt reverses Encrypt: it derives the same key and IV from secret,
// strips the IV prefix, decrypts, and removes the padding. It returns the
// canonical JSON bytes of the original payload.
func Decrypt(envelope *types.EncryptedEnvelope, secret string) ([]byte, error) {
	if envelope == nil {
		return nil, sdkerrors.NewCryptoError("cannot decrypt nil envelope", nil)
	}

	combined, err := base64.StdEncoding.DecodeString(envelope.Ciphertext)
	if err != nil {
		return nil, sdkerrors.NewCryptoError("failed to decode ciphertext", err)
	}
	if len(combined) < aes.BlockSize || len(combined)%aes.BlockSize != 0 {
		return nil, sdkerrors.NewCryptoError(
			fmt.Sprintf("ciphertext length %d is not a positive multiple of the block size", len(combined)), nil)
	}

	iv := combined[:aes.BlockSize]
	ciphertext := combined[aes.BlockSize:]
	if len(ciphertext) == 0 {
		return nil, sdkerrors.NewCryptoError("ciphertext is empty", nil)
	}

	block, err := aes.NewCipher(DeriveKey(secret))
	if err != nil {
		return nil, sdkerrors.NewCryptoError("failed to create cipher", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return nil, sdkerrors.NewCryptoError("failed to remove padding", err)
	}
	return unpadded, nil
}

// pkcs7Pad appends 1..blockSize bytes, each equal to the pad length.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, fmt.Errorf("invalid padding byte %d", padLen)
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-padLen], nil
}
