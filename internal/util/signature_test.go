package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	v := NewSignatureVerifier("test-secret")

	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write([]byte("123456789"))
	valid := hex.EncodeToString(mac.Sum(nil))

	tests := []struct {
		name      string
		message   string
		signature string
		want      bool
	}{
		{"valid_signature", "123456789", valid, true},
		{"wrong_message", "987654321", valid, false},
		{"empty_signature", "123456789", "", false},
		{"truncated_signature", "123456789", valid[:len(valid)-1], false},
		{"garbage_signature", "123456789", "not-hex-at-all", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Verify(tt.message, tt.signature))
		})
	}
}

func TestVerifySignatureSingleCharMutation(t *testing.T) {
	v := NewSignatureVerifier("test-secret")
	sig := v.Sign("user-1")
	assert.True(t, v.Verify("user-1", sig))

	// Flipping any single character must break verification.
	for i := 0; i < len(sig); i++ {
		mutated := []byte(sig)
		if mutated[i] == 'a' {
			mutated[i] = 'b'
		} else {
			mutated[i] = 'a'
		}
		assert.False(t, v.Verify("user-1", string(mutated)), "mutation at %d", i)
	}
}

func TestVerifierDefaultSecret(t *testing.T) {
	// An empty secret must not disable verification; it falls back to
	// the documented default.
	v := NewSignatureVerifier("")
	def := NewSignatureVerifier(DefaultAPISecret)

	sig := def.Sign("42")
	assert.True(t, v.Verify("42", sig))
	assert.False(t, v.Verify("42", "deadbeef"))
}
