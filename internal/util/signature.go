package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// DefaultAPISecret is the documented non-production fallback. It keeps
// verification enabled even when CLOUDTOUCH_API_SECRET is unset; every
// real deployment must override it.
const DefaultAPISecret = "MySecretKey123!@#"

// SignatureVerifier checks that a request claiming a user identifier was
// authorized by a trusted issuer holding the shared secret.
type SignatureVerifier struct {
	secret []byte
}

func NewSignatureVerifier(secret string) *SignatureVerifier {
	if secret == "" {
		secret = DefaultAPISecret
	}
	return &SignatureVerifier{secret: []byte(secret)}
}

// Verify reports whether signature is the hex HMAC-SHA256 of message
// under the shared secret. Comparison is constant-time; a missing or
// malformed signature is simply false, never an error that could bypass
// the check.
func (v *SignatureVerifier) Verify(message, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(message))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign produces the signature Verify expects. Used by tests and by the
// bot-side tooling.
func (v *SignatureVerifier) Sign(message string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}
