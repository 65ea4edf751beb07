package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns the hex HMAC-SHA256 of orderRef + "|" + paymentRef under secret.
func Sign(orderRef, paymentRef, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature is the exact hex digest Sign
// would produce. The comparison is constant-time. An empty secret never
// verifies.
func VerifySignature(orderRef, paymentRef, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(orderRef, paymentRef, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
