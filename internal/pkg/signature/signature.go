// Package signature implements the LINE webhook signature scheme:
// base64(HMAC-SHA256(channel secret, raw request body)).
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Sign computes the signature the platform would send for body.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether provided matches the signature of body under
// secret. The comparison is constant time. An empty secret or an empty
// provided signature never verifies.
func Verify(body []byte, provided, secret string) bool {
	if secret == "" || provided == "" {
		return false
	}

	want, err := base64.StdEncoding.DecodeString(provided)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(want, mac.Sum(nil))
}
