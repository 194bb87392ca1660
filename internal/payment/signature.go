package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"sort"
	"strings"
)

// Canonicalize serializes params as k=v pairs joined by '&', keys sorted
// lexicographically and values trimmed. Values are not URL-encoded.
func Canonicalize(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strings.TrimSpace(params[k]))
	}
	return b.String()
}

// Sign returns the hex HMAC-SHA512 of the canonical form of params.
func Sign(secret string, params map[string]string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(Canonicalize(params)))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches params. Hex case is
// ignored.
func VerifySignature(secret string, params map[string]string, signature string) bool {
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(got) == 0 {
		return false
	}
	want, err := hex.DecodeString(Sign(secret, params))
	if err != nil {
		return false
	}
	return hmac.Equal(got, want)
}
