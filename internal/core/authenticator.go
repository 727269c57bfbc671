package core

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sign computes the relay signature: hex(HMAC-SHA256(secret, timestamp+token))
func Sign(secret, timestamp, token string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// Authenticate reports whether req carries a valid signature for secret.
// The comparison runs in constant time.
func Authenticate(req IncomingRequest, secret string) bool {
	expected := Sign(secret, req.Timestamp, req.Token)
	supplied := strings.ToLower(strings.TrimSpace(req.Signature))
	return hmac.Equal([]byte(expected), []byte(supplied))
}

// missingField returns the name of the first required field that is empty
func missingField(req IncomingRequest) string {
	switch {
	case req.Timestamp == "":
		return "timestamp"
	case req.Token == "":
		return "token"
	case req.Signature == "":
		return "signature"
	case len(req.RawMessage) == 0:
		return "body-mime"
	case req.SenderAddress == "":
		return "from"
	}
	return ""
}
