package lalamove

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the request signature for the given unix-millisecond
// timestamp, method, path and exact body bytes.
func Sign(secret, timestamp, method, path string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "\r\n" + method + "\r\n" + path + "\r\n\r\n"))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Token builds the Authorization header value.
func Token(key, timestamp, signature string) string {
	return "hmac " + key + ":" + timestamp + ":" + signature
}
