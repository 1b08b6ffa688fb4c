package analytics

import (
	"crypto/sha256"
	"encoding/hex"
)

// VisitorHash anonymizes a client by hashing its IP and user agent.
func VisitorHash(clientIP, userAgent string) string {
	h := sha256.Sum256([]byte(clientIP + "|" + userAgent))

	return hex.EncodeToString(h[:])
}
