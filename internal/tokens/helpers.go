package tokens

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

const bearerPrefix = "bearer "

// ExtractBearer pulls the token out of an Authorization header value. The
// scheme is matched case-insensitively with a single space separator.
func ExtractBearer(header string) (string, bool) {
	if len(header) <= len(bearerPrefix) {
		return "", false
	}
	if !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := header[len(bearerPrefix):]
	if token == "" || strings.HasPrefix(token, " ") {
		return "", false
	}
	return token, true
}

// Sha256Hex is the at-rest form of refresh tokens: rows store digests, never
// the raw credential.
func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func NewJTI() string { return uuid.NewString() }
