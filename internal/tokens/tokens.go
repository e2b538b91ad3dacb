package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// AccessTokenTTL bounds the short-lived bearer credential.
	AccessTokenTTL = 15 * time.Minute
	// RefreshTokenTTL bounds the persisted, revocable refresh credential.
	RefreshTokenTTL = 7 * 24 * time.Hour
)

var (
	// ErrMalformed means the token string could not be parsed at all.
	ErrMalformed = errors.New("malformed token")
	// ErrBadSignature means the structure parsed but the signature (or the
	// signing method) does not match the process key.
	ErrBadSignature = errors.New("bad token signature")
)

// Claims is the payload this service puts in every token: a subject
// (username), issued-at and expiry, plus a JTI on refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
}

// Codec signs and verifies tokens with a single symmetric key held for the
// whole process lifetime. Rotating the key invalidates all outstanding
// tokens, which is acceptable.
type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

// Issue signs a token for subject expiring ttl from now.
func (c *Codec) Issue(subject string, ttl time.Duration) (string, error) {
	return c.IssueWithID(subject, "", ttl)
}

// IssueWithID signs a token carrying a JTI, used for refresh tokens so the
// persisted row can be matched against the credential it represents.
func (c *Codec) IssueWithID(subject, jti string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Verify checks structure and signature but deliberately not expiry, so the
// refresh flow can tell "expired but otherwise well-formed" apart from
// "forged". Callers check expiry through IsExpired or IsValidFor.
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrBadSignature
		}
		return c.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrBadSignature):
			return nil, ErrBadSignature
		default:
			return nil, ErrMalformed
		}
	}
	if !tkn.Valid {
		return nil, ErrBadSignature
	}
	return &claims, nil
}

// IsExpired reports whether the token's expiry has passed. Tokens that
// cannot be verified count as expired.
func (c *Codec) IsExpired(tokenStr string) bool {
	claims, err := c.Verify(tokenStr)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Time.Before(time.Now())
}

// IsValidFor reports whether the token is well-formed, signed by this
// process, bound to subject and not yet expired.
func (c *Codec) IsValidFor(tokenStr, subject string) bool {
	claims, err := c.Verify(tokenStr)
	if err != nil {
		return false
	}
	if claims.Subject != subject {
		return false
	}
	return !c.IsExpired(tokenStr)
}
