package service

import (
	"time"

	"github.com/peoplehub/authservice/internal/tokens"
)

// TokenPair is a freshly minted access/refresh pair. Expiries are carried
// in milliseconds, matching the wire contract.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshJTI       string
	AccessExpiresIn  int64
	RefreshExpiresIn int64
	RefreshExpiresAt time.Time
}

// SessionIssuer mints token pairs. It is a pure composition over the codec:
// persisting the refresh token is the caller's job, which keeps minting
// side-effect free and testable in isolation.
type SessionIssuer struct {
	Codec *tokens.Codec
}

func (s *SessionIssuer) IssuePair(subject string) (*TokenPair, error) {
	access, err := s.Codec.Issue(subject, tokens.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	jti := tokens.NewJTI()
	refreshExp := time.Now().Add(tokens.RefreshTokenTTL)
	refresh, err := s.Codec.IssueWithID(subject, jti, tokens.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshJTI:       jti,
		AccessExpiresIn:  tokens.AccessTokenTTL.Milliseconds(),
		RefreshExpiresIn: tokens.RefreshTokenTTL.Milliseconds(),
		RefreshExpiresAt: refreshExp,
	}, nil
}
