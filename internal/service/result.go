package service

import "github.com/peoplehub/authservice/internal/models"

// SuccessKind tags the two ways an AuthResult can be produced. Using a
// typed tag keeps an invalid variant from existing at all.
type SuccessKind int

const (
	SuccessRegistration SuccessKind = iota + 1
	SuccessLogin
)

func (k SuccessKind) Message() string {
	switch k {
	case SuccessRegistration:
		return "Registration successful"
	case SuccessLogin:
		return "Login successful"
	default:
		return ""
	}
}

// AuthResult is the outcome of a successful register or login: the minted
// pair plus the account it belongs to.
type AuthResult struct {
	Kind    SuccessKind
	Pair    *TokenPair
	Account *models.Account
}
