package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/peoplehub/authservice/internal/hash"
	"github.com/peoplehub/authservice/internal/logging"
	"github.com/peoplehub/authservice/internal/models"
	"github.com/peoplehub/authservice/internal/tokens"
	"github.com/peoplehub/authservice/internal/transport"
)

// MaxFailedLoginAttempts is the counter value past which a wrong password
// locks the account. The comparison runs before the increment, so the lock
// fires on the attempt made when the stored counter already reads 5, i.e.
// the sixth consecutive wrong password.
const MaxFailedLoginAttempts = 5

const defaultRole = "USER"

// AuthService orchestrates registration, login and refresh. It holds no
// mutable state of its own: attempt counters, block flags and token rows
// all live behind the stores.
type AuthService struct {
	Accounts AccountStore
	Refresh  RefreshTokenStore
	Codec    *tokens.Codec
	Issuer   *SessionIssuer
}

func NewAuthService(accounts AccountStore, refresh RefreshTokenStore, codec *tokens.Codec) *AuthService {
	return &AuthService{
		Accounts: accounts,
		Refresh:  refresh,
		Codec:    codec,
		Issuer:   &SessionIssuer{Codec: codec},
	}
}

// Register validates the request, rejects duplicate usernames and emails,
// creates the person profile and the account in one transaction and returns
// a fresh token pair for the new account.
func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if err := validateRegisterRequest(req); err != nil {
		l.Warn("register_failed", "status", 400, "reason", "invalid_input", "error", err)
		return nil, err
	}

	if taken, err := s.Accounts.ExistsByUsername(ctx, req.Username); err != nil {
		l.Error("register_failed", "status", 500, "reason", "db_error", "error", err)
		return nil, fmt.Errorf("%w: username lookup: %v", ErrStorage, err)
	} else if taken {
		l.Warn("register_failed", "status", 409, "reason", "username_exists", "username", req.Username)
		return nil, fmt.Errorf("%w: username", ErrConflict)
	}

	if taken, err := s.Accounts.ExistsByEmail(ctx, req.Email); err != nil {
		l.Error("register_failed", "status", 500, "reason", "db_error", "error", err)
		return nil, fmt.Errorf("%w: email lookup: %v", ErrStorage, err)
	} else if taken {
		l.Warn("register_failed", "status", 409, "reason", "email_exists")
		return nil, fmt.Errorf("%w: email", ErrConflict)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot_hash_password", "error", err)
		return nil, fmt.Errorf("%w: hash password: %v", ErrStorage, err)
	}

	person := &models.Person{Name: req.Name, Surname: req.Surname}
	account := &models.Account{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         defaultRole,
		Active:       true,
	}
	account, err = s.Accounts.Create(ctx, person, account)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "db_error", "error", err)
		return nil, fmt.Errorf("%w: create account: %v", ErrStorage, err)
	}

	pair, err := s.issueAndPersist(ctx, account)
	if err != nil {
		return nil, err
	}

	l.Info("register_success", "account_id", account.ID, "username", account.Username)
	return &AuthResult{Kind: SuccessRegistration, Pair: pair, Account: account}, nil
}

// Login applies the lockout state machine. Unknown usernames and wrong
// passwords are indistinguishable at the boundary; blocked accounts reject
// the attempt before the password is ever checked.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if username == "" || password == "" {
		l.Warn("login_failed", "status", 401, "reason", "missing_credentials")
		return nil, ErrInvalidCredentials
	}

	account, err := s.Accounts.FindByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			l.Warn("login_failed", "status", 401, "reason", "unknown_username")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "reason", "db_error", "error", err)
		return nil, fmt.Errorf("%w: account lookup: %v", ErrStorage, err)
	}

	if account.Blocked {
		l.Warn("login_failed", "status", 423, "reason", "account_blocked", "account_id", account.ID)
		return nil, ErrAccountBlocked
	}

	if !hash.CheckPassword(account.PasswordHash, password) {
		return nil, s.recordFailedAttempt(ctx, account)
	}

	if account.FailedLoginAttempts > 0 {
		if err := s.Accounts.ResetFailedAttempts(ctx, account.ID); err != nil {
			l.Error("login_failed", "status", 500, "reason", "db_error", "error", err)
			return nil, fmt.Errorf("%w: reset attempts: %v", ErrStorage, err)
		}
		account.FailedLoginAttempts = 0
	}
	if err := s.Accounts.UpdateLastLogin(ctx, account.ID); err != nil {
		l.Error("login_failed", "status", 500, "reason", "db_error", "error", err)
		return nil, fmt.Errorf("%w: update last login: %v", ErrStorage, err)
	}

	pair, err := s.issueAndPersist(ctx, account)
	if err != nil {
		return nil, err
	}

	l.Info("login_success", "account_id", account.ID)
	return &AuthResult{Kind: SuccessLogin, Pair: pair, Account: account}, nil
}

// recordFailedAttempt advances the lockout state machine after a wrong
// password: increment while the stored counter is below the limit, lock once
// it has reached it.
func (s *AuthService) recordFailedAttempt(ctx context.Context, account *models.Account) error {
	l := logging.FromContext(ctx).With("svc", "auth.login", "account_id", account.ID)

	if account.FailedLoginAttempts < MaxFailedLoginAttempts {
		if err := s.Accounts.IncrementFailedAttempts(ctx, account.ID); err != nil {
			l.Error("login_failed", "status", 500, "reason", "db_error", "error", err)
			return fmt.Errorf("%w: record failed attempt: %v", ErrStorage, err)
		}
		l.Warn("login_failed", "status", 401, "reason", "wrong_password",
			"failed_attempts", account.FailedLoginAttempts+1)
		return ErrInvalidCredentials
	}

	if err := s.Accounts.SetBlocked(ctx, account.ID, true); err != nil {
		l.Error("login_failed", "status", 500, "reason", "db_error", "error", err)
		return fmt.Errorf("%w: lock account: %v", ErrStorage, err)
	}
	l.Warn("account_locked", "status", 423, "username", account.Username)
	return ErrAccountBlocked
}

// RefreshTokens rotates the session bound to the bearer header: the token
// must be well-formed, signed by this process, unexpired and bound to an
// existing account. Every failure collapses to ErrInvalidToken so the wire
// never reveals whether a token was expired or forged.
func (s *AuthService) RefreshTokens(ctx context.Context, authHeader string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	token, ok := tokens.ExtractBearer(authHeader)
	if !ok {
		l.Warn("refresh_failed", "status", 401, "reason", "missing_bearer")
		return nil, ErrInvalidToken
	}

	claims, err := s.Codec.Verify(token)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "verify_failed", "error", err)
		return nil, ErrInvalidToken
	}
	if s.Codec.IsExpired(token) {
		l.Warn("refresh_failed", "status", 401, "reason", "token_expired")
		return nil, ErrInvalidToken
	}

	account, err := s.Accounts.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if isNotFound(err) {
			l.Warn("refresh_failed", "status", 401, "reason", "unknown_subject")
			return nil, ErrInvalidToken
		}
		l.Error("refresh_failed", "status", 500, "reason", "db_error", "error", err)
		return nil, fmt.Errorf("%w: account lookup: %v", ErrStorage, err)
	}

	if !s.Codec.IsValidFor(token, account.Username) {
		l.Warn("refresh_failed", "status", 401, "reason", "token_not_valid_for_subject")
		return nil, ErrInvalidToken
	}

	pair, err := s.issuePair(ctx, account)
	if err != nil {
		return nil, err
	}
	if err := s.persistRefresh(ctx, account.ID, pair); err != nil {
		return nil, err
	}
	if err := s.Refresh.RevokeAllForAccount(ctx, account.ID, pair.RefreshJTI); err != nil {
		l.Error("refresh_failed", "status", 500, "reason", "db_error", "error", err)
		return nil, fmt.Errorf("%w: revoke previous tokens: %v", ErrStorage, err)
	}

	l.Info("refresh_success", "account_id", account.ID)
	return pair, nil
}

// Logout revokes every refresh token owned by the bearer's account.
func (s *AuthService) Logout(ctx context.Context, authHeader string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	token, ok := tokens.ExtractBearer(authHeader)
	if !ok {
		return ErrInvalidToken
	}
	claims, err := s.Codec.Verify(token)
	if err != nil || s.Codec.IsExpired(token) {
		l.Warn("logout_failed", "status", 401, "reason", "invalid_token")
		return ErrInvalidToken
	}

	account, err := s.Accounts.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if isNotFound(err) {
			return ErrInvalidToken
		}
		l.Error("logout_failed", "status", 500, "reason", "db_error", "error", err)
		return fmt.Errorf("%w: account lookup: %v", ErrStorage, err)
	}

	if err := s.Refresh.RevokeAllForAccount(ctx, account.ID, ""); err != nil {
		l.Error("logout_failed", "status", 500, "reason", "db_error", "error", err)
		return fmt.Errorf("%w: revoke tokens: %v", ErrStorage, err)
	}
	l.Info("logout_success", "account_id", account.ID)
	return nil
}

func (s *AuthService) issuePair(ctx context.Context, account *models.Account) (*TokenPair, error) {
	pair, err := s.Issuer.IssuePair(account.Username)
	if err != nil {
		logging.FromContext(ctx).Error("token_issue_failed", "account_id", account.ID, "error", err)
		return nil, fmt.Errorf("%w: sign tokens: %v", ErrStorage, err)
	}
	return pair, nil
}

// issueAndPersist mints a pair and records its refresh half; used by the
// register and login flows, which do not revoke earlier sessions.
func (s *AuthService) issueAndPersist(ctx context.Context, account *models.Account) (*TokenPair, error) {
	pair, err := s.issuePair(ctx, account)
	if err != nil {
		return nil, err
	}
	if err := s.persistRefresh(ctx, account.ID, pair); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *AuthService) persistRefresh(ctx context.Context, accountID uint, pair *TokenPair) error {
	row := &models.RefreshToken{
		Token:     tokens.Sha256Hex(pair.RefreshToken),
		TokenType: "refresh",
		JTI:       pair.RefreshJTI,
		AccountID: accountID,
		ExpiresAt: pair.RefreshExpiresAt.Unix(),
	}
	if _, err := s.Refresh.Save(ctx, row); err != nil {
		logging.FromContext(ctx).Error("refresh_save_failed", "account_id", accountID, "error", err)
		return fmt.Errorf("%w: save refresh token: %v", ErrStorage, err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}
