package models

import "time"

// Person is the profile record created together with an Account at
// registration. Both rows are written in a single transaction.
type Person struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string `gorm:"not null"                 json:"name"`
	Surname string `gorm:"not null"                 json:"surname"`
}

// Account is the identity record the authentication engine operates on.
// Blocked accounts reject every login attempt until explicitly unblocked.
type Account struct {
	ID                  uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username            string     `gorm:"uniqueIndex;not null"     json:"username"`
	Email               string     `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash        string     `gorm:"not null"                 json:"-"`
	Role                string     `gorm:"not null;default:'USER'"  json:"role"`
	Active              bool       `gorm:"not null;default:true"    json:"active"`
	Blocked             bool       `gorm:"not null;default:false"   json:"blocked"`
	FailedLoginAttempts int        `gorm:"not null;default:0"       json:"failed_login_attempts"`
	CreationDate        time.Time  `gorm:"autoCreateTime"           json:"creation_date"`
	LastLogin           *time.Time `json:"last_login,omitempty"`
	PersonID            uint       `gorm:"index;not null"           json:"person_id"`
}

// RefreshToken is a persisted refresh credential. Token holds a sha256 hex
// digest of the issued JWT, never the raw token. Rows are revoked in bulk
// when a new token is issued for the account and are never deleted.
type RefreshToken struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Token     string `gorm:"uniqueIndex;not null"     json:"token"`
	TokenType string `gorm:"not null;default:'refresh'" json:"token_type"`
	JTI       string `gorm:"uniqueIndex;not null"     json:"jti"`
	AccountID uint   `gorm:"index;not null"           json:"account_id"`
	ExpiresAt int64  `gorm:"not null"                 json:"expires_at"`
	Expired   bool   `gorm:"not null;default:false"   json:"expired"`
	Revoked   bool   `gorm:"not null;default:false"   json:"revoked"`
}
