package repo

import (
	"context"

	"github.com/peoplehub/authservice/internal/models"
)

// Save persists a refresh-token row and returns its id.
func (r *GormRepo) Save(ctx context.Context, token *models.RefreshToken) (uint, error) {
	if err := r.DB.WithContext(ctx).Create(token).Error; err != nil {
		return 0, err
	}
	return token.ID, nil
}

// RevokeAllForAccount revokes every non-revoked refresh token owned by the
// account except the one carrying exceptJTI. Rotation saves the new row
// first and then revokes with its JTI excluded, so exactly one active row
// survives. Pass an empty exceptJTI to revoke everything (logout).
func (r *GormRepo) RevokeAllForAccount(ctx context.Context, accountID uint, exceptJTI string) error {
	q := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("account_id = ? AND revoked = ?", accountID, false)
	if exceptJTI != "" {
		q = q.Where("jti <> ?", exceptJTI)
	}
	return q.UpdateColumn("revoked", true).Error
}

// MarkExpired flips the persisted expired flag on rows whose expiry has
// passed. Expiry is still checked lazily at verification time; the flag is
// kept for audit queries.
func (r *GormRepo) MarkExpired(ctx context.Context, now int64) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("expires_at < ? AND expired = ?", now, false).
		UpdateColumn("expired", true).Error
}
