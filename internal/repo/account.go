package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/peoplehub/authservice/internal/models"
	"github.com/peoplehub/authservice/internal/service"
)

func (r *GormRepo) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	var acc models.Account
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&acc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrAccountNotFound
		}
		return nil, err
	}
	return &acc, nil
}

func (r *GormRepo) FindByID(ctx context.Context, id uint) (*models.Account, error) {
	var acc models.Account
	if err := r.DB.WithContext(ctx).First(&acc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrAccountNotFound
		}
		return nil, err
	}
	return &acc, nil
}

func (r *GormRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create writes the person profile and the account in one transaction:
// both rows land or neither does.
func (r *GormRepo) Create(ctx context.Context, person *models.Person, account *models.Account) (*models.Account, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(person).Error; err != nil {
			return err
		}
		account.PersonID = person.ID
		return tx.Create(account).Error
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// IncrementFailedAttempts bumps the counter in SQL rather than
// read-modify-write, narrowing the lost-update window between concurrent
// wrong attempts.
func (r *GormRepo) IncrementFailedAttempts(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("failed_login_attempts", gorm.Expr("failed_login_attempts + ?", 1)).Error
}

func (r *GormRepo) ResetFailedAttempts(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("failed_login_attempts", 0).Error
}

func (r *GormRepo) SetBlocked(ctx context.Context, id uint, blocked bool) error {
	return r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("blocked", blocked).Error
}

// Unblock lifts the lockout and clears the counter. Consumed by operator
// tooling, never by the engine itself.
func (r *GormRepo) Unblock(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"blocked": false, "failed_login_attempts": 0}).Error
}

func (r *GormRepo) UpdateLastLogin(ctx context.Context, id uint) error {
	now := time.Now()
	return r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("last_login", &now).Error
}
