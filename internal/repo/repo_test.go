package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/peoplehub/authservice/internal/models"
	"github.com/peoplehub/authservice/internal/repo"
	"github.com/peoplehub/authservice/internal/service"
)

func initTestRepo(t *testing.T) (*repo.GormRepo, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Person{}, &models.Account{}, &models.RefreshToken{}))
	return repo.New(db), db
}

func createAccount(t *testing.T, r *repo.GormRepo, username string) *models.Account {
	t.Helper()

	acc, err := r.Create(context.Background(),
		&models.Person{Name: "Alice", Surname: "Doe"},
		&models.Account{
			Username:     username,
			Email:        username + "@example.com",
			PasswordHash: "x",
			Role:         "USER",
			Active:       true,
		})
	require.NoError(t, err)
	return acc
}

func TestCreate_PersonAndAccountAreAtomic(t *testing.T) {
	t.Parallel()

	r, db := initTestRepo(t)
	ctx := context.Background()

	createAccount(t, r, "alice")

	var peopleBefore int64
	require.NoError(t, db.Model(&models.Person{}).Count(&peopleBefore).Error)

	// Duplicate username violates the unique index; the person row written
	// in the same transaction must roll back with it.
	_, err := r.Create(ctx,
		&models.Person{Name: "Bob", Surname: "Roe"},
		&models.Account{Username: "alice", Email: "bob@example.com", PasswordHash: "x", Role: "USER"})
	require.Error(t, err)

	var peopleAfter int64
	require.NoError(t, db.Model(&models.Person{}).Count(&peopleAfter).Error)
	assert.Equal(t, peopleBefore, peopleAfter)
}

func TestFindByUsername_NotFound(t *testing.T) {
	t.Parallel()

	r, _ := initTestRepo(t)
	_, err := r.FindByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, service.ErrAccountNotFound)
}

func TestIncrementFailedAttempts_IsCumulative(t *testing.T) {
	t.Parallel()

	r, db := initTestRepo(t)
	ctx := context.Background()
	acc := createAccount(t, r, "alice")

	for i := 0; i < 3; i++ {
		require.NoError(t, r.IncrementFailedAttempts(ctx, acc.ID))
	}

	var got models.Account
	require.NoError(t, db.First(&got, acc.ID).Error)
	assert.Equal(t, 3, got.FailedLoginAttempts)

	require.NoError(t, r.ResetFailedAttempts(ctx, acc.ID))
	require.NoError(t, db.First(&got, acc.ID).Error)
	assert.Equal(t, 0, got.FailedLoginAttempts)
}

func TestUnblock_ClearsFlagAndCounter(t *testing.T) {
	t.Parallel()

	r, db := initTestRepo(t)
	ctx := context.Background()
	acc := createAccount(t, r, "alice")

	require.NoError(t, r.SetBlocked(ctx, acc.ID, true))
	require.NoError(t, r.IncrementFailedAttempts(ctx, acc.ID))

	require.NoError(t, r.Unblock(ctx, acc.ID))

	var got models.Account
	require.NoError(t, db.First(&got, acc.ID).Error)
	assert.False(t, got.Blocked)
	assert.Equal(t, 0, got.FailedLoginAttempts)
}

func TestRevokeAllForAccount_ExceptJTI(t *testing.T) {
	t.Parallel()

	r, db := initTestRepo(t)
	ctx := context.Background()
	acc := createAccount(t, r, "alice")
	other := createAccount(t, r, "bob")

	exp := time.Now().Add(time.Hour).Unix()
	for i, jti := range []string{"jti-1", "jti-2", "jti-3"} {
		_, err := r.Save(ctx, &models.RefreshToken{
			Token:     jti + "-digest",
			TokenType: "refresh",
			JTI:       jti,
			AccountID: acc.ID,
			ExpiresAt: exp,
		})
		require.NoError(t, err, "token %d", i)
	}
	_, err := r.Save(ctx, &models.RefreshToken{
		Token: "bob-digest", TokenType: "refresh", JTI: "jti-bob",
		AccountID: other.ID, ExpiresAt: exp,
	})
	require.NoError(t, err)

	require.NoError(t, r.RevokeAllForAccount(ctx, acc.ID, "jti-3"))

	var survivors []models.RefreshToken
	require.NoError(t, db.Where("account_id = ? AND revoked = ?", acc.ID, false).Find(&survivors).Error)
	require.Len(t, survivors, 1)
	assert.Equal(t, "jti-3", survivors[0].JTI)

	// Other accounts are untouched.
	var bobActive int64
	require.NoError(t, db.Model(&models.RefreshToken{}).
		Where("account_id = ? AND revoked = ?", other.ID, false).Count(&bobActive).Error)
	assert.EqualValues(t, 1, bobActive)

	// Empty exceptJTI revokes the rest.
	require.NoError(t, r.RevokeAllForAccount(ctx, acc.ID, ""))
	var active int64
	require.NoError(t, db.Model(&models.RefreshToken{}).
		Where("account_id = ? AND revoked = ?", acc.ID, false).Count(&active).Error)
	assert.Zero(t, active)
}

func TestMarkExpired(t *testing.T) {
	t.Parallel()

	r, db := initTestRepo(t)
	ctx := context.Background()
	acc := createAccount(t, r, "alice")

	now := time.Now().Unix()
	_, err := r.Save(ctx, &models.RefreshToken{
		Token: "old-digest", TokenType: "refresh", JTI: "jti-old",
		AccountID: acc.ID, ExpiresAt: now - 60,
	})
	require.NoError(t, err)
	_, err = r.Save(ctx, &models.RefreshToken{
		Token: "fresh-digest", TokenType: "refresh", JTI: "jti-fresh",
		AccountID: acc.ID, ExpiresAt: now + 3600,
	})
	require.NoError(t, err)

	require.NoError(t, r.MarkExpired(ctx, now))

	var old, fresh models.RefreshToken
	require.NoError(t, db.Where("jti = ?", "jti-old").First(&old).Error)
	require.NoError(t, db.Where("jti = ?", "jti-fresh").First(&fresh).Error)
	assert.True(t, old.Expired)
	assert.False(t, fresh.Expired)
}
