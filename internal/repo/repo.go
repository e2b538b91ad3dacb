package repo

import "gorm.io/gorm"

// GormRepo implements the account and refresh-token stores on a gorm
// connection. All mutable authentication state lives behind it.
type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}
