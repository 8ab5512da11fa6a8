package repo

import (
	"gorm.io/gorm"

	"estate-api/internal/domain"
)

func Migrate(db *gorm.DB) error { return db.AutoMigrate(&domain.User{}) }
