package repositories

import (
	"context"

	"gorm.io/gorm"

	"siteforge/realtime/internal/models"
)

// UserRepository reads user profiles from the platform's relational store.
// The realtime service never writes to it.
type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
