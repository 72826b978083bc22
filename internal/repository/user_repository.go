package repository

import (
	"github.com/judemcastillo/social-media-clone/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FilterEligible(ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []uint
	err := r.db.Model(&models.User{}).
		Where("id IN ? AND role <> ?", ids, models.RoleGuest).
		Pluck("id", &out).Error
	return out, err
}
