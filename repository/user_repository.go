package repository

import (
	"context"

	"mediagate/model"

	"gorm.io/gorm"
)

// AdminRepository reads and provisions admin users.
type AdminRepository interface {
	GetByUsername(ctx context.Context, username string) (*model.AdminUser, error)
	GetByAdminCode(ctx context.Context, code string) (*model.AdminUser, error)
	Create(ctx context.Context, admin *model.AdminUser) (int64, error)
}

// UserRepository reads and provisions regular access codes.
type UserRepository interface {
	GetByCode(ctx context.Context, code string) (*model.User, error)
	Create(ctx context.Context, user *model.User) (int64, error)
}

type gormAdminRepository struct {
	db *gorm.DB
}

// NewAdminRepository creates an AdminRepository backed by gorm.
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &gormAdminRepository{db: db}
}

// GetByUsername returns nil, nil when no admin has that username.
func (r *gormAdminRepository) GetByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	var admin model.AdminUser
	res := r.db.WithContext(ctx).Where("username = ?", username).Limit(1).Find(&admin)
	if res.Error != nil {
		return nil, dbErr("get admin by username", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &admin, nil
}

// GetByAdminCode returns nil, nil when the code matches no admin.
func (r *gormAdminRepository) GetByAdminCode(ctx context.Context, code string) (*model.AdminUser, error) {
	if code == "" {
		return nil, nil
	}
	var admin model.AdminUser
	res := r.db.WithContext(ctx).Where("admin_code = ?", code).Limit(1).Find(&admin)
	if res.Error != nil {
		return nil, dbErr("get admin by code", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &admin, nil
}

func (r *gormAdminRepository) Create(ctx context.Context, admin *model.AdminUser) (int64, error) {
	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		return 0, dbErr("create admin", err)
	}
	return admin.ID, nil
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a UserRepository backed by gorm.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// GetByCode returns nil, nil when the code is unknown.
func (r *gormUserRepository) GetByCode(ctx context.Context, code string) (*model.User, error) {
	if code == "" {
		return nil, nil
	}
	var user model.User
	res := r.db.WithContext(ctx).Where("code = ?", code).Limit(1).Find(&user)
	if res.Error != nil {
		return nil, dbErr("get user by code", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *gormUserRepository) Create(ctx context.Context, user *model.User) (int64, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return 0, dbErr("create user", err)
	}
	return user.ID, nil
}
