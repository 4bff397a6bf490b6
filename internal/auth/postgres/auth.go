package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/vesta-ledger/internal/auth"
	userDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentialsByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).
		Select("id", "password_hash", "is_active").
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &auth.Credentials{
		UserID:       row.ID,
		PasswordHash: row.PasswordHash,
		IsActive:     row.IsActive,
	}, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *auth.NewUser) (*auth.User, error) {
	row := userDatamodel.User{
		Email:        user.Email,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		Currency:     user.Currency,
		IsActive:     true,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, auth.ErrEmailTaken
		}
		return nil, err
	}
	return toAuthUser(&row), nil
}

func (r *Repository) GetActiveUser(ctx context.Context, userID string) (*auth.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", userID, true).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return toAuthUser(&row), nil
}

func toAuthUser(row *userDatamodel.User) *auth.User {
	return &auth.User{
		ID:       row.ID,
		Email:    row.Email,
		Name:     row.Name,
		Currency: row.Currency,
	}
}
