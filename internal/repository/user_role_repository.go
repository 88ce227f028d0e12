package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sandeepkv93/personal-website-backend/internal/domain"
	"github.com/sandeepkv93/personal-website-backend/internal/observability"
)

var ErrUserRoleNotFound = errors.New("user role assignment not found")

type UserRoleRepository interface {
	Assign(ctx context.Context, ur *domain.UserRole) error
	Find(ctx context.Context, userID, roleID uint) (*domain.UserRole, error)
	Revoke(ctx context.Context, userID, roleID uint) error
}

type GormUserRoleRepository struct{ db *gorm.DB }

func NewUserRoleRepository(db *gorm.DB) UserRoleRepository { return &GormUserRoleRepository{db: db} }

// Assign inserts the pair. A repeated pair fails with ErrConflict and a
// missing user or role with ErrForeignKey; both are enforced by the store.
func (r *GormUserRoleRepository) Assign(ctx context.Context, ur *domain.UserRole) (err error) {
	defer func() { observability.RecordRepositoryOperation(ctx, "user_role", "assign", operationOutcome(err)) }()
	return classifyError(r.db.WithContext(ctx).Omit(clause.Associations).Create(ur).Error)
}

func (r *GormUserRoleRepository) Find(ctx context.Context, userID, roleID uint) (ur *domain.UserRole, err error) {
	defer func() { observability.RecordRepositoryOperation(ctx, "user_role", "find", operationOutcome(err)) }()
	var out domain.UserRole
	err = r.db.WithContext(ctx).Where("user_id = ? AND role_id = ?", userID, roleID).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserRoleNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *GormUserRoleRepository) Revoke(ctx context.Context, userID, roleID uint) (err error) {
	defer func() { observability.RecordRepositoryOperation(ctx, "user_role", "revoke", operationOutcome(err)) }()
	res := r.db.WithContext(ctx).Where("user_id = ? AND role_id = ?", userID, roleID).Delete(&domain.UserRole{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserRoleNotFound
	}
	return nil
}
