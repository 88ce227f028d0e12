package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sandeepkv93/personal-website-backend/internal/domain"
	"github.com/sandeepkv93/personal-website-backend/internal/observability"
)

var ErrUserNotFound = errors.New("user not found")

type UserListQuery struct {
	PageRequest
	// Email filters by substring, case-insensitive.
	Email  string
	Active *bool
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ListPaged(ctx context.Context, q UserListQuery) (PageResult[domain.User], error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	DeleteByID(ctx context.Context, id uint) error
	RolesForUser(ctx context.Context, userID uint) ([]domain.Role, error)
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) (err error) {
	defer func() { observability.RecordRepositoryOperation(ctx, "user", "create", operationOutcome(err)) }()
	return classifyError(r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error)
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.findOne(ctx, "find_by_id", "id = ?", id)
}

func (r *GormUserRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	return r.findOne(ctx, "find_by_external_id", "external_id = ?", strings.TrimSpace(externalID))
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "find_by_email", "email = ?", domain.NormalizeEmail(email))
}

func (r *GormUserRepository) findOne(ctx context.Context, op string, query string, arg any) (user *domain.User, err error) {
	defer func() { observability.RecordRepositoryOperation(ctx, "user", op, operationOutcome(err)) }()
	var u domain.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) ListPaged(ctx context.Context, q UserListQuery) (result PageResult[domain.User], err error) {
	defer func() { observability.RecordRepositoryOperation(ctx, "user", "list_paged", operationOutcome(err)) }()
	base := r.db.WithContext(ctx).Model(&domain.User{})
	if email := domain.NormalizeEmail(q.Email); email != "" {
		base = base.Where(`email LIKE ? ESCAPE '\'`, "%"+escapeLike(email)+"%")
	}
	if q.Active != nil {
		base = base.Where("is_active = ?", *q.Active)
	}
	return paginate[domain.User](base, q.PageRequest, "id asc")
}

func (r *GormUserRepository) Update(ctx context.Context, id uint, updates map[string]any) (err error) {
	defer func() { observability.RecordRepositoryOperation(ctx, "user", "update", operationOutcome(err)) }()
	return r.updateColumns(ctx, id, updates)
}

func (r *GormUserRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) (err error) {
	defer func() { observability.RecordRepositoryOperation(ctx, "user", "touch_last_login", operationOutcome(err)) }()
	return r.updateColumns(ctx, id, map[string]any{"last_login_at": at.UTC()})
}

func (r *GormUserRepository) updateColumns(ctx context.Context, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		_, err := r.FindByID(ctx, id)
		return err
	}
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return classifyError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *GormUserRepository) DeleteByID(ctx context.Context, id uint) (err error) {
	defer func() { observability.RecordRepositoryOperation(ctx, "user", "delete", operationOutcome(err)) }()
	res := r.db.WithContext(ctx).Delete(&domain.User{}, id)
	if res.Error != nil {
		return classifyError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *GormUserRepository) RolesForUser(ctx context.Context, userID uint) (roles []domain.Role, err error) {
	defer func() { observability.RecordRepositoryOperation(ctx, "user", "roles_for_user", operationOutcome(err)) }()
	err = r.db.WithContext(ctx).
		Model(&domain.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.id asc").
		Find(&roles).Error
	return roles, err
}

func escapeLike(v string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(v)
}
