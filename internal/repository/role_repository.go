package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sandeepkv93/personal-website-backend/internal/domain"
	"github.com/sandeepkv93/personal-website-backend/internal/observability"
)

var ErrRoleNotFound = errors.New("role not found")

type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	FindByID(ctx context.Context, id uint) (*domain.Role, error)
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	DeleteByID(ctx context.Context, id uint) error
	UsersForRole(ctx context.Context, roleID uint, req PageRequest) (PageResult[domain.User], error)
}

type GormRoleRepository struct{ db *gorm.DB }

func NewRoleRepository(db *gorm.DB) RoleRepository { return &GormRoleRepository{db: db} }

func (r *GormRoleRepository) Create(ctx context.Context, role *domain.Role) (err error) {
	defer func() { observability.RecordRepositoryOperation(ctx, "role", "create", operationOutcome(err)) }()
	return classifyError(r.db.WithContext(ctx).Omit(clause.Associations).Create(role).Error)
}

func (r *GormRoleRepository) FindByID(ctx context.Context, id uint) (*domain.Role, error) {
	return r.findOne(ctx, "find_by_id", "id = ?", id)
}

func (r *GormRoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.findOne(ctx, "find_by_name", "name = ?", name)
}

func (r *GormRoleRepository) findOne(ctx context.Context, op, query string, arg any) (role *domain.Role, err error) {
	defer func() { observability.RecordRepositoryOperation(ctx, "role", op, operationOutcome(err)) }()
	var out domain.Role
	if err := r.db.WithContext(ctx).Where(query, arg).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *GormRoleRepository) List(ctx context.Context) (roles []domain.Role, err error) {
	defer func() { observability.RecordRepositoryOperation(ctx, "role", "list", operationOutcome(err)) }()
	err = r.db.WithContext(ctx).Order("id asc").Find(&roles).Error
	return roles, err
}

func (r *GormRoleRepository) Update(ctx context.Context, id uint, updates map[string]any) (err error) {
	defer func() { observability.RecordRepositoryOperation(ctx, "role", "update", operationOutcome(err)) }()
	if len(updates) == 0 {
		_, err = r.FindByID(ctx, id)
		return err
	}
	res := r.db.WithContext(ctx).Model(&domain.Role{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return classifyError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRoleNotFound
	}
	return nil
}

func (r *GormRoleRepository) DeleteByID(ctx context.Context, id uint) (err error) {
	defer func() { observability.RecordRepositoryOperation(ctx, "role", "delete", operationOutcome(err)) }()
	res := r.db.WithContext(ctx).Delete(&domain.Role{}, id)
	if res.Error != nil {
		return classifyError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRoleNotFound
	}
	return nil
}

func (r *GormRoleRepository) UsersForRole(ctx context.Context, roleID uint, req PageRequest) (result PageResult[domain.User], err error) {
	defer func() { observability.RecordRepositoryOperation(ctx, "role", "users_for_role", operationOutcome(err)) }()
	base := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Where("user_roles.role_id = ?", roleID)
	return paginate[domain.User](base, req, "users.id asc")
}
