package service

import (
	"context"
	"strings"

	"github.com/sandeepkv93/personal-website-backend/internal/domain"
	"github.com/sandeepkv93/personal-website-backend/internal/observability"
	"github.com/sandeepkv93/personal-website-backend/internal/repository"
)

type CreateRoleInput struct {
	Name        string
	Description *string
}

type UpdateRoleInput struct {
	Name        *string
	Description *string
}

type RoleServiceImpl struct {
	roles repository.RoleRepository
}

func NewRoleService(roles repository.RoleRepository) *RoleServiceImpl {
	return &RoleServiceImpl{roles: roles}
}

func (s *RoleServiceImpl) Create(ctx context.Context, input CreateRoleInput) (role *domain.Role, err error) {
	ctx, done := startMutation(ctx, "role", "create")
	defer func() { done(err) }()

	role = &domain.Role{
		Name:        strings.TrimSpace(input.Name),
		Description: trimOptional(input.Description),
	}
	if err := role.Validate(); err != nil {
		return nil, err
	}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *RoleServiceImpl) GetByID(ctx context.Context, id uint) (*domain.Role, error) {
	return s.roles.FindByID(ctx, id)
}

func (s *RoleServiceImpl) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	return s.roles.FindByName(ctx, name)
}

func (s *RoleServiceImpl) List(ctx context.Context) ([]domain.Role, error) {
	return s.roles.List(ctx)
}

func (s *RoleServiceImpl) Update(ctx context.Context, id uint, input UpdateRoleInput) (role *domain.Role, err error) {
	ctx, done := startMutation(ctx, "role", "update")
	defer func() { done(err) }()

	current, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	candidate := *current
	updates := map[string]any{}
	if input.Name != nil {
		candidate.Name = strings.TrimSpace(*input.Name)
		if candidate.Name != current.Name && isSeededRole(id) {
			return nil, ErrProtectedRole
		}
		updates["name"] = candidate.Name
	}
	if input.Description != nil {
		candidate.Description = trimOptional(input.Description)
		updates["description"] = candidate.Description
	}
	if len(updates) == 0 {
		return nil, ErrNoUpdates
	}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	if err := s.roles.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.roles.FindByID(ctx, id)
}

func (s *RoleServiceImpl) DeleteByID(ctx context.Context, id uint) (err error) {
	ctx, done := startMutation(ctx, "role", "delete")
	defer func() { done(err) }()
	if isSeededRole(id) {
		return ErrProtectedRole
	}
	return s.roles.DeleteByID(ctx, id)
}

// isSeededRole reports whether id is one of the roles database.Initialize
// verifies by name on every start.
func isSeededRole(id uint) bool {
	return id == domain.AdminRoleID || id == domain.UserRoleID
}

func (s *RoleServiceImpl) Users(ctx context.Context, roleID uint, req repository.PageRequest) (repository.PageResult[domain.User], error) {
	if _, err := s.roles.FindByID(ctx, roleID); err != nil {
		return repository.PageResult[domain.User]{}, err
	}
	observability.RecordListPageSize(ctx, "role_users", req.PageSize)
	return s.roles.UsersForRole(ctx, roleID, req)
}
