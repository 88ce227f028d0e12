package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sandeepkv93/personal-website-backend/internal/domain"
	"github.com/sandeepkv93/personal-website-backend/internal/observability"
	"github.com/sandeepkv93/personal-website-backend/internal/repository"
)

type CreateUserInput struct {
	ExternalID  string
	Email       string
	DisplayName *string
	FirstName   *string
	LastName    *string
}

// UpdateUserInput carries a partial update. Nil fields are left unchanged; a
// blank optional name clears the column.
type UpdateUserInput struct {
	Email       *string
	DisplayName *string
	FirstName   *string
	LastName    *string
	IsActive    *bool
}

type RecordLoginInput struct {
	ExternalID  string
	Email       string
	DisplayName *string
	FirstName   *string
	LastName    *string
}

type LoginRecord struct {
	User    *domain.User
	Created bool
}

type UserServiceImpl struct {
	users     repository.UserRepository
	userRoles repository.UserRoleRepository
	now       Clock
}

func NewUserService(users repository.UserRepository, userRoles repository.UserRoleRepository, now Clock) *UserServiceImpl {
	if now == nil {
		now = SystemClock
	}
	return &UserServiceImpl{users: users, userRoles: userRoles, now: now}
}

func (s *UserServiceImpl) Create(ctx context.Context, input CreateUserInput) (user *domain.User, err error) {
	ctx, done := startMutation(ctx, "user", "create")
	defer func() { done(err) }()
	return s.create(ctx, input, nil)
}

func (s *UserServiceImpl) create(ctx context.Context, input CreateUserInput, lastLogin *time.Time) (*domain.User, error) {
	user := domain.NewUser(input.ExternalID, input.Email, s.now())
	user.DisplayName = trimOptional(input.DisplayName)
	user.FirstName = trimOptional(input.FirstName)
	user.LastName = trimOptional(input.LastName)
	if lastLogin != nil {
		at := lastLogin.UTC()
		user.LastLoginAt = &at
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserServiceImpl) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, domain.NewValidationError("external_id", "is required")
	}
	return s.users.FindByExternalID(ctx, externalID)
}

func (s *UserServiceImpl) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, domain.NewValidationError("email", "is required")
	}
	return s.users.FindByEmail(ctx, email)
}

func (s *UserServiceImpl) List(ctx context.Context, query repository.UserListQuery) (repository.PageResult[domain.User], error) {
	observability.RecordListPageSize(ctx, "users", query.PageSize)
	return s.users.ListPaged(ctx, query)
}

func (s *UserServiceImpl) UpdateProfile(ctx context.Context, id uint, input UpdateUserInput) (user *domain.User, err error) {
	ctx, done := startMutation(ctx, "user", "update")
	defer func() { done(err) }()

	current, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	candidate := *current
	if input.Email != nil {
		candidate.Email = domain.NormalizeEmail(*input.Email)
		updates["email"] = candidate.Email
	}
	if input.DisplayName != nil {
		candidate.DisplayName = trimOptional(input.DisplayName)
		updates["display_name"] = candidate.DisplayName
	}
	if input.FirstName != nil {
		candidate.FirstName = trimOptional(input.FirstName)
		updates["first_name"] = candidate.FirstName
	}
	if input.LastName != nil {
		candidate.LastName = trimOptional(input.LastName)
		updates["last_name"] = candidate.LastName
	}
	if input.IsActive != nil {
		candidate.IsActive = *input.IsActive
		updates["is_active"] = candidate.IsActive
	}
	if len(updates) == 0 {
		return nil, ErrNoUpdates
	}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, id)
}

// RecordLogin creates the user on first sight of externalID and otherwise
// stamps LastLoginAt. A concurrent first login that loses the insert race
// falls back to the touch path.
func (s *UserServiceImpl) RecordLogin(ctx context.Context, input RecordLoginInput) (record *LoginRecord, err error) {
	ctx, done := startMutation(ctx, "user", "record_login")
	defer func() { done(err) }()

	externalID := strings.TrimSpace(input.ExternalID)
	if externalID == "" {
		return nil, domain.NewValidationError("external_id", "is required")
	}
	now := s.now()

	existing, err := s.users.FindByExternalID(ctx, externalID)
	switch {
	case err == nil:
		return s.touchLogin(ctx, existing.ID, now)
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, err
	}

	created, err := s.create(ctx, CreateUserInput{
		ExternalID:  externalID,
		Email:       input.Email,
		DisplayName: input.DisplayName,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
	}, &now)
	if err == nil {
		return &LoginRecord{User: created, Created: true}, nil
	}
	if !errors.Is(err, repository.ErrConflict) {
		return nil, err
	}
	existing, findErr := s.users.FindByExternalID(ctx, externalID)
	if findErr != nil {
		// The conflict was on email, not on the external id.
		return nil, err
	}
	return s.touchLogin(ctx, existing.ID, now)
}

func (s *UserServiceImpl) touchLogin(ctx context.Context, id uint, now time.Time) (*LoginRecord, error) {
	if err := s.users.TouchLastLogin(ctx, id, now); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &LoginRecord{User: user}, nil
}

func (s *UserServiceImpl) DeleteByID(ctx context.Context, id uint) (err error) {
	ctx, done := startMutation(ctx, "user", "delete")
	defer func() { done(err) }()
	return s.users.DeleteByID(ctx, id)
}

func (s *UserServiceImpl) Roles(ctx context.Context, userID uint) ([]domain.Role, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.users.RolesForUser(ctx, userID)
}

func (s *UserServiceImpl) GetAssignment(ctx context.Context, userID, roleID uint) (*domain.UserRole, error) {
	return s.userRoles.Find(ctx, userID, roleID)
}

// AssignRole leaves existence of both parents to the store's foreign keys.
func (s *UserServiceImpl) AssignRole(ctx context.Context, userID, roleID uint) (ur *domain.UserRole, err error) {
	ctx, done := startMutation(ctx, "user_role", "assign")
	defer func() { done(err) }()

	ur = domain.NewUserRole(userID, roleID, s.now())
	if err := ur.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRoles.Assign(ctx, ur); err != nil {
		return nil, err
	}
	return ur, nil
}

func (s *UserServiceImpl) RevokeRole(ctx context.Context, userID, roleID uint) (err error) {
	ctx, done := startMutation(ctx, "user_role", "revoke")
	defer func() { done(err) }()
	return s.userRoles.Revoke(ctx, userID, roleID)
}
