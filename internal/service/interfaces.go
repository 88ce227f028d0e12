package service

import (
	"context"
	"time"

	"github.com/sandeepkv93/personal-website-backend/internal/domain"
	"github.com/sandeepkv93/personal-website-backend/internal/repository"
)

// Clock supplies timestamps for CreatedAt, AssignedAt and LastLoginAt.
type Clock func() time.Time

func SystemClock() time.Time { return time.Now().UTC() }

type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, query repository.UserListQuery) (repository.PageResult[domain.User], error)
	UpdateProfile(ctx context.Context, id uint, input UpdateUserInput) (*domain.User, error)
	RecordLogin(ctx context.Context, input RecordLoginInput) (*LoginRecord, error)
	DeleteByID(ctx context.Context, id uint) error
	Roles(ctx context.Context, userID uint) ([]domain.Role, error)
	GetAssignment(ctx context.Context, userID, roleID uint) (*domain.UserRole, error)
	AssignRole(ctx context.Context, userID, roleID uint) (*domain.UserRole, error)
	RevokeRole(ctx context.Context, userID, roleID uint) error
}

type RoleService interface {
	Create(ctx context.Context, input CreateRoleInput) (*domain.Role, error)
	GetByID(ctx context.Context, id uint) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	Update(ctx context.Context, id uint, input UpdateRoleInput) (*domain.Role, error)
	DeleteByID(ctx context.Context, id uint) error
	Users(ctx context.Context, roleID uint, req repository.PageRequest) (repository.PageResult[domain.User], error)
}

//go:generate go run go.uber.org/mock/mockgen -destination=gomock/mock_service.go -package=servicegomock . UserService,RoleService

var (
	_ UserService = (*UserServiceImpl)(nil)
	_ RoleService = (*RoleServiceImpl)(nil)
)
