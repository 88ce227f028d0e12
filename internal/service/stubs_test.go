package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sandeepkv93/personal-website-backend/internal/domain"
	"github.com/sandeepkv93/personal-website-backend/internal/repository"
)

var errDuplicate = errors.New("duplicate key")

var fixedNow = time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type stubUserRepo struct {
	items     map[uint]domain.User
	roles     map[uint][]domain.Role
	nextID    uint
	createErr error
	touched   map[uint]time.Time
	// hideOnce makes the next FindByExternalID miss, simulating a lost insert race.
	hideOnce bool
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{items: map[uint]domain.User{}, roles: map[uint][]domain.Role{}, nextID: 1, touched: map[uint]time.Time{}}
}

func (s *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, u := range s.items {
		if u.ExternalID == user.ExternalID || u.Email == user.Email {
			return &repository.ConstraintError{Kind: repository.ErrConflict, Err: errDuplicate}
		}
	}
	user.ID = s.nextID
	s.nextID++
	s.items[user.ID] = *user
	return nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	u, ok := s.items[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (s *stubUserRepo) FindByExternalID(_ context.Context, externalID string) (*domain.User, error) {
	if s.hideOnce {
		s.hideOnce = false
		return nil, repository.ErrUserNotFound
	}
	for _, u := range s.items {
		if u.ExternalID == externalID {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range s.items {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *stubUserRepo) ListPaged(_ context.Context, q repository.UserListQuery) (repository.PageResult[domain.User], error) {
	items := make([]domain.User, 0, len(s.items))
	for _, u := range s.items {
		items = append(items, u)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return repository.PageResult[domain.User]{Items: items, Page: 1, PageSize: q.PageSize, Total: int64(len(items)), TotalPages: 1}, nil
}

func (s *stubUserRepo) Update(_ context.Context, id uint, updates map[string]any) error {
	u, ok := s.items[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	if v, ok := updates["email"].(string); ok {
		u.Email = v
	}
	if v, ok := updates["display_name"]; ok {
		u.DisplayName = v.(*string)
	}
	if v, ok := updates["first_name"]; ok {
		u.FirstName = v.(*string)
	}
	if v, ok := updates["last_name"]; ok {
		u.LastName = v.(*string)
	}
	if v, ok := updates["is_active"].(bool); ok {
		u.IsActive = v
	}
	s.items[id] = u
	return nil
}

func (s *stubUserRepo) TouchLastLogin(_ context.Context, id uint, at time.Time) error {
	u, ok := s.items[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.LastLoginAt = &at
	s.items[id] = u
	s.touched[id] = at
	return nil
}

func (s *stubUserRepo) DeleteByID(_ context.Context, id uint) error {
	if _, ok := s.items[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *stubUserRepo) RolesForUser(_ context.Context, userID uint) ([]domain.Role, error) {
	return s.roles[userID], nil
}

type stubUserRoleRepo struct {
	assigned  []domain.UserRole
	assignErr error
}

func (s *stubUserRoleRepo) Assign(_ context.Context, ur *domain.UserRole) error {
	if s.assignErr != nil {
		return s.assignErr
	}
	s.assigned = append(s.assigned, *ur)
	return nil
}

func (s *stubUserRoleRepo) Find(_ context.Context, userID, roleID uint) (*domain.UserRole, error) {
	for _, ur := range s.assigned {
		if ur.UserID == userID && ur.RoleID == roleID {
			return &ur, nil
		}
	}
	return nil, repository.ErrUserRoleNotFound
}

func (s *stubUserRoleRepo) Revoke(_ context.Context, userID, roleID uint) error {
	for i, ur := range s.assigned {
		if ur.UserID == userID && ur.RoleID == roleID {
			s.assigned = append(s.assigned[:i], s.assigned[i+1:]...)
			return nil
		}
	}
	return repository.ErrUserRoleNotFound
}

type stubRoleRepo struct {
	items  map[uint]domain.Role
	nextID uint
}

func newStubRoleRepo() *stubRoleRepo {
	s := &stubRoleRepo{items: map[uint]domain.Role{}, nextID: 1}
	for _, r := range domain.DefaultRoles() {
		s.items[r.ID] = r
		s.nextID = r.ID + 1
	}
	return s
}

func (s *stubRoleRepo) Create(_ context.Context, role *domain.Role) error {
	for _, r := range s.items {
		if r.Name == role.Name {
			return &repository.ConstraintError{Kind: repository.ErrConflict, Constraint: "roles.name", Err: errDuplicate}
		}
	}
	role.ID = s.nextID
	s.nextID++
	s.items[role.ID] = *role
	return nil
}

func (s *stubRoleRepo) FindByID(_ context.Context, id uint) (*domain.Role, error) {
	r, ok := s.items[id]
	if !ok {
		return nil, repository.ErrRoleNotFound
	}
	return &r, nil
}

func (s *stubRoleRepo) FindByName(_ context.Context, name string) (*domain.Role, error) {
	for _, r := range s.items {
		if r.Name == name {
			return &r, nil
		}
	}
	return nil, repository.ErrRoleNotFound
}

func (s *stubRoleRepo) List(_ context.Context) ([]domain.Role, error) {
	out := make([]domain.Role, 0, len(s.items))
	for _, r := range s.items {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRoleRepo) Update(_ context.Context, id uint, updates map[string]any) error {
	r, ok := s.items[id]
	if !ok {
		return repository.ErrRoleNotFound
	}
	if v, ok := updates["name"].(string); ok {
		r.Name = v
	}
	if v, ok := updates["description"]; ok {
		r.Description = v.(*string)
	}
	s.items[id] = r
	return nil
}

func (s *stubRoleRepo) DeleteByID(_ context.Context, id uint) error {
	if _, ok := s.items[id]; !ok {
		return repository.ErrRoleNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *stubRoleRepo) UsersForRole(_ context.Context, _ uint, req repository.PageRequest) (repository.PageResult[domain.User], error) {
	return repository.PageResult[domain.User]{Page: 1, PageSize: req.PageSize}, nil
}

func strPtr(v string) *string { return &v }
