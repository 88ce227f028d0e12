package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sandeepkv93/personal-website-backend/internal/domain"
	"github.com/sandeepkv93/personal-website-backend/internal/repository"
)

func TestRoleServiceCRUD(t *testing.T) {
	svc := NewRoleService(newStubRoleRepo())
	ctx := context.Background()

	role, err := svc.Create(ctx, CreateRoleInput{Name: "  Editor ", Description: strPtr(" edits ")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if role.Name != "Editor" || role.Description == nil || *role.Description != "edits" {
		t.Fatalf("unexpected role: %+v", role)
	}
	if _, err := svc.Create(ctx, CreateRoleInput{Name: "Editor"}); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	got, err := svc.GetByName(ctx, " Editor ")
	if err != nil || got.ID != role.ID {
		t.Fatalf("get by name: %+v %v", got, err)
	}

	updated, err := svc.Update(ctx, role.ID, UpdateRoleInput{Description: strPtr("")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != nil || updated.Name != "Editor" {
		t.Fatalf("expected description cleared, got %+v", updated)
	}

	if err := svc.DeleteByID(ctx, role.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, role.ID); !errors.Is(err, repository.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestRoleServiceValidation(t *testing.T) {
	svc := NewRoleService(newStubRoleRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRoleInput{Name: " "}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateRoleInput{Name: strings.Repeat("n", domain.RoleNameMaxLen+1)}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for long name, got %v", err)
	}
	role, err := svc.Create(ctx, CreateRoleInput{Name: "Viewer"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Update(ctx, role.ID, UpdateRoleInput{}); !errors.Is(err, ErrNoUpdates) {
		t.Fatalf("expected ErrNoUpdates, got %v", err)
	}
	long := strings.Repeat("d", domain.RoleDescriptionMaxLen+1)
	if _, err := svc.Update(ctx, role.ID, UpdateRoleInput{Description: &long}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for long description, got %v", err)
	}
}

func TestRoleServiceProtectsSeededRoles(t *testing.T) {
	svc := NewRoleService(newStubRoleRepo())
	ctx := context.Background()

	for _, id := range []uint{domain.AdminRoleID, domain.UserRoleID} {
		if _, err := svc.Update(ctx, id, UpdateRoleInput{Name: strPtr("Owner")}); !errors.Is(err, ErrProtectedRole) {
			t.Fatalf("rename role %d: expected ErrProtectedRole, got %v", id, err)
		}
		if err := svc.DeleteByID(ctx, id); !errors.Is(err, ErrProtectedRole) {
			t.Fatalf("delete role %d: expected ErrProtectedRole, got %v", id, err)
		}
		if _, err := svc.GetByID(ctx, id); err != nil {
			t.Fatalf("role %d should survive: %v", id, err)
		}
	}

	// Same name with surrounding space and description edits stay allowed.
	updated, err := svc.Update(ctx, domain.AdminRoleID, UpdateRoleInput{Name: strPtr(" Admin "), Description: strPtr("site owners")})
	if err != nil {
		t.Fatalf("update admin description: %v", err)
	}
	if updated.Name != "Admin" || updated.Description == nil || *updated.Description != "site owners" {
		t.Fatalf("unexpected admin role: %+v", updated)
	}
}

func TestRoleServiceUsersRequiresRole(t *testing.T) {
	svc := NewRoleService(newStubRoleRepo())
	if _, err := svc.Users(context.Background(), 7, repository.PageRequest{}); !errors.Is(err, repository.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}
