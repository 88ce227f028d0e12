package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sandeepkv93/personal-website-backend/internal/domain"
	"github.com/sandeepkv93/personal-website-backend/internal/observability"
)

var ErrSeedMismatch = errors.New("seed data mismatch")

type SeedReport struct {
	CreatedRoles  int      `json:"created_roles"`
	ExistingRoles int      `json:"existing_roles"`
	MissingRoles  []string `json:"missing_roles,omitempty"`
	Noop          bool     `json:"noop"`
}

// Seed guarantees the default roles exist with their fixed ids. Running it
// again is a no-op; a row that holds a default id or name with different
// data fails with ErrSeedMismatch instead of being overwritten.
func Seed(ctx context.Context, db *gorm.DB) (report *SeedReport, err error) {
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		observability.RecordDatabaseStartupEvent(ctx, "seed", outcome)
		observability.RecordDatabaseStartupDuration(ctx, "seed", time.Since(start))
	}()

	report = &SeedReport{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, role := range domain.DefaultRoles() {
			existing, err := findSeedRole(tx, role)
			if err != nil {
				return err
			}
			if existing != nil {
				report.ExistingRoles++
				continue
			}
			if err := tx.Omit(clause.Associations).Create(&role).Error; err != nil {
				return fmt.Errorf("create role %q: %w", role.Name, err)
			}
			report.CreatedRoles++
		}
		if report.CreatedRoles > 0 {
			return advanceRoleSequence(tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	report.Noop = report.CreatedRoles == 0
	observability.RecordSeedCreatedRows(ctx, "role", report.CreatedRoles)
	return report, nil
}

// PlanSeed reports what Seed would do without writing.
func PlanSeed(ctx context.Context, db *gorm.DB) (*SeedReport, error) {
	report := &SeedReport{}
	for _, role := range domain.DefaultRoles() {
		existing, err := findSeedRole(db.WithContext(ctx), role)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			report.ExistingRoles++
			continue
		}
		report.MissingRoles = append(report.MissingRoles, role.Name)
	}
	report.Noop = len(report.MissingRoles) == 0
	return report, nil
}

// VerifySeed fails unless every default role is present and unchanged.
func VerifySeed(ctx context.Context, db *gorm.DB) error {
	report, err := PlanSeed(ctx, db)
	if err != nil {
		return err
	}
	if !report.Noop {
		return fmt.Errorf("%w: missing roles %v", ErrSeedMismatch, report.MissingRoles)
	}
	return nil
}

// findSeedRole returns the stored row for want, nil when neither its id nor
// its name is taken, or ErrSeedMismatch when only one of them matches.
func findSeedRole(tx *gorm.DB, want domain.Role) (*domain.Role, error) {
	var byID domain.Role
	err := tx.Where("id = ?", want.ID).Take(&byID).Error
	switch {
	case err == nil:
		if byID.Name != want.Name {
			return nil, fmt.Errorf("%w: role %d is named %q, want %q", ErrSeedMismatch, want.ID, byID.Name, want.Name)
		}
		return &byID, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("load role %d: %w", want.ID, err)
	}

	var byName domain.Role
	err = tx.Where("name = ?", want.Name).Take(&byName).Error
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: role %q has id %d, want %d", ErrSeedMismatch, want.Name, byName.ID, want.ID)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("load role %q: %w", want.Name, err)
	}
}

// advanceRoleSequence moves the postgres identity past explicitly inserted ids.
// SQLite derives the next rowid from the max key and needs nothing.
func advanceRoleSequence(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	err := tx.Exec("SELECT setval(pg_get_serial_sequence('roles', 'id'), GREATEST((SELECT MAX(id) FROM roles), 1))").Error
	if err != nil {
		return fmt.Errorf("advance roles sequence: %w", err)
	}
	return nil
}
