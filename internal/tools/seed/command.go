package seed

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sandeepkv93/personal-website-backend/internal/database"
	"github.com/sandeepkv93/personal-website-backend/internal/tools/common"
)

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Database seed tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(
		newCommand(opts, "apply", "Ensure the default roles exist", apply),
		newCommand(opts, "dry-run", "Show what seeding would do", dryRun),
		newCommand(opts, "verify", "Fail unless the default roles are present and unchanged", verify),
	)
	return cmd
}

func newCommand(opts *options, use, short string, fn func(context.Context, *gorm.DB) ([]string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := common.Run(opts.ci, opts.timeout, "seed", use, func(ctx context.Context) ([]string, error) {
				_, db, err := common.LoadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				defer func() { _ = database.Close(db) }()
				return fn(ctx, db)
			})
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func apply(ctx context.Context, db *gorm.DB) ([]string, error) {
	report, err := database.Seed(ctx, db)
	if err != nil {
		return nil, err
	}
	return reportDetails(report), nil
}

func dryRun(ctx context.Context, db *gorm.DB) ([]string, error) {
	report, err := database.PlanSeed(ctx, db)
	if err != nil {
		return nil, err
	}
	details := []string{fmt.Sprintf("existing roles: %d", report.ExistingRoles)}
	if report.Noop {
		return append(details, "nothing to seed"), nil
	}
	return append(details, "would create roles: "+strings.Join(report.MissingRoles, ", ")), nil
}

func verify(ctx context.Context, db *gorm.DB) ([]string, error) {
	if err := database.VerifySeed(ctx, db); err != nil {
		return nil, err
	}
	return []string{"default roles present: Admin, User"}, nil
}

func reportDetails(r *database.SeedReport) []string {
	if r.Noop {
		return []string{fmt.Sprintf("roles already seeded: %d", r.ExistingRoles)}
	}
	return []string{
		fmt.Sprintf("created roles: %d", r.CreatedRoles),
		fmt.Sprintf("existing roles: %d", r.ExistingRoles),
	}
}
