package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"quizbank-service/internal/app"
	"quizbank-service/internal/auth"
)

// NewSeedOwnerCmd provisions the owner account without starting the server.
func NewSeedOwnerCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-owner",
		Short: "Create the owner account if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("seed-owner needs a postgres url; the in-memory store does not outlive the command")
			}
			if err := runMigrationsWithConfig(ctx, cfg); err != nil {
				return err
			}
			deps, err := openStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer deps.Close()

			users := app.NewUserService(deps.store, auth.NewPasswordHasher(cfg.Auth.BcryptCost), nil, nil, cfg.Owner.Username)
			created, err := users.SeedOwner(ctx, cfg.Owner.Password)
			if err != nil {
				return err
			}
			if !created {
				cmd.Printf("owner %q already exists\n", cfg.Owner.Username)
			}
			return nil
		},
	}
}
