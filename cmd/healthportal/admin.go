package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/config"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/repository/postgres"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/seed"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/service"
	"github.com/dmehra2102/prod-golang-projects/healthportal/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/healthportal/pkg/database"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// withDB opens the configured database for one command and closes it when fn
// returns.
func withDB(fn func(ctx context.Context, cfg *config.Config, db *gorm.DB, log *zap.Logger) error) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("getting underlying sql.DB: %w", err)
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	return fn(ctx, cfg, db, log)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, _ *config.Config, db *gorm.DB, log *zap.Logger) error {
				return database.Migrate(db.WithContext(ctx), log)
			})
		},
	}
}

func seedCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import citizens, institutes and health records from JSON exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, _ *config.Config, db *gorm.DB, log *zap.Logger) error {
				ds, err := seed.LoadDir(dir, log)
				if err != nil {
					return err
				}
				_, err = seed.Run(ctx, postgres.NewStore(db, nil).Importer, ds, log)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "data", "directory holding the export files")
	return cmd
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage portal accounts",
	}

	var (
		role     string
		login    string
		password string
		name     string
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a portal account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, cfg *config.Config, db *gorm.DB, log *zap.Logger) error {
				store := postgres.NewStore(db, nil)
				command := &service.CreateAccountCommand{
					Role:        domain.Role(role),
					Login:       login,
					Password:    password,
					DisplayName: name,
				}

				// Hospital logins are the institute's license number
				if command.Role == domain.RoleHospital {
					inst, err := store.Institutes.GetByLicenseNumber(ctx, login)
					if err != nil {
						return fmt.Errorf("resolving institute for license %q: %w", login, err)
					}
					command.InstituteID = &inst.ID
					if command.DisplayName == "" {
						command.DisplayName = inst.Name
					}
				}

				authSvc := service.NewAuthService(store.Accounts, auth.NewJWTManager(cfg.JWT), nil, log)
				a, err := authSvc.CreateAccount(ctx, command)
				if err != nil {
					return err
				}
				log.Info("account created",
					zap.String("id", a.ID.String()),
					zap.String("portal", string(a.Role)),
					zap.String("login", a.Login),
				)
				return nil
			})
		},
	}
	createCmd.Flags().StringVar(&role, "role", "", "portal: citizen, hospital or government")
	createCmd.Flags().StringVar(&login, "login", "", "NID, license number or email")
	createCmd.Flags().StringVar(&password, "password", "", "initial password")
	createCmd.Flags().StringVar(&name, "name", "", "display name")
	_ = createCmd.MarkFlagRequired("role")
	_ = createCmd.MarkFlagRequired("login")
	_ = createCmd.MarkFlagRequired("password")

	cmd.AddCommand(createCmd)
	return cmd
}
