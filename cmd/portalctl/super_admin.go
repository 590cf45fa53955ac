package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"debo-engineering/job-portal/internal/models"
	"debo-engineering/job-portal/internal/repositories"
	"debo-engineering/job-portal/internal/services"
)

var superAdminFlags struct {
	email    string
	name     string
	password string
}

var createSuperAdminCmd = &cobra.Command{
	Use:   "create-super-admin",
	Short: "Create the first super-admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := newSuperAdmin(superAdminFlags.name, superAdminFlags.email, superAdminFlags.password)
		if err != nil {
			return err
		}

		_, db, err := openDatabase()
		if err != nil {
			return err
		}

		if err := repositories.NewUserRepository(db).Create(cmd.Context(), user); err != nil {
			return fmt.Errorf("failed to create super-admin: %w", err)
		}

		fmt.Println(successStyle.Render(fmt.Sprintf("✅ Super-admin %s created (id %d)", user.Email, user.ID)))
		return nil
	},
}

func init() {
	flags := createSuperAdminCmd.Flags()
	flags.StringVar(&superAdminFlags.email, "email", "", "account email")
	flags.StringVar(&superAdminFlags.name, "name", "Super Admin", "display name")
	flags.StringVar(&superAdminFlags.password, "password", "", "initial password")
	_ = createSuperAdminCmd.MarkFlagRequired("email")
	_ = createSuperAdminCmd.MarkFlagRequired("password")
}

func newSuperAdmin(name, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}

	hash, err := services.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
	}, nil
}
