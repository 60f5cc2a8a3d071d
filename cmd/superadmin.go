package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillvault/skillvault-service/internal/models"
)

// Super admins cannot sign themselves up, so the first one is created from the command line.
var createSuperAdminCmd = &cobra.Command{
	Use:   "create-superadmin",
	Short: "Create a super-admin account",
	RunE:  runCreateSuperAdmin,
}

func init() {
	createSuperAdminCmd.Flags().String("email", "", "Account email (required)")
	createSuperAdminCmd.Flags().String("password", "", "Account password (required)")
	createSuperAdminCmd.Flags().String("name", "Super Admin", "Display name")
	_ = createSuperAdminCmd.MarkFlagRequired("email")
	_ = createSuperAdminCmd.MarkFlagRequired("password")
}

func runCreateSuperAdmin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	name, _ := cmd.Flags().GetString("name")

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return errors.New("email and password are required")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	repo := a.repoManager.GetRepository()

	exists, err := repo.User().ExistsByEmail(ctx, nil, email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return fmt.Errorf("a user with email %s already exists", email)
	}

	identity, err := repo.Identity().SignUp(ctx, email, password, name)
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}

	user := &models.User{
		ID:       identity.UID,
		Name:     name,
		Email:    email,
		Role:     models.RoleSuperAdmin,
		Verified: true,
	}

	if err := repo.User().Create(ctx, nil, user); err != nil {
		if delErr := repo.Identity().Delete(ctx, identity.UID); delErr != nil {
			a.logger.Error("Failed to remove orphaned identity", "uid", identity.UID, "error", delErr)
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	a.logger.Info("Super admin created", "user_id", user.ID, "email", user.Email)
	fmt.Fprintf(cmd.OutOrStdout(), "created super admin %s (%s)\n", user.Email, user.ID)
	return nil
}
