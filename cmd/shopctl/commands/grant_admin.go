package commands

import (
	"errors"
	"fmt"
	"strings"

	"perfumeshop/internal/domain/model"
	infraRepo "perfumeshop/internal/infra/repository"
	"perfumeshop/internal/repository"

	"github.com/spf13/cobra"
)

var revoke bool

var grantAdminCmd = &cobra.Command{
	Use:   "grant-admin EMAIL",
	Short: "Give a registered user the ADMIN role",
	Long: `Give a registered user the ADMIN role.

Examples:
  shopctl grant-admin owner@example.com
  shopctl grant-admin owner@example.com --revoke   # back to USER`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		gdb, err := openDB()
		if err != nil {
			return err
		}

		email := strings.ToLower(strings.TrimSpace(args[0]))
		role := model.RoleAdmin
		if revoke {
			role = model.RoleUser
		}

		users := infraRepo.NewUserGormRepository(gdb)
		if err := users.SetRole(cmd.Context(), email, role); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return fmt.Errorf("no user with email %s", email)
			}
			return err
		}
		// 既存トークンのロールは古いままなので失効させる
		u, err := users.FindByEmail(cmd.Context(), email)
		if err == nil && u != nil {
			if err := users.IncrementTokenVersion(cmd.Context(), u.ID); err != nil {
				return err
			}
		}

		log.Info("role updated", "email", email, "role", string(role))
		return nil
	},
}

func init() {
	grantAdminCmd.Flags().BoolVar(&revoke, "revoke", false, "set the role back to USER")
}
