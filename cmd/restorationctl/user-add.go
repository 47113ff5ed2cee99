package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bcgov/restoration-tracker/pkg/config"
	"github.com/bcgov/restoration-tracker/pkg/db"
	"github.com/bcgov/restoration-tracker/pkg/model"
	gormstore "github.com/bcgov/restoration-tracker/pkg/server/store/gorm"
)

// bootstrapActorID is recorded as the creator of users added from the CLI.
const bootstrapActorID = 0

// userAddCmd represents the user add command
var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a system user",
	Long: `Register a system user, or re-activate one that was removed, and
optionally grant a system role. This is how the first System Administrator
is created on a new database.

Roles: 1 System Administrator, 2 Project Creator, 3 Data Administrator.

Example:
  restorationctl user add --source IDIR --identifier jdoe --guid 3F9A61C2 --role 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := newUserFromFlags(cmd)
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		conn, err := db.Connect(db.Config{URL: cfg.DatabaseURL, LogLevel: cfg.LogLevel})
		if err != nil {
			return err
		}

		added, err := gormstore.NewUsersStore(conn).AddSystemUser(cmd.Context(), u, bootstrapActorID)
		if err != nil {
			return fmt.Errorf("failed to add user: %w", err)
		}
		fmt.Printf("System user %d (%s) roles: %s\n", added.ID, added.Identifier, strings.Join(added.RoleNames, ", "))
		return nil
	},
}

func init() {
	userCmd.AddCommand(userAddCmd)
	addUserFlags(userAddCmd)
}

func addUserFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("source", "s", model.IdentitySourceIDIR, "Identity source (IDIR, BCEIDBASIC, BCEIDBUSINESS, DATABASE)")
	cmd.Flags().StringP("identifier", "i", "", "User identifier (username)")
	cmd.Flags().StringP("guid", "g", "", "Identity provider GUID")
	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("display-name", "", "Display name")
	cmd.Flags().IntP("role", "r", 0, "System role id to grant")
}

func newUserFromFlags(cmd *cobra.Command) (model.NewUser, error) {
	var u model.NewUser
	u.IdentitySource, _ = cmd.Flags().GetString("source")
	u.UserIdentifier, _ = cmd.Flags().GetString("identifier")
	u.UserGUID, _ = cmd.Flags().GetString("guid")
	u.Email, _ = cmd.Flags().GetString("email")
	u.DisplayName, _ = cmd.Flags().GetString("display-name")
	u.RoleID, _ = cmd.Flags().GetInt("role")

	u.IdentitySource = strings.ToUpper(strings.TrimSpace(u.IdentitySource))
	switch u.IdentitySource {
	case model.IdentitySourceIDIR, model.IdentitySourceBCeIDBasic, model.IdentitySourceBCeIDBusiness, model.IdentitySourceDatabase:
	default:
		return u, fmt.Errorf("unknown identity source %q", u.IdentitySource)
	}
	if strings.TrimSpace(u.UserIdentifier) == "" {
		return u, fmt.Errorf("--identifier is required")
	}
	if u.RoleID < 0 || u.RoleID > 3 {
		return u, fmt.Errorf("unknown system role %d", u.RoleID)
	}
	return u, nil
}
