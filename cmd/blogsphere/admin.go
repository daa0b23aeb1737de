package main

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"blogsphere/internal/auth"
)

const (
	emailFlag    = "email"
	passwordFlag = "password"
)

var adminCreateFlags = map[string]cobraflags.Flag{
	emailFlag: &cobraflags.StringFlag{
		Name:  emailFlag,
		Value: "",
		Usage: "Admin e-mail (required)",
	},
	passwordFlag: &cobraflags.StringFlag{
		Name:  passwordFlag,
		Value: "",
		Usage: "Admin password, at least 8 characters with a letter and a digit (required)",
	},
}

func newAdminCommand() *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin credentials",
	}
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin credential",
		RunE:  adminCreateCommand,
	}
	cobraflags.RegisterMap(createCmd, adminCreateFlags)
	adminCmd.AddCommand(createCmd)
	return adminCmd
}

func adminCreateCommand(cmd *cobra.Command, _ []string) error {
	email := adminCreateFlags[emailFlag].GetString()
	password := adminCreateFlags[passwordFlag].GetString()
	if email == "" || password == "" {
		return fmt.Errorf("--%s and --%s are required", emailFlag, passwordFlag)
	}

	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.db.Close()
	if err := e.db.Migrate(cmd.Context()); err != nil {
		return err
	}

	svc := auth.NewService(e.db, nil, e.cfg.Session.TTL, e.cfg.Session.AdminTTL, e.logger)
	admin, err := svc.CreateAdmin(cmd.Context(), email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin %d created: %s\n", admin.ID, admin.Email)
	return nil
}
