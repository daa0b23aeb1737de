package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"blogsphere/internal/database"
)

func newSessionsCommand() *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Maintain user and admin sessions",
	}
	sessionsCmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete expired user and admin sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.db.Close()
			n, err := database.NewSessionService(e.db).PurgeExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d expired sessions deleted\n", n)
			return nil
		},
	})
	return sessionsCmd
}
