package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the portal CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portal",
		Short: "Members portal web server and admin tools",
		Long: `portal serves the members web application and provides
maintenance commands that act directly on the credential store.

Configuration is read from the environment (PORT, SESSION_SECRET,
MONGO_URI, SESSION_BACKEND, ...).`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewUserCmd(openUserRepository))

	return cmd
}
