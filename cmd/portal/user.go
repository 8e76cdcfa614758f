package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sirpyerre/members-portal/internal/core/domain"
	"github.com/sirpyerre/members-portal/internal/core/ports"
)

// repoOpener returns a user store and a function releasing it.
type repoOpener func(ctx context.Context) (ports.UserRepository, func(), error)

// NewUserCmd creates the user maintenance command. Promotion over HTTP is
// admin-only, so the first admin is created here.
func NewUserCmd(open repoOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user roles directly in the store",
	}

	cmd.AddCommand(newSetUserTypeCmd(open, "promote", domain.UserTypeAdmin))
	cmd.AddCommand(newSetUserTypeCmd(open, "demote", domain.UserTypeUser))
	return cmd
}

func newSetUserTypeCmd(open repoOpener, verb string, t domain.UserType) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <username>",
		Short: fmt.Sprintf("Set a user's type to %s", t),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			repo, closeFn, err := open(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := repo.SetUserType(ctx, args[0], t); err != nil {
				return fmt.Errorf("%s %s: %w", verb, args[0], err)
			}
			cmd.Printf("%s is now %s\n", args[0], t)
			return nil
		},
	}
}
