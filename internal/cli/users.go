package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andy/tallysheet/internal/domain"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Show or change the acting user",
}

var usersWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the acting user and plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		u, err := owner(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (ID: %d)\n", u.Email, u.ID)
		fmt.Fprintf(out, "  Plan: %s\n", u.Tier)
		if limit := u.ClientLimit(); limit > 0 {
			fmt.Fprintf(out, "  Clients: up to %d\n", limit)
		} else {
			fmt.Fprintln(out, "  Clients: unlimited")
		}
		return nil
	},
}

var usersTierCmd = &cobra.Command{
	Use:   "tier [free|pro]",
	Short: "Change the acting user's plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tier, err := domain.ParseTier(args[0])
		if err != nil {
			return domain.NewValidationError(err.Error())
		}

		u, err := owner(ctx)
		if err != nil {
			return err
		}

		u, err = appInstance.Users.SetTier(ctx, u.Email, tier)
		if err != nil {
			return fmt.Errorf("failed to change plan: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is now on the %s plan\n", u.Email, u.Tier)
		return nil
	},
}

func init() {
	usersCmd.AddCommand(usersWhoamiCmd)
	usersCmd.AddCommand(usersTierCmd)
}
