package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andy/tallysheet/internal/service"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage clients",
	Long:  `List, add, edit, and remove clients.`,
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		u, err := owner(ctx)
		if err != nil {
			return err
		}

		clients, err := appInstance.Clients.List(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("failed to list clients: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(clients) == 0 {
			fmt.Fprintln(out, "No clients found")
			return nil
		}

		fmt.Fprintf(out, "%-5s %-30s %-15s\n", "ID", "Name", "Hourly Rate")
		fmt.Fprintln(out, strings.Repeat("-", 52))
		for _, client := range clients {
			fmt.Fprintf(out, "%-5d %-30s %-15s\n",
				client.ID,
				truncate(client.Name, 30),
				money(client.HourlyRate),
			)
		}

		fmt.Fprintf(out, "\nTotal: %d client(s)\n", len(clients))
		return nil
	},
}

var clientsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a new client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		u, err := owner(ctx)
		if err != nil {
			return err
		}

		rate, _ := cmd.Flags().GetFloat64("rate")
		client, err := appInstance.Clients.Create(ctx, u.ID, args[0], rate)
		if err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Client created: %s (ID: %d)\n", client.Name, client.ID)
		fmt.Fprintf(out, "  Hourly Rate: %s\n", money(client.HourlyRate))
		return nil
	},
}

var clientsEditCmd = &cobra.Command{
	Use:   "edit [id_or_name]",
	Short: "Edit an existing client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		u, err := owner(ctx)
		if err != nil {
			return err
		}

		client, err := appInstance.Clients.Resolve(ctx, u.ID, args[0])
		if err != nil {
			return err
		}

		var upd service.ClientUpdate
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			upd.Name = &name
		}
		if cmd.Flags().Changed("rate") {
			rate, _ := cmd.Flags().GetFloat64("rate")
			upd.HourlyRate = &rate
		}

		client, err = appInstance.Clients.Update(ctx, u.ID, client.ID, upd)
		if err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Client updated: %s (%s/h)\n", client.Name, money(client.HourlyRate))
		return nil
	},
}

var clientsRemoveCmd = &cobra.Command{
	Use:     "rm [id_or_name]",
	Aliases: []string{"delete"},
	Short:   "Remove a client; its timesheets are kept",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		u, err := owner(ctx)
		if err != nil {
			return err
		}

		client, err := appInstance.Clients.Resolve(ctx, u.ID, args[0])
		if err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt(cmd, fmt.Sprintf("Remove client %q? Its entries are detached and its timesheets kept.", client.Name)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}

		if err := appInstance.Clients.Delete(ctx, u.ID, client.ID); err != nil {
			return fmt.Errorf("failed to remove client: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Client removed: %s\n", client.Name)
		return nil
	},
}

func init() {
	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsAddCmd)
	clientsCmd.AddCommand(clientsEditCmd)
	clientsCmd.AddCommand(clientsRemoveCmd)

	clientsAddCmd.Flags().Float64("rate", 0, "Hourly rate (required)")
	_ = clientsAddCmd.MarkFlagRequired("rate")

	clientsEditCmd.Flags().String("name", "", "New name")
	clientsEditCmd.Flags().Float64("rate", 0, "New hourly rate")

	clientsRemoveCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
