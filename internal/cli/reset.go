package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andy/tallysheet/internal/db"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the acting user's data",
	Long: `Delete the acting user's data. Other users in the same database are untouched.

Examples:
  tallysheet reset timesheets   # Delete all stored timesheets
  tallysheet reset entries      # Delete all time entries, their history and timesheets
  tallysheet reset all          # Delete clients, entries and timesheets`,
}

const (
	deleteTimesheets = `DELETE FROM timesheets WHERE owner_id = ?`
	deleteHistory    = `DELETE FROM entry_history WHERE entry_id IN (SELECT id FROM time_entries WHERE owner_id = ?)`
	deleteEntries    = `DELETE FROM time_entries WHERE owner_id = ?`
	deleteClients    = `DELETE FROM clients WHERE owner_id = ?`
)

// Statements run in order; history rows reference entries.
var (
	resetTimesheets = []string{deleteTimesheets}
	resetEntries    = []string{deleteTimesheets, deleteHistory, deleteEntries}
	resetAll        = []string{deleteTimesheets, deleteHistory, deleteEntries, deleteClients}
)

func resetRunE(prompt, done string, statements []string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		u, err := owner(ctx)
		if err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt(cmd, fmt.Sprintf("%s for %s. Continue?", prompt, u.Email)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}

		uow := db.NewUnitOfWork(appInstance.DB)
		err = uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			for _, stmt := range statements {
				if _, err := tx.ExecContext(ctx, stmt, u.ID); err != nil {
					return fmt.Errorf("failed to reset: %w", err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), done)
		return nil
	}
}

var resetTimesheetsCmd = &cobra.Command{
	Use:   "timesheets",
	Short: "Delete all stored timesheets",
	RunE:  resetRunE("This will delete ALL timesheets", "All timesheets have been deleted.", resetTimesheets),
}

var resetEntriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Delete all time entries, their history, and timesheets",
	RunE:  resetRunE("This will delete ALL time entries and timesheets", "All time entries and timesheets have been deleted.", resetEntries),
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Delete ALL data: clients, entries, timesheets",
	RunE:  resetRunE("This will delete ALL clients, entries and timesheets", "All data has been deleted.", resetAll),
}

func confirmPrompt(cmd *cobra.Command, message string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", message)
	reader := bufio.NewReader(cmd.InOrStdin())
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func init() {
	resetCmd.AddCommand(resetTimesheetsCmd)
	resetCmd.AddCommand(resetEntriesCmd)
	resetCmd.AddCommand(resetAllCmd)

	resetCmd.PersistentFlags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
