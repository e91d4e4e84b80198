package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/andy/tallysheet/internal/repository"
	"github.com/andy/tallysheet/internal/service"
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Manage time entries",
	Long: `List, add, edit, and delete time entries.

Times are read and shown in the configured default timezone.`,
}

var entriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List time entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		u, err := owner(ctx)
		if err != nil {
			return err
		}
		loc := localZone()

		var filter repository.EntryFilter
		if cmd.Flags().Changed("client") {
			ref, _ := cmd.Flags().GetString("client")
			client, err := appInstance.Clients.Resolve(ctx, u.ID, ref)
			if err != nil {
				return err
			}
			filter.ClientID = &client.ID
		}
		if cmd.Flags().Changed("from") {
			s, _ := cmd.Flags().GetString("from")
			t, err := parseDate(s, loc)
			if err != nil {
				return fmt.Errorf("invalid --from date: %w", err)
			}
			filter.From = &t
		}
		if cmd.Flags().Changed("to") {
			s, _ := cmd.Flags().GetString("to")
			t, err := parseDate(s, loc)
			if err != nil {
				return fmt.Errorf("invalid --to date: %w", err)
			}
			// inclusive of the whole day
			t = t.AddDate(0, 0, 1)
			filter.To = &t
		}
		filter.Limit, _ = cmd.Flags().GetInt("limit")

		entries, err := appInstance.Entries.List(ctx, u.ID, filter)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No entries found")
			return nil
		}

		names, err := clientNames(cmd, u.ID)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%-6s %-20s %-17s %-12s %-8s %s\n", "ID", "Client", "Start", "Duration", "Status", "Notes")
		fmt.Fprintln(out, strings.Repeat("-", 80))

		var total time.Duration
		for _, entry := range entries {
			clientName := "(deleted client)"
			if entry.ClientID != nil {
				clientName = names[*entry.ClientID]
			}
			status := "done"
			if entry.IsRunning() {
				status = "running"
			}

			d := entry.Duration()
			fmt.Fprintf(out, "%-6d %-20s %-17s %-12s %-8s %s\n",
				entry.ID,
				truncate(clientName, 20),
				entry.StartTime.In(loc).Format("2006-01-02 15:04"),
				formatDuration(d),
				status,
				truncate(entry.Notes, 30),
			)
			total += d
		}

		fmt.Fprintln(out, strings.Repeat("-", 80))
		fmt.Fprintf(out, "Total: %d entries, %s\n", len(entries), formatDuration(total))
		return nil
	},
}

var entriesAddCmd = &cobra.Command{
	Use:   "add [client_id_or_name] [start_time] [end_time] [notes]",
	Short: "Add a finished time entry",
	Args:  cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		u, err := owner(ctx)
		if err != nil {
			return err
		}
		loc := localZone()

		client, err := appInstance.Clients.Resolve(ctx, u.ID, args[0])
		if err != nil {
			return err
		}

		start, err := parseDateTime(args[1], loc)
		if err != nil {
			return fmt.Errorf("invalid start time: %w", err)
		}
		end, err := parseDateTime(args[2], loc)
		if err != nil {
			return fmt.Errorf("invalid end time: %w", err)
		}

		notes := ""
		if len(args) > 3 {
			notes = args[3]
		}

		entry, err := appInstance.Entries.Add(ctx, u.ID, client.ID, start, end, notes)
		if err != nil {
			return fmt.Errorf("failed to create entry: %w", err)
		}

		d := entry.Duration()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Time entry created (ID: %d)\n", entry.ID)
		fmt.Fprintf(out, "  Client: %s\n", client.Name)
		fmt.Fprintf(out, "  Duration: %s\n", formatDuration(d))
		fmt.Fprintf(out, "  Amount: %s\n", money(d.Hours()*client.HourlyRate))
		return nil
	},
}

var entriesEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a time entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		u, err := owner(ctx)
		if err != nil {
			return err
		}
		loc := localZone()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry ID: %w", err)
		}

		var upd service.EntryUpdate
		if cmd.Flags().Changed("client") {
			ref, _ := cmd.Flags().GetString("client")
			client, err := appInstance.Clients.Resolve(ctx, u.ID, ref)
			if err != nil {
				return err
			}
			upd.ClientID = &client.ID
		}
		if cmd.Flags().Changed("notes") {
			notes, _ := cmd.Flags().GetString("notes")
			upd.Notes = &notes
		}
		if cmd.Flags().Changed("start") {
			s, _ := cmd.Flags().GetString("start")
			t, err := parseDateTime(s, loc)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			upd.StartTime = &t
		}
		if cmd.Flags().Changed("end") {
			s, _ := cmd.Flags().GetString("end")
			t, err := parseDateTime(s, loc)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
			upd.EndTime = &t
		}

		reason, _ := cmd.Flags().GetString("reason")
		entry, err := appInstance.Entries.Update(ctx, u.ID, id, upd, reason)
		if err != nil {
			return fmt.Errorf("failed to update entry: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Entry updated (ID: %d)\n", entry.ID)
		return nil
	},
}

var entriesDeleteCmd = &cobra.Command{
	Use:     "rm [id]",
	Aliases: []string{"delete"},
	Short:   "Delete a time entry (soft delete)",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		u, err := owner(ctx)
		if err != nil {
			return err
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry ID: %w", err)
		}

		reason, _ := cmd.Flags().GetString("reason")
		if err := appInstance.Entries.Delete(ctx, u.ID, id, reason); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Entry deleted (ID: %d)\n", id)
		return nil
	},
}

var entriesHistoryCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show edit history for an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		u, err := owner(ctx)
		if err != nil {
			return err
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry ID: %w", err)
		}

		history, err := appInstance.Entries.History(ctx, u.ID, id)
		if err != nil {
			return fmt.Errorf("failed to get history: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(history) == 0 {
			fmt.Fprintln(out, "No edit history for this entry")
			return nil
		}

		fmt.Fprintf(out, "Edit History for Entry #%d:\n\n", id)
		for _, h := range history {
			fmt.Fprintf(out, "%s  %s: %q -> %q\n", h.ChangedAt.In(localZone()).Format("2006-01-02 15:04:05"), h.FieldName, h.OldValue, h.NewValue)
			if h.ChangeReason != "" {
				fmt.Fprintf(out, "  Reason: %s\n", h.ChangeReason)
			}
		}
		return nil
	},
}

// clientNames maps the owner's client IDs to names for listings
func clientNames(cmd *cobra.Command, ownerID int64) (map[int64]string, error) {
	clients, err := appInstance.Clients.List(cmd.Context(), ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	names := make(map[int64]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
	}
	return names, nil
}

func init() {
	entriesCmd.AddCommand(entriesListCmd)
	entriesCmd.AddCommand(entriesAddCmd)
	entriesCmd.AddCommand(entriesEditCmd)
	entriesCmd.AddCommand(entriesDeleteCmd)
	entriesCmd.AddCommand(entriesHistoryCmd)

	entriesListCmd.Flags().String("client", "", "Filter by client ID or name")
	entriesListCmd.Flags().String("from", "", "Entries starting on or after this date (YYYY-MM-DD, 'today')")
	entriesListCmd.Flags().String("to", "", "Entries starting on or before this date (YYYY-MM-DD, 'today')")
	entriesListCmd.Flags().Int("limit", 0, "Show at most this many entries")

	entriesEditCmd.Flags().String("client", "", "Move to another client")
	entriesEditCmd.Flags().String("notes", "", "New notes")
	entriesEditCmd.Flags().String("start", "", "New start time")
	entriesEditCmd.Flags().String("end", "", "New end time")
	entriesEditCmd.Flags().String("reason", "", "Reason for edit (required)")
	_ = entriesEditCmd.MarkFlagRequired("reason")

	entriesDeleteCmd.Flags().String("reason", "", "Reason for deletion")
}
