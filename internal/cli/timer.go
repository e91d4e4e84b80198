package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Manage per-client timers",
	Long:  `Start, stop, discard, or check timers. Each client has its own timer.`,
}

var timerStartCmd = &cobra.Command{
	Use:   "start [client_id_or_name] [notes]",
	Short: "Start the timer for a client",
	Args:  cobra.RangeArgs(1, 2),
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

		notes := ""
		if len(args) > 1 {
			notes = args[1]
		}

		if _, err := appInstance.Timers.Start(ctx, u.ID, client.ID, notes); err != nil {
			return fmt.Errorf("failed to start timer: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Timer started for %s\n", client.Name)
		if notes != "" {
			fmt.Fprintf(out, "  Notes: %s\n", notes)
		}
		return nil
	},
}

var timerStopCmd = &cobra.Command{
	Use:   "stop [client_id_or_name]",
	Short: "Stop a client's timer and keep the entry",
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

		var notes *string
		if cmd.Flags().Changed("notes") {
			n, _ := cmd.Flags().GetString("notes")
			notes = &n
		}

		entry, err := appInstance.Timers.Stop(ctx, u.ID, client.ID, notes)
		if err != nil {
			return fmt.Errorf("failed to stop timer: %w", err)
		}

		d := entry.Duration()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "✓ Timer stopped")
		fmt.Fprintf(out, "  Client: %s\n", client.Name)
		fmt.Fprintf(out, "  Duration: %s\n", formatDuration(d))
		fmt.Fprintf(out, "  Amount: %s\n", money(d.Hours()*client.HourlyRate))
		return nil
	},
}

var timerDiscardCmd = &cobra.Command{
	Use:   "discard [client_id_or_name]",
	Short: "Discard a client's timer without saving",
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

		if err := appInstance.Timers.Discard(ctx, u.ID, client.ID); err != nil {
			return fmt.Errorf("failed to discard timer: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Timer discarded for %s\n", client.Name)
		return nil
	},
}

var timerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show all running timers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		u, err := owner(ctx)
		if err != nil {
			return err
		}

		timers, err := appInstance.Timers.Running(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("failed to get timers: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(timers) == 0 {
			fmt.Fprintln(out, "No running timers")
			return nil
		}

		now := time.Now()
		for _, t := range timers {
			fmt.Fprintf(out, "%s\n", t.ClientName)
			if t.Entry.Notes != "" {
				fmt.Fprintf(out, "  Notes: %s\n", t.Entry.Notes)
			}
			fmt.Fprintf(out, "  Started: %s\n", t.Entry.StartTime.In(localZone()).Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "  Elapsed: %s\n", formatDuration(t.Elapsed(now)))
			fmt.Fprintf(out, "  Current Value: %s\n", money(t.AccruedValue(now)))
		}
		return nil
	},
}

func init() {
	timerCmd.AddCommand(timerStartCmd)
	timerCmd.AddCommand(timerStopCmd)
	timerCmd.AddCommand(timerDiscardCmd)
	timerCmd.AddCommand(timerStatusCmd)

	timerStopCmd.Flags().String("notes", "", "Replace the entry's notes")
}
