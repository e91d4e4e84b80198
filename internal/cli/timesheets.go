package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andy/tallysheet/internal/domain"
	"github.com/andy/tallysheet/internal/timesheet"
)

var timesheetsCmd = &cobra.Command{
	Use:     "timesheets",
	Aliases: []string{"ts"},
	Short:   "Generate and manage CSV timesheets",
	Long: `Generate CSV timesheets for a client over a date range or a calendar month.

A range is given with --start and --end (YYYY-MM-DD, both days included) and is
resolved in --tz, which defaults to the configured timezone. A month is given
with --month and --year and is always resolved in UTC.

Examples:
  tallysheet timesheets generate Acme --start 2024-01-01 --end 2024-01-31 --tz America/New_York
  tallysheet timesheets generate Acme --month 3 --year 2024
  tallysheet timesheets download 4 -o march.csv`,
}

// periodRequest is one of the two request shapes, chosen from the flags.
type periodRequest struct {
	rng     *timesheet.RangeRequest
	monthly *timesheet.MonthlyRequest
}

func addPeriodFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", "First day of the range (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "Last day of the range (YYYY-MM-DD)")
	cmd.Flags().String("tz", "", "IANA timezone for the range")
	cmd.Flags().Int("month", 0, "Calendar month (1-12)")
	cmd.Flags().Int("year", 0, "Calendar year")

	cmd.MarkFlagsRequiredTogether("start", "end")
	cmd.MarkFlagsRequiredTogether("month", "year")
	cmd.MarkFlagsMutuallyExclusive("start", "month")
	cmd.MarkFlagsMutuallyExclusive("tz", "month")
	cmd.MarkFlagsOneRequired("start", "month")
}

func readPeriodFlags(cmd *cobra.Command, clientID int64) periodRequest {
	if cmd.Flags().Changed("month") {
		month, _ := cmd.Flags().GetInt("month")
		year, _ := cmd.Flags().GetInt("year")
		return periodRequest{monthly: &timesheet.MonthlyRequest{ClientID: clientID, Month: month, Year: year}}
	}

	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	tz, _ := cmd.Flags().GetString("tz")
	if tz == "" {
		tz = appInstance.Config.Timesheets.DefaultTimezone
	}
	return periodRequest{rng: &timesheet.RangeRequest{ClientID: clientID, StartDate: start, EndDate: end, Timezone: tz}}
}

var timesheetsGenerateCmd = &cobra.Command{
	Use:   "generate [client_id_or_name]",
	Short: "Generate and store a timesheet",
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

		var summary *domain.TimesheetSummary
		req := readPeriodFlags(cmd, client.ID)
		if req.monthly != nil {
			summary, err = appInstance.Timesheets.GenerateMonthly(ctx, u.ID, *req.monthly)
		} else {
			summary, err = appInstance.Timesheets.GenerateRange(ctx, u.ID, *req.rng)
		}
		if err != nil {
			return fmt.Errorf("failed to generate timesheet: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Timesheet generated (ID: %d)\n", summary.ID)
		fmt.Fprintf(out, "  Client: %s\n", summary.ClientName)
		fmt.Fprintf(out, "  Period: %s\n", summary.PeriodLabel())
		fmt.Fprintf(out, "  Entries: %d\n", summary.EntryCount)
		fmt.Fprintf(out, "  Hours: %s\n", timesheet.FormatHours(summary.TotalHours))
		fmt.Fprintf(out, "  Amount: %s\n", money(summary.TotalAmount))

		if cmd.Flags().Changed("out") {
			path, _ := cmd.Flags().GetString("out")
			return writeDownload(cmd, u.ID, summary.ID, path)
		}
		return nil
	},
}

var timesheetsPreviewCmd = &cobra.Command{
	Use:   "preview [client_id_or_name]",
	Short: "Print a timesheet as CSV without storing it",
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

		req := readPeriodFlags(cmd, client.ID)
		var body []byte
		if req.monthly != nil {
			p, err := appInstance.Timesheets.PreviewMonthly(ctx, u.ID, *req.monthly)
			if err != nil {
				return err
			}
			body = p.CSV
		} else {
			p, err := appInstance.Timesheets.PreviewRange(ctx, u.ID, *req.rng)
			if err != nil {
				return err
			}
			body = p.CSV
		}

		_, err = cmd.OutOrStdout().Write(body)
		return err
	},
}

var timesheetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored timesheets, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		u, err := owner(ctx)
		if err != nil {
			return err
		}

		sheets, err := appInstance.Timesheets.List(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("failed to list timesheets: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(sheets) == 0 {
			fmt.Fprintln(out, "No timesheets found")
			return nil
		}

		fmt.Fprintf(out, "%-5s %-22s %-44s %7s %10s %12s\n", "ID", "Client", "Period", "Entries", "Hours", "Amount")
		fmt.Fprintln(out, strings.Repeat("-", 105))
		for _, s := range sheets {
			name := s.ClientName
			if s.ClientDeleted {
				name += " (deleted)"
			}
			fmt.Fprintf(out, "%-5d %-22s %-44s %7d %10s %12s\n",
				s.ID,
				truncate(name, 22),
				truncate(s.PeriodLabel(), 44),
				s.EntryCount,
				timesheet.FormatHours(s.TotalHours),
				money(s.TotalAmount),
			)
		}
		return nil
	},
}

var timesheetsDownloadCmd = &cobra.Command{
	Use:   "download [id]",
	Short: "Write a stored timesheet's CSV to a file",
	Long: `Write a stored timesheet's CSV. Without -o the file is placed in the
configured export directory under its generated name; -o - writes to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		u, err := owner(ctx)
		if err != nil {
			return err
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return domain.NewValidationError("invalid timesheet ID")
		}

		path, _ := cmd.Flags().GetString("out")
		return writeDownload(cmd, u.ID, id, path)
	},
}

var timesheetsRemoveCmd = &cobra.Command{
	Use:     "rm [id]",
	Aliases: []string{"delete"},
	Short:   "Delete a stored timesheet",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		u, err := owner(ctx)
		if err != nil {
			return err
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return domain.NewValidationError("invalid timesheet ID")
		}

		if err := appInstance.Timesheets.Delete(ctx, u.ID, id); err != nil {
			return fmt.Errorf("failed to delete timesheet: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Timesheet deleted (ID: %d)\n", id)
		return nil
	},
}

// writeDownload writes timesheet id to path, the export directory when
// path is empty, or stdout when path is "-".
func writeDownload(cmd *cobra.Command, ownerID, id int64, path string) error {
	dl, err := appInstance.Timesheets.Download(cmd.Context(), ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to download timesheet: %w", err)
	}

	if path == "-" {
		_, err := cmd.OutOrStdout().Write(dl.Body)
		return err
	}
	if path == "" {
		path = filepath.Join(appInstance.Config.Timesheets.ExportDir, dl.Filename)
	}

	if err := writeFile(path, dl.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s\n", path)
	return nil
}

func writeFile(path string, body []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o644)
}

func init() {
	timesheetsCmd.AddCommand(timesheetsGenerateCmd)
	timesheetsCmd.AddCommand(timesheetsPreviewCmd)
	timesheetsCmd.AddCommand(timesheetsListCmd)
	timesheetsCmd.AddCommand(timesheetsDownloadCmd)
	timesheetsCmd.AddCommand(timesheetsRemoveCmd)

	addPeriodFlags(timesheetsGenerateCmd)
	addPeriodFlags(timesheetsPreviewCmd)

	timesheetsGenerateCmd.Flags().StringP("out", "o", "", "Also write the CSV here (- for stdout)")
	timesheetsDownloadCmd.Flags().StringP("out", "o", "", "Output file (- for stdout)")
}
