package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/andy/tallysheet/internal/app"
	"github.com/andy/tallysheet/internal/domain"
)

var (
	appInstance *app.App
	asOwner     string
)

var rootCmd = &cobra.Command{
	Use:   "tallysheet",
	Short: "Time tracking and timesheet generation for freelancers",
	Long: `Tallysheet tracks time per client and turns it into CSV timesheets
for any date range or calendar month.

By default, running tallysheet without arguments launches the interactive TUI.
Use subcommands for CLI operations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          launchTUI,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to every subcommand
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return 2
	case domain.KindNotFound:
		return 3
	case domain.KindConflict:
		return 4
	case domain.KindNoEntries:
		return 5
	case domain.KindLimitReached:
		return 6
	}
	return 1
}

// owner resolves the user the command acts for.
func owner(ctx context.Context) (*domain.User, error) {
	if appInstance == nil {
		return nil, errors.New("app not initialized")
	}
	return appInstance.Owner(ctx, asOwner)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&asOwner, "as", "", "Act as this user (email); defaults to owner.email from the config")

	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(entriesCmd)
	rootCmd.AddCommand(timerCmd)
	rootCmd.AddCommand(timesheetsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(tuiCmd)
}
