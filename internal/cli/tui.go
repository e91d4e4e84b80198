package cli

import (
	"github.com/spf13/cobra"

	"github.com/andy/tallysheet/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the terminal UI",
	Long:  `Launch the interactive terminal user interface for tallysheet.`,
	Args:  cobra.NoArgs,
	RunE:  launchTUI,
}

func launchTUI(cmd *cobra.Command, args []string) error {
	u, err := owner(cmd.Context())
	if err != nil {
		return err
	}
	return tui.Run(appInstance, u)
}
