package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player identity commands",
	}

	cmd.AddCommand(newPlayerUseCmd())
	cmd.AddCommand(newPlayerShowCmd())

	return cmd
}

func newPlayerUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <player-id>",
		Short: "Remember the player id sent with every request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.SavePlayer(args[0]); err != nil {
				return fmt.Errorf("failed to save player: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Playing as " + args[0])
			return nil
		},
	}
}

func newPlayerShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current player id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.PlayerID == "" {
				return fmt.Errorf("no player set: use --player or 'trainctl player use <id>'")
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(cfg.PlayerID)
			return nil
		},
	}
}
