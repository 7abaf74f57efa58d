package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "In-game requests",
	}

	cmd.AddCommand(sessionActionCmd("draw", "Draw from the bone pile"))
	cmd.AddCommand(newPlayDominoCmd("select", "Select a domino: one in hand, the engine, a track end, or your last play to take it back"))
	cmd.AddCommand(sessionActionCmd("end-turn", "End your turn"))
	cmd.AddCommand(newPlayDominoCmd("undo", "Take back the domino you played last"))
	cmd.AddCommand(sessionActionCmd("ready", "Signal you are ready for the next round"))

	return cmd
}

func newPlayDominoCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <session-id> <domino-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dominoID, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid domino id: %w", err)
			}
			if dominoID < 0 {
				return fmt.Errorf("domino id must not be negative")
			}

			req := map[string]int{"domino_id": dominoID}
			var result PlayerView

			if err := client.Post(fmt.Sprintf("/api/v1/sessions/%s/%s", args[0], action), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
