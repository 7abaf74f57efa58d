package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session commands",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionJoinCmd())
	cmd.AddCommand(newSessionStartCmd())
	cmd.AddCommand(newSessionLeaveCmd())

	return cmd
}

func newSessionCreateCmd() *cobra.Command {
	var roundLimit, handSize, skipRounds int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new session and host it",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]int{
				"round_limit":       roundLimit,
				"initial_hand_size": handSize,
				"skip_rounds":       skipRounds,
			}
			var result PlayerView

			if err := client.Post("/api/v1/sessions", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&roundLimit, "round-limit", 0, "Rounds to play (0 = server default)")
	cmd.Flags().IntVar(&handSize, "hand-size", 0, "Initial hand size (0 = by player count)")
	cmd.Flags().IntVar(&skipRounds, "skip-rounds", 0, "Rounds to record as already played")

	return cmd
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <session-id>",
		Short: "Get your view of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerView

			if err := client.Get(fmt.Sprintf("/api/v1/sessions/%s", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionJoinCmd() *cobra.Command {
	return sessionActionCmd("join", "Join a session before it starts")
}

func newSessionStartCmd() *cobra.Command {
	return sessionActionCmd("start", "Start the session (host only)")
}

func newSessionLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <session-id>",
		Short: "Leave a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post(fmt.Sprintf("/api/v1/sessions/%s/leave", args[0]), nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Left session")
			return nil
		},
	}
}

// sessionActionCmd builds a command that posts to a session endpoint and
// prints the returned view
func sessionActionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <session-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerView

			if err := client.Post(fmt.Sprintf("/api/v1/sessions/%s/%s", args[0], action), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List finished games, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RecordList

			if err := client.Get("/api/v1/records", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <session-id>",
		Short: "Show one finished game round by round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Record

			if err := client.Get(fmt.Sprintf("/api/v1/records/%s", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	})
	return cmd
}
