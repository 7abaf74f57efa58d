package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/dominotrain/internal/model"
	"github.com/mcoot/dominotrain/internal/protocol"
)

func newWatchCmd() *cobra.Command {
	var jsonOutput, useSSE, interactive bool

	cmd := &cobra.Command{
		Use:   "watch <session-id>",
		Short: "Stream pushes from a session",
		Long: `Connect to the session's websocket and print pushes in real-time.

Pushes include station_updated, turn_changed, hand_updated,
selection_changed, move_applied, move_undone, round_ended and game_ended.

With --interactive, lines typed on stdin are sent as requests:
  draw | select <id> | undo <id> | end_turn | ready

With --sse the receive-only SSE stream is used instead.

Press Ctrl+C to disconnect. Closing your last connection leaves the session.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			if useSSE {
				return streamSSE(ctx, args[0], jsonOutput)
			}
			return streamWS(ctx, args[0], jsonOutput, interactive)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output pushes as JSON lines")
	cmd.Flags().BoolVar(&useSSE, "sse", false, "Use the SSE stream instead of the websocket")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Send requests typed on stdin")

	return cmd
}

// PushEvent is one received push, as printed
type PushEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func streamURL(scheme, sessionID, channel string) string {
	base := strings.TrimSuffix(cfg.ServerURL, "/")
	if scheme == "ws" {
		base = "ws" + strings.TrimPrefix(base, "http")
	}
	return base + "/api/v1/sessions/" + sessionID + "/" + channel
}

func streamWS(ctx context.Context, sessionID string, jsonOutput, interactive bool) error {
	header := http.Header{}
	header.Set(playerHeader, cfg.PlayerID)

	conn, resp, err := websocket.Dial(ctx, streamURL("ws", sessionID, "ws"), &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection failed: HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer conn.CloseNow()

	if !jsonOutput {
		fmt.Printf("Connected to session %s\n", sessionID)
	}

	if interactive {
		go sendRequests(ctx, conn, os.Stdin)
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				if !jsonOutput {
					fmt.Println("\nDisconnected")
				}
				_ = conn.Close(websocket.StatusNormalClosure, "")
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			printEvent("unparseable", string(data), jsonOutput)
			continue
		}
		printEvent(string(env.Type), string(env.Payload), jsonOutput)
	}
}

// sendRequests turns stdin lines into request envelopes
func sendRequests(ctx context.Context, conn *websocket.Conn, in io.Reader) {
	scanner := bufio.NewScanner(in)
	seq := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		seq++
		env, err := parseRequest(line, strconv.Itoa(seq))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			continue
		}
		data, err := json.Marshal(env)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			continue
		}
		if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
			return
		}
	}
}

// parseRequest reads "draw", "select 5", "undo 5", "end_turn" or "ready"
func parseRequest(line, requestID string) (*protocol.Envelope, error) {
	fields := strings.Fields(line)
	var msgType protocol.MessageType
	switch fields[0] {
	case "draw":
		msgType = protocol.TypeDraw
	case "select", "select_domino":
		msgType = protocol.TypeSelectDomino
	case "undo":
		msgType = protocol.TypeUndo
	case "end", "end_turn", "end-turn":
		msgType = protocol.TypeEndTurn
	case "ready", "ready_for_next_round":
		msgType = protocol.TypeReadyForNextRound
	default:
		return nil, fmt.Errorf("unknown request %q", fields[0])
	}

	if msgType != protocol.TypeSelectDomino && msgType != protocol.TypeUndo {
		return protocol.NewRequest(msgType, requestID, nil)
	}
	if len(fields) != 2 {
		return nil, fmt.Errorf("%s needs a domino id", fields[0])
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 0 {
		return nil, errors.New("invalid domino id")
	}
	id := model.DominoID(n)
	return protocol.NewRequest(msgType, requestID, &id)
}

func streamSSE(ctx context.Context, sessionID string, jsonOutput bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL("http", sessionID, "events"), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set(playerHeader, cfg.PlayerID)

	httpClient := &http.Client{
		Timeout: 0, // No timeout for SSE
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if !jsonOutput {
		fmt.Printf("Connected to session %s\n", sessionID)
	}

	// Parse SSE stream
	scanner := bufio.NewScanner(resp.Body)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "event: ") {
			currentEvent = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		} else if line == "" {
			// End of event
			if currentEvent != "" {
				printEvent(currentEvent, strings.Join(dataLines, "\n"), jsonOutput)
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Println("Disconnected")
	}
	return nil
}

func printEvent(event, data string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		evt := PushEvent{
			Time:  now,
			Event: event,
			Data:  data,
		}
		jsonData, _ := json.Marshal(evt)
		fmt.Println(string(jsonData))
	} else {
		timestamp := now.Format("2006-01-02 15:04:05")
		// Truncate data if it's too long for display
		displayData := data
		if len(displayData) > 120 {
			displayData = displayData[:120] + "..."
		}
		// Remove newlines for cleaner display
		displayData = strings.ReplaceAll(displayData, "\n", " ")
		fmt.Printf("[%s] %s: %s\n", timestamp, event, displayData)
	}
}
