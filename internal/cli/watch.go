package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os/signal"
	"strings"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/mcoot/tabletop-companion/internal/api/events"
	"github.com/mcoot/tabletop-companion/internal/api/response"
)

// annotationRemote marks commands that talk to a server instead of opening
// local storage
const annotationRemote = "remote"

// StreamEvent is one event received from a session stream
type StreamEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func newSessionWatchCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "watch <session-id>",
		Short: "Follow a session on a running server",
		Long: `Connect to a companion server and print the session every time it changes.

Events:
  - session: the session's state, sent on connect and after every change
  - ended: the session was completed (data is the winner, if any)
  - deleted: the session was removed; the stream then closes

Press Ctrl+C to disconnect.`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationRemote: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watchSession(ctx, cmd, server, args[0])
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Server URL (default: http://localhost plus COMPANION_HTTP_ADDR)")

	return cmd
}

func serverURL(flag string) string {
	if flag != "" {
		return strings.TrimSuffix(flag, "/")
	}
	addr := cfg.HTTPAddr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func watchSession(ctx context.Context, cmd *cobra.Command, server, sessionID string) error {
	streamURL := serverURL(server) + "/api/v1/sessions/" + url.PathEscape(sessionID) + "/events"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// No timeout: the stream stays open until the session goes away
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	out := output(cmd)
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var event string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if event != "" {
				printStreamEvent(out, StreamEvent{Time: time.Now(), Event: event, Data: strings.Join(dataLines, "\n")})
				if event == events.EventDeleted {
					return nil
				}
			}
			event = ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}
	return nil
}

func printStreamEvent(out *Output, e StreamEvent) {
	if out.format == "json" {
		data, _ := json.Marshal(e)
		fmt.Fprintln(out.w, string(data))
		return
	}

	switch e.Event {
	case events.EventSession:
		var s response.Session
		if err := json.Unmarshal([]byte(e.Data), &s); err != nil {
			out.PrintError(fmt.Errorf("bad session event: %w", err))
			return
		}
		fmt.Fprintf(out.w, "[%s]\n", e.Time.Format(time.DateTime))
		out.Print(s)
	case events.EventEnded:
		if e.Data == "" {
			out.PrintMessage("Session ended")
		} else {
			out.PrintMessage("Session ended, winner " + e.Data)
		}
	case events.EventDeleted:
		out.PrintMessage("Session deleted")
	default:
		fmt.Fprintf(out.w, "[%s] %s: %s\n", e.Time.Format(time.DateTime), e.Event, e.Data)
	}
}
