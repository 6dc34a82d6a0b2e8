package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/tabletop-companion/internal/api/response"
	"github.com/mcoot/tabletop-companion/internal/model"
	"github.com/mcoot/tabletop-companion/internal/services/profile"
	"github.com/mcoot/tabletop-companion/internal/services/session"
)

var errNoCurrentSession = errors.New("no session in progress: start one or pick one with 'session use'")

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Play session commands",
	}

	cmd.AddCommand(newSessionStartCmd())
	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionShowCmd())
	cmd.AddCommand(newSessionUseCmd())
	cmd.AddCommand(newSessionLeaveCmd())
	cmd.AddCommand(newSessionDeleteCmd())
	cmd.AddCommand(newSessionUpdateCmd())
	cmd.AddCommand(newSessionWatchCmd())

	// Current session operations
	cmd.AddCommand(newStepCmd("next-player", "Pass play to the next player", (*session.Engine).NextPlayer))
	cmd.AddCommand(newStepCmd("next-turn", "Advance the turn and pass play on", (*session.Engine).NextTurn))
	cmd.AddCommand(newStepCmd("advance-turn", "Advance the turn number only", (*session.Engine).AdvanceTurn))
	cmd.AddCommand(newStepCmd("previous-turn", "Step the turn number back", (*session.Engine).PreviousTurn))
	cmd.AddCommand(newStepCmd("next-round", "Advance the round number", (*session.Engine).AdvanceRound))
	cmd.AddCommand(newStepCmd("next-phase", "Move to the game's next phase", (*session.Engine).NextPhase))
	cmd.AddCommand(newStepCmd("previous-phase", "Move to the game's previous phase", (*session.Engine).PreviousPhase))
	cmd.AddCommand(newSessionPlayerCmd())
	cmd.AddCommand(newSessionScoreCmd())
	cmd.AddCommand(newSessionUndoCmd())
	cmd.AddCommand(newSessionResourceCmd())
	cmd.AddCommand(newSessionPhaseCmd())
	cmd.AddCommand(newSessionNotesCmd())
	cmd.AddCommand(newSessionEndCmd())

	return cmd
}

func sessionView(s *model.GameSession) response.Session {
	var name string
	if game, err := app.Catalog.Get(s.GameID); err == nil {
		name = game.Name
	}
	return response.SessionFromModel(s, name)
}

// printCurrent shows the current session after an operation
func printCurrent(cmd *cobra.Command) error {
	s := app.Engine.Current()
	if s == nil {
		return errNoCurrentSession
	}
	output(cmd).Print(sessionView(s))
	return nil
}

// parsePlayers reads --player values. "Name" or "Name:colour" seats a
// guest; "@profile-id" seats a profile with its name and colour.
func parsePlayers(ctx context.Context, specs []string) ([]model.Player, error) {
	players := make([]model.Player, len(specs))
	for i, spec := range specs {
		if id, ok := strings.CutPrefix(spec, "@"); ok {
			p, err := app.Profiles.Get(ctx, model.ProfileID(id))
			if err != nil {
				return nil, fmt.Errorf("player %d: %w", i+1, err)
			}
			players[i] = profile.PlayerFromProfile(p)
			continue
		}
		name, color, _ := strings.Cut(spec, ":")
		players[i] = model.Player{Name: name, Color: color}
	}
	return players, nil
}

func newSessionStartCmd() *cobra.Command {
	var specs []string

	cmd := &cobra.Command{
		Use:   "start <game-id>",
		Short: "Start a session and make it current",
		Example: `  companion session start splendor --player Alice --player Bob:teal
  companion session start wingspan --player @profile-3k2j9x0q1a7m`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			players, err := parsePlayers(cmd.Context(), specs)
			if err != nil {
				return err
			}
			s, err := app.Engine.CreateSession(cmd.Context(), model.GameID(args[0]), players)
			if err != nil {
				return err
			}
			output(cmd).Print(sessionView(s))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&specs, "player", "p", nil, "Player as Name, Name:colour or @profile-id (repeatable)")
	_ = cmd.MarkFlagRequired("player")

	return cmd
}

func newSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved sessions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := app.Engine.Summaries(cmd.Context())
			if err != nil {
				return err
			}
			output(cmd).Print(summaries)
			return nil
		},
	}
}

func newSessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [session-id]",
		Short: "Show a saved session, or the current one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return printCurrent(cmd)
			}
			s, err := app.Engine.GetSession(cmd.Context(), model.SessionID(args[0]))
			if err != nil {
				return err
			}
			output(cmd).Print(sessionView(s))
			return nil
		},
	}
}

func newSessionUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <session-id>",
		Short: "Make a saved session current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Engine.SetCurrentSession(cmd.Context(), model.SessionID(args[0])); err != nil {
				return err
			}
			return printCurrent(cmd)
		},
	}
}

func newSessionLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Stop playing the current session without ending it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Engine.ClearCurrentSession(cmd.Context()); err != nil {
				return err
			}
			output(cmd).PrintMessage("No session is current")
			return nil
		},
	}
}

func newSessionDeleteCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "delete [session-id]",
		Short: "Delete a saved session, or all of them with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case all && len(args) == 0:
				if err := app.Engine.DeleteAllSessions(cmd.Context()); err != nil {
					return err
				}
				output(cmd).PrintMessage("All sessions deleted")
			case !all && len(args) == 1:
				if err := app.Engine.DeleteSession(cmd.Context(), model.SessionID(args[0])); err != nil {
					return err
				}
				output(cmd).PrintMessage("Session deleted")
			default:
				return fmt.Errorf("pass a session id or --all")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Delete every saved session")

	return cmd
}

func newSessionUpdateCmd() *cobra.Command {
	var (
		turn, round, seat int
		phase, notes      string
	)

	cmd := &cobra.Command{
		Use:   "update <session-id>",
		Short: "Correct the turn tracking or notes of a saved session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update model.SessionUpdate
			flags := cmd.Flags()
			if flags.Changed("turn") {
				update.TurnNumber = &turn
			}
			if flags.Changed("round") {
				update.RoundNumber = &round
			}
			if flags.Changed("seat") {
				update.CurrentPlayerIndex = &seat
			}
			if flags.Changed("phase") {
				update.CurrentPhase = &phase
			}
			if flags.Changed("notes") {
				update.Notes = &notes
			}
			if update.IsEmpty() {
				return fmt.Errorf("nothing to update: pass --turn, --round, --seat, --phase or --notes")
			}

			s, err := app.Engine.UpdateSession(cmd.Context(), model.SessionID(args[0]), update)
			if err != nil {
				return err
			}
			output(cmd).Print(sessionView(s))
			return nil
		},
	}

	cmd.Flags().IntVar(&turn, "turn", 0, "Turn number")
	cmd.Flags().IntVar(&round, "round", 0, "Round number")
	cmd.Flags().IntVar(&seat, "seat", 0, "Seat of the player whose turn it is")
	cmd.Flags().StringVar(&phase, "phase", "", "Current phase id")
	cmd.Flags().StringVar(&notes, "notes", "", "Session notes")

	return cmd
}

func newStepCmd(use, short string, op func(*session.Engine, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := op(app.Engine, cmd.Context()); err != nil {
				return err
			}
			return printCurrent(cmd)
		},
	}
}

func newSessionPlayerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "player <seat>",
		Short: "Jump to the player at a seat (0-based)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("seat must be a number: %w", err)
			}
			if err := app.Engine.SetCurrentPlayer(cmd.Context(), index); err != nil {
				return err
			}
			return printCurrent(cmd)
		},
	}
}

func newSessionScoreCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "score <player-id> <points>",
		Short: "Record points for a player (negative to deduct)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("points must be a number: %w", err)
			}
			if err := app.Engine.UpdatePlayerScore(cmd.Context(), model.PlayerID(args[0]), category, points); err != nil {
				return err
			}
			return printCurrent(cmd)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Scoring category")

	return cmd
}

func newSessionUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo <player-id> <entry>",
		Short: "Remove an entry from a player's score log (0-based)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("entry must be a number: %w", err)
			}
			if err := app.Engine.UndoPlayerScore(cmd.Context(), model.PlayerID(args[0]), index); err != nil {
				return err
			}
			return printCurrent(cmd)
		},
	}
}

func newSessionResourceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resource <player-id> <resource-id> <value>",
		Short: "Set a player's resource counter",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("value must be a number: %w", err)
			}
			if err := app.Engine.UpdatePlayerResource(cmd.Context(), model.PlayerID(args[0]), args[1], value); err != nil {
				return err
			}
			return printCurrent(cmd)
		},
	}
}

func newSessionPhaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "phase <phase-id>",
		Short: "Set the current phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Engine.SetPhase(cmd.Context(), args[0]); err != nil {
				return err
			}
			return printCurrent(cmd)
		},
	}
}

func newSessionNotesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notes <text>",
		Short: "Replace the session notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Engine.SetNotes(cmd.Context(), args[0]); err != nil {
				return err
			}
			return printCurrent(cmd)
		},
	}
}

func newSessionEndCmd() *cobra.Command {
	var winner string

	cmd := &cobra.Command{
		Use:   "end",
		Short: "End the current session and update linked profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Engine.EndSession(cmd.Context(), model.PlayerID(winner)); err != nil {
				return err
			}
			return printCurrent(cmd)
		},
	}

	cmd.Flags().StringVarP(&winner, "winner", "w", "", "Winning player id")

	return cmd
}
