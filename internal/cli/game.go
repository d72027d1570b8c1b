package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/blockfall/internal/api/request"
	"github.com/mcoot/blockfall/internal/api/response"
	"github.com/mcoot/blockfall/internal/model"
)

// commandAliases are short spellings accepted by "game send"
var commandAliases = map[string]model.Command{
	"left":  model.CommandMoveLeft,
	"right": model.CommandMoveRight,
	"cw":    model.CommandRotateCW,
	"ccw":   model.CommandRotateCCW,
	"180":   model.CommandRotate180,
	"soft":  model.CommandSoftDrop,
	"hard":  model.CommandHardDrop,
	"drop":  model.CommandHardDrop,
}

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Solo game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGameSendCmd())
	cmd.AddCommand(newGameForfeitCmd())
	cmd.AddCommand(newGameRetryCmd())
	cmd.AddCommand(newGameStrategyCmd())
	cmd.AddCommand(newGameDeleteCmd())
	cmd.AddCommand(newGameBotCmd())

	return cmd
}

// controlToken finds the token for a game or explains how to supply one
func controlToken(gameID string) (string, error) {
	token, err := cfg.TokenFor(gameID)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", fmt.Errorf("no control token for game %s: pass --token or create the game with this CLI", gameID)
	}
	return token, nil
}

func newGameCreateCmd() *cobra.Command {
	var mode string
	var boardFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create and start a solo game",
		Long: `Create and start a solo game. The control token is saved to the token
file so later commands on the game need no --token.

--board restores a saved board (a JSON board snapshot) before the game starts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.CreateGameRequest{Mode: model.GameMode(mode)}
			if !req.Mode.IsValid() {
				return fmt.Errorf("invalid mode %q", mode)
			}

			if boardFile != "" {
				data, err := os.ReadFile(boardFile)
				if err != nil {
					return fmt.Errorf("reading board: %w", err)
				}
				var board model.BoardSnapshot
				if err := json.Unmarshal(data, &board); err != nil {
					return fmt.Errorf("parsing board: %w", err)
				}
				req.Board = &board
			}

			var result response.CreateGameResponse
			if err := client.Post(cmd.Context(), "/api/v1/games", "", req, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.Game.ID, result.ControlToken); err != nil {
				return fmt.Errorf("saving token: %w", err)
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(model.ModeEndless), "Game mode: endless, blitz, lines40")
	cmd.Flags().StringVar(&boardFile, "board", "", "Path to a JSON board snapshot to restore")

	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a game's board and stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Game

			if err := client.Get(cmd.Context(), "/api/v1/games/"+args[0], &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.GameList

			if err := client.Get(cmd.Context(), "/api/v1/games", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

// parseCommands accepts full command names and their short aliases
func parseCommands(args []string) ([]model.Command, error) {
	cmds := make([]model.Command, 0, len(args))
	for _, arg := range args {
		c := model.Command(strings.ToLower(arg))
		if alias, ok := commandAliases[string(c)]; ok {
			c = alias
		}
		if !c.IsValid() {
			return nil, fmt.Errorf("unknown command %q", arg)
		}
		cmds = append(cmds, c)
	}
	return cmds, nil
}

func newGameSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <id> <command>...",
		Short: "Send player commands to a game",
		Long: `Queue player commands on a game, in order.

Commands: move_left, move_right, rotate_cw, rotate_ccw, rotate_180,
soft_drop, hard_drop, hold. Short forms: left, right, cw, ccw, 180, soft,
hard (or drop).`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			cmds, err := parseCommands(args[1:])
			if err != nil {
				return err
			}
			token, err := controlToken(id)
			if err != nil {
				return err
			}

			req := request.CommandRequest{Commands: cmds}
			if err := client.Post(cmd.Context(), "/api/v1/games/"+id+"/commands", token, req, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(fmt.Sprintf("Sent %d command(s)", len(cmds)))
			return nil
		},
	}
}

// newGameActionCmd builds a command that posts to a controlled game endpoint
func newGameActionCmd(use, short, action, message string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			token, err := controlToken(id)
			if err != nil {
				return err
			}

			if err := client.Post(cmd.Context(), "/api/v1/games/"+id+"/"+action, token, nil, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(message)
			return nil
		},
	}
}

func newGameForfeitCmd() *cobra.Command {
	return newGameActionCmd("forfeit", "Forfeit a running game", "forfeit", "Game forfeited")
}

func newGameRetryCmd() *cobra.Command {
	return newGameActionCmd("retry", "Restart a game from an empty board", "retry", "Game restarted")
}

func newGameStrategyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategy <id> <strategy>",
		Short: "Change the garbage strategy of a game",
		Long:  "Change which opponent receives this game's garbage: elimination, even, payback or random.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			strategy := model.Strategy(strings.ToLower(args[1]))
			if !strategy.IsValid() {
				return fmt.Errorf("invalid strategy %q", args[1])
			}
			token, err := controlToken(id)
			if err != nil {
				return err
			}

			req := request.StrategyRequest{Strategy: strategy}
			if err := client.Put(cmd.Context(), "/api/v1/games/"+id+"/strategy", token, req); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Strategy set to " + string(strategy))
			return nil
		},
	}
}

func newGameDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Stop and remove a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			token, err := controlToken(id)
			if err != nil {
				return err
			}

			if err := client.Delete(cmd.Context(), "/api/v1/games/"+id, token); err != nil {
				return err
			}
			if err := cfg.ForgetToken(id); err != nil {
				return fmt.Errorf("updating token file: %w", err)
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Game deleted")
			return nil
		},
	}
}

func newGameBotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Hand a game to an autoplayer",
	}

	var strategy string
	attach := &cobra.Command{
		Use:   "attach <id>",
		Short: "Attach a bot to a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			token, err := controlToken(id)
			if err != nil {
				return err
			}

			var result response.Bot
			req := request.AttachBotRequest{Strategy: strategy}
			if err := client.Post(cmd.Context(), "/api/v1/games/"+id+"/bot", token, req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
	attach.Flags().StringVar(&strategy, "strategy", model.BotStrategyGreedy, "Bot strategy")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show the bot playing a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			token, err := controlToken(id)
			if err != nil {
				return err
			}

			var result response.Bot
			if err := client.Do(cmd.Context(), http.MethodGet, "/api/v1/games/"+id+"/bot", token, nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.AddCommand(attach, get)
	return cmd
}
