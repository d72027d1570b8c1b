package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/blockfall/internal/api/request"
	"github.com/mcoot/blockfall/internal/api/response"
	"github.com/mcoot/blockfall/internal/model"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Multiplayer room commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomStartCmd())
	cmd.AddCommand(newRoomStrategyCmd())

	return cmd
}

func roomPath(code string, parts ...string) string {
	return "/api/v1/rooms/" + strings.Join(append([]string{strings.ToUpper(code)}, parts...), "/")
}

func newRoomCreateCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new room",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.CreateRoomRequest{Mode: model.GameMode(mode)}
			if !req.Mode.IsValid() {
				return fmt.Errorf("invalid mode %q", mode)
			}

			var result response.Room
			if err := client.Post(cmd.Context(), "/api/v1/rooms", "", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(model.ModeEndless), "Game mode for every seat: endless, blitz, lines40")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Show a room's members and state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Room

			if err := client.Get(cmd.Context(), roomPath(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRoomJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code> <display-name>",
		Short: "Take a seat in a waiting room",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.JoinRoomRequest{DisplayName: args[1]}
			var result response.RoomMember

			if err := client.Post(cmd.Context(), roomPath(args[0], "join"), "", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRoomStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <code>",
		Short: "Start every seat's game",
		Long: `Start the room. Each seat gets its own game, and the control tokens of
all of them are saved to the token file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.StartRoomResponse

			if err := client.Post(cmd.Context(), roomPath(args[0], "start"), "", nil, &result); err != nil {
				return err
			}

			for _, m := range result.Room.Members {
				token, ok := result.ControlTokens[m.PlayerID]
				if !ok || m.GameID == "" {
					continue
				}
				if err := cfg.SaveToken(m.GameID, token); err != nil {
					return fmt.Errorf("saving token: %w", err)
				}
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRoomStrategyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategy <code> <player-id> <strategy>",
		Short: "Change a seat's garbage strategy",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, playerID := args[0], args[1]
			strategy := model.Strategy(strings.ToLower(args[2]))
			if !strategy.IsValid() {
				return fmt.Errorf("invalid strategy %q", args[2])
			}
			pid, err := model.ParsePlayerID(playerID)
			if err != nil {
				return fmt.Errorf("invalid player id %q", playerID)
			}

			// Playing seats need their game's control token
			var room response.Room
			if err := client.Get(cmd.Context(), roomPath(code), &room); err != nil {
				return err
			}
			var token string
			for _, m := range room.Members {
				if m.PlayerID != pid.String() || m.GameID == "" {
					continue
				}
				if token, err = controlToken(m.GameID); err != nil {
					return err
				}
			}

			req := request.StrategyRequest{Strategy: strategy}
			if err := client.Put(cmd.Context(), roomPath(code, "players", pid.String(), "strategy"), token, req); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(fmt.Sprintf("Strategy for %s set to %s", pid, strategy))
			return nil
		},
	}
}
