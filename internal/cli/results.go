package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/blockfall/internal/api/response"
	"github.com/mcoot/blockfall/internal/model"
)

func newResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Finished game results",
	}

	cmd.AddCommand(newResultsListCmd())
	cmd.AddCommand(newResultsGetCmd())

	return cmd
}

func newResultsListCmd() *cobra.Command {
	var mode string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the leaderboard for a mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !model.GameMode(mode).IsValid() {
				return fmt.Errorf("invalid mode %q", mode)
			}

			q := url.Values{}
			q.Set("mode", mode)
			q.Set("limit", strconv.Itoa(limit))

			var result response.ResultList
			if err := client.Get(cmd.Context(), "/api/v1/results?"+q.Encode(), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(model.ModeEndless), "Game mode: endless, blitz, lines40")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of results to show (1-100)")

	return cmd
}

func newResultsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a finished game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Result

			if err := client.Get(cmd.Context(), "/api/v1/results/"+args[0], &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
