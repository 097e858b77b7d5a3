package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/ladder/internal/api/response"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameNewCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGameAnswerCmd())
	cmd.AddCommand(newGameTakeMoneyCmd())
	cmd.AddCommand(newGameHelpCmd())

	return cmd
}

func newGameNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a new game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.GameState

			if err := client.Post("/api/v1/games", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show a game (defaults to the game in progress)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/games/current"
			if len(args) == 1 {
				path = "/api/v1/games/" + args[0]
			}

			var result response.GameState
			if err := client.Get(path, &result); err != nil {
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
		Short: "List your games, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.GameListResponse

			if err := client.Get("/api/v1/games", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameAnswerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "answer <id> <a|b|c|d>",
		Short: "Answer the current question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"key": args[1]}
			var result response.AnswerResponse

			if err := client.Post(fmt.Sprintf("/api/v1/games/%s/answer", args[0]), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameTakeMoneyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "take-money <id>",
		Short: "Stop and keep the prize for the last cleared level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.GameState

			if err := client.Post(fmt.Sprintf("/api/v1/games/%s/take-money", args[0]), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameHelpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "help <id> <fifty_fifty|audience_help|friend_call>",
		Short: "Use a hint on the current question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"type": args[1]}
			var result response.GameState

			if err := client.Post(fmt.Sprintf("/api/v1/games/%s/help", args[0]), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
