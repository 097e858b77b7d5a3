package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/ladder/internal/api/response"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player commands",
	}

	cmd.AddCommand(newPlayerNewCmd())
	cmd.AddCommand(newPlayerMeCmd())
	cmd.AddCommand(newPlayerLogoutCmd())

	return cmd
}

func newPlayerNewCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a player and save its session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"display_name": name}
			var result response.AuthResponse

			if err := client.Post("/api/v1/players", req, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPlayerMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show current player info",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Player

			if err := client.Get("/api/v1/players/me", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newPlayerLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token != "" {
				if err := client.Post("/api/v1/players/logout", nil, nil); err != nil {
					return err
				}
			}
			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			if cfg.Output == "text" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			}
			return nil
		},
	}
}

func newLeaderboardCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show players ranked by winnings",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/leaderboard"
			if limit > 0 {
				path += "?limit=" + strconv.Itoa(limit)
			}

			var result response.LeaderboardResponse
			if err := client.Get(path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Number of players to show (default 10)")

	return cmd
}
