package storage

import (
	"context"

	"github.com/mcoot/ladder/internal/model"
)

// Storage defines the interface for data persistence.
//
// Every method that writes a game persists the whole aggregate (game row,
// its fifteen questions, key permutations and hint payloads) in one commit.
// Readers never observe a partially written game.
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	// CreditUser atomically adds amount to the user's balance
	CreditUser(ctx context.Context, id model.UserID, amount int) error
	// ListUsersByBalance returns up to limit users, richest first
	ListUsersByBalance(ctx context.Context, limit int) ([]*model.User, error)

	// Question pool operations
	SaveQuestions(ctx context.Context, questions []model.Question) error
	QuestionsForLevel(ctx context.Context, level int) ([]model.Question, error)
	QuestionCount(ctx context.Context) (int, error)

	// Game operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	// ListGamesForUser returns the user's games, newest first
	ListGamesForUser(ctx context.Context, userID model.UserID) ([]*model.Game, error)
	// SettleGame saves a finished game and credits amount to its owner in
	// a single commit. A zero amount only saves the game.
	SettleGame(ctx context.Context, game *model.Game, amount int) error
}
