package player

import (
	"context"

	"github.com/mcoot/ladder/internal/model"
	"github.com/mcoot/ladder/internal/storage"
)

// Leaderboard page sizes
const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 100
)

// Standing is a user's place on the leaderboard
type Standing struct {
	Rank int // 1-based
	User *model.User
}

// Service reads users and ranks them by balance
type Service struct {
	storage storage.Storage
}

// New creates a new player Service
func New(storage storage.Storage) *Service {
	return &Service{storage: storage}
}

// Get returns a user by ID
func (s *Service) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.storage.GetUser(ctx, id)
}

// Leaderboard returns the richest users, richest first. A non-positive
// limit gives the default size; limits are capped at MaxLeaderboardSize.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]Standing, error) {
	switch {
	case limit <= 0:
		limit = DefaultLeaderboardSize
	case limit > MaxLeaderboardSize:
		limit = MaxLeaderboardSize
	}

	users, err := s.storage.ListUsersByBalance(ctx, limit)
	if err != nil {
		return nil, err
	}

	standings := make([]Standing, len(users))
	for i, u := range users {
		standings[i] = Standing{Rank: i + 1, User: u}
	}
	return standings, nil
}
