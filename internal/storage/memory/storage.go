package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/mcoot/ladder/internal/model"
	"github.com/mcoot/ladder/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Values are copied on the way in and out so callers never share state with
// the store.
type Storage struct {
	mu sync.RWMutex

	users        map[model.UserID]*model.User
	questions    map[model.QuestionID]model.Question
	levelIndex   map[int][]model.QuestionID
	games        map[model.GameID]*model.Game
	gamesForUser map[model.UserID][]model.GameID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:        make(map[model.UserID]*model.User),
		questions:    make(map[model.QuestionID]model.Question),
		levelIndex:   make(map[int][]model.QuestionID),
		games:        make(map[model.GameID]*model.Game),
		gamesForUser: make(map[model.UserID][]model.GameID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.users[user.ID] = &u
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) CreditUser(ctx context.Context, id model.UserID, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creditLocked(id, amount)
}

func (s *Storage) ListUsersByBalance(ctx context.Context, limit int) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0, len(s.users))
	for _, user := range s.users {
		u := *user
		users = append(users, &u)
	}
	slices.SortFunc(users, func(a, b *model.User) int {
		if c := cmp.Compare(b.Balance, a.Balance); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// Question pool operations

func (s *Storage) SaveQuestions(ctx context.Context, questions []model.Question) error {
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range questions {
		if old, ok := s.questions[q.ID]; ok {
			s.levelIndex[old.Level] = slices.DeleteFunc(s.levelIndex[old.Level], func(id model.QuestionID) bool {
				return id == q.ID
			})
		}
		s.questions[q.ID] = q
		s.levelIndex[q.Level] = append(s.levelIndex[q.Level], q.ID)
	}
	return nil
}

func (s *Storage) QuestionsForLevel(ctx context.Context, level int) ([]model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.levelIndex[level]
	questions := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		questions = append(questions, s.questions[id])
	}
	slices.SortFunc(questions, func(a, b model.Question) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return questions, nil
}

func (s *Storage) QuestionCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions), nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveGameLocked(game)
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (s *Storage) ListGamesForUser(ctx context.Context, userID model.UserID) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.gamesForUser[userID]
	games := make([]*model.Game, 0, len(ids))
	for _, id := range ids {
		games = append(games, s.games[id].Clone())
	}
	slices.SortFunc(games, func(a, b *model.Game) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return games, nil
}

func (s *Storage) SettleGame(ctx context.Context, game *model.Game, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount != 0 {
		if err := s.creditLocked(game.UserID, amount); err != nil {
			return err
		}
	}
	s.saveGameLocked(game)
	return nil
}

func (s *Storage) creditLocked(id model.UserID, amount int) error {
	user, ok := s.users[id]
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrUserNotFound, id)
	}
	user.Balance += amount
	return nil
}

func (s *Storage) saveGameLocked(game *model.Game) {
	if _, exists := s.games[game.ID]; !exists {
		s.gamesForUser[game.UserID] = append(s.gamesForUser[game.UserID], game.ID)
	}
	s.games[game.ID] = game.Clone()
}
