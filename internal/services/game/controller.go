package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/ladder/internal/dependencies/clock"
	"github.com/mcoot/ladder/internal/dependencies/random"
	"github.com/mcoot/ladder/internal/model"
	"github.com/mcoot/ladder/internal/services/pool"
	"github.com/mcoot/ladder/internal/storage"
)

// Config holds payout policy settings
type Config struct {
	// AutoCredit pays the fireproof prize when a game is lost
	AutoCredit bool
}

// AnswerResult is the outcome of answering the current question
type AnswerResult struct {
	Correct bool
	Game    *model.Game
}

// Controller runs games for users: creating them, moving them through the
// ladder and settling prizes. Every mutation of one game is serialized, and
// a user creates at most one game at a time.
type Controller struct {
	storage storage.Storage
	pool    *pool.Service
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
	cfg     Config

	gameLocks stripedMutex
	userLocks stripedMutex
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	pool *pool.Service,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
	cfg Config,
) *Controller {
	return &Controller{
		storage: storage,
		pool:    pool,
		clock:   clock,
		random:  random,
		logger:  logger,
		cfg:     cfg,
	}
}

// CreateGameForUser draws a fresh question set and starts a game. A user
// with a game still in progress must finish it first.
func (c *Controller) CreateGameForUser(ctx context.Context, userID model.UserID) (*model.Game, error) {
	unlock := c.userLocks.lock(string(userID))
	defer unlock()

	if _, err := c.storage.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	current, err := c.CurrentGameForUser(ctx, userID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", model.ErrGameInProgress, current.ID)
	case !errors.Is(err, model.ErrGameNotFound):
		return nil, err
	}

	drawn, err := c.pool.DrawSet(ctx, model.Levels())
	if err != nil {
		c.logger.Warn("cannot draw question set",
			slog.String("user_id", string(userID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	questions := make([]model.GameQuestion, len(drawn))
	for i, q := range drawn {
		questions[i] = model.NewGameQuestion(q, model.NewKeyPermutation(c.random))
	}

	gameID := model.GameID(c.random.String(12, random.IDAlphabet))
	game, err := model.NewGame(gameID, userID, questions, c.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.String("user_id", string(userID)),
	)

	return game, nil
}

// GetGame returns one of the user's games, timing it out first if its
// clock has run down
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID, userID model.UserID) (*model.Game, error) {
	unlock := c.gameLocks.lock(string(gameID))
	defer unlock()

	game, err := c.loadOwned(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if _, err := c.expire(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// ListGamesForUser returns the user's games, newest first
func (c *Controller) ListGamesForUser(ctx context.Context, userID model.UserID) ([]*model.Game, error) {
	games, err := c.storage.ListGamesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	for i, g := range games {
		if g.IsFinished() || !g.IsTimeUp(now) {
			continue
		}
		expired, err := c.ExpireIfTimedOut(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		games[i] = expired
	}
	return games, nil
}

// CurrentGameForUser returns the user's in-progress game, or
// ErrGameNotFound if there is none
func (c *Controller) CurrentGameForUser(ctx context.Context, userID model.UserID) (*model.Game, error) {
	games, err := c.ListGamesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, g := range games {
		if !g.IsFinished() {
			return g, nil
		}
	}
	return nil, model.ErrGameNotFound
}

// AnswerCurrentQuestion submits the user's answer. A wrong or late answer
// finishes the game and is reported through the result, not as an error.
func (c *Controller) AnswerCurrentQuestion(ctx context.Context, gameID model.GameID, userID model.UserID, key model.AnswerKey) (*AnswerResult, error) {
	unlock := c.gameLocks.lock(string(gameID))
	defer unlock()

	game, err := c.loadOwned(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}

	level := game.CurrentLevel
	correct, err := game.AnswerCurrentQuestion(key, c.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := c.persist(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("answer submitted",
		slog.String("game_id", string(game.ID)),
		slog.Int("level", level),
		slog.Bool("correct", correct),
		slog.String("status", string(game.Status())),
	)

	return &AnswerResult{Correct: correct, Game: game}, nil
}

// TakeMoney ends the game and banks the prize for the last cleared level
func (c *Controller) TakeMoney(ctx context.Context, gameID model.GameID, userID model.UserID) (*model.Game, error) {
	unlock := c.gameLocks.lock(string(gameID))
	defer unlock()

	game, err := c.loadPlayable(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}

	if _, err := game.TakeMoney(c.clock.Now()); err != nil {
		return nil, err
	}
	if err := c.persist(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// UseHelp applies a hint to the current question. Each hint works once per game.
func (c *Controller) UseHelp(ctx context.Context, gameID model.GameID, userID model.UserID, kind model.HelpKind) (*model.Game, error) {
	unlock := c.gameLocks.lock(string(gameID))
	defer unlock()

	game, err := c.loadPlayable(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}

	if err := game.UseHelp(kind, c.random, c.clock.Now()); err != nil {
		return nil, err
	}
	if err := c.persist(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("help used",
		slog.String("game_id", string(game.ID)),
		slog.String("kind", string(kind)),
		slog.Int("level", game.CurrentLevel),
	)
	return game, nil
}

// ExpireIfTimedOut finishes an in-progress game as timed out once its time
// limit has passed, and returns the game as stored afterwards
func (c *Controller) ExpireIfTimedOut(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	unlock := c.gameLocks.lock(string(gameID))
	defer unlock()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if _, err := c.expire(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// loadOwned fetches a game and checks it belongs to userID
func (c *Controller) loadOwned(ctx context.Context, gameID model.GameID, userID model.UserID) (*model.Game, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.UserID != userID {
		return nil, model.ErrNotGameOwner
	}
	return game, nil
}

// loadPlayable is loadOwned for operations that cannot run out the clock
// themselves: a game past its limit is finished as a timeout and rejected
func (c *Controller) loadPlayable(ctx context.Context, gameID model.GameID, userID model.UserID) (*model.Game, error) {
	game, err := c.loadOwned(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	expired, err := c.expire(ctx, game)
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, fmt.Errorf("%w: time is up", model.ErrInvalidTransition)
	}
	return game, nil
}

// expire times out game if due and persists it. Caller holds the game lock.
func (c *Controller) expire(ctx context.Context, game *model.Game) (bool, error) {
	if !game.TimeOut(c.clock.Now()) {
		return false, nil
	}
	if err := c.persist(ctx, game); err != nil {
		return false, err
	}
	return true, nil
}

// persist saves an in-progress game, or settles a finished one by saving
// it and crediting its prize in the same commit
func (c *Controller) persist(ctx context.Context, game *model.Game) error {
	if !game.IsFinished() {
		if err := c.storage.SaveGame(ctx, game); err != nil {
			c.logger.Error("failed to save game",
				slog.String("game_id", string(game.ID)),
				slog.String("error", err.Error()),
			)
			return err
		}
		return nil
	}

	if game.IsFailed && c.cfg.AutoCredit {
		game.Prize = model.FireproofPrizeFor(game.CurrentLevel)
	}

	if err := c.storage.SettleGame(ctx, game, game.Prize); err != nil {
		c.logger.Error("failed to settle game",
			slog.String("game_id", string(game.ID)),
			slog.Int("prize", game.Prize),
			slog.String("error", err.Error()),
		)
		return err
	}

	c.logger.Info("game finished",
		slog.String("game_id", string(game.ID)),
		slog.String("user_id", string(game.UserID)),
		slog.String("status", string(game.Status())),
		slog.Int("level", game.CurrentLevel),
		slog.Int("prize", game.Prize),
	)
	return nil
}

// ControllerInterface for dependency injection
type ControllerInterface interface {
	CreateGameForUser(ctx context.Context, userID model.UserID) (*model.Game, error)
	GetGame(ctx context.Context, gameID model.GameID, userID model.UserID) (*model.Game, error)
	ListGamesForUser(ctx context.Context, userID model.UserID) ([]*model.Game, error)
	CurrentGameForUser(ctx context.Context, userID model.UserID) (*model.Game, error)
	AnswerCurrentQuestion(ctx context.Context, gameID model.GameID, userID model.UserID, key model.AnswerKey) (*AnswerResult, error)
	TakeMoney(ctx context.Context, gameID model.GameID, userID model.UserID) (*model.Game, error)
	UseHelp(ctx context.Context, gameID model.GameID, userID model.UserID, kind model.HelpKind) (*model.Game, error)
	ExpireIfTimedOut(ctx context.Context, gameID model.GameID) (*model.Game, error)
}

var _ ControllerInterface = (*Controller)(nil)
