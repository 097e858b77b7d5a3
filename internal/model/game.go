package model

import (
	"fmt"
	"time"

	"github.com/mcoot/ladder/internal/dependencies/random"
)

// GameID uniquely identifies a game
type GameID string

// GameStatus is derived from a game's fields and never stored
type GameStatus string

const (
	StatusInProgress GameStatus = "in_progress"
	StatusWon        GameStatus = "won"     // Cleared every level
	StatusFail       GameStatus = "fail"    // Wrong answer
	StatusTimeout    GameStatus = "timeout" // Ran out of time
	StatusMoney      GameStatus = "money"   // Cashed out
)

// IsTerminal returns true for every status except in_progress
func (s GameStatus) IsTerminal() bool {
	return s != StatusInProgress
}

// Game is one player's climb up the prize ladder
type Game struct {
	ID     GameID
	UserID UserID

	// One question per level, Questions[i].Level() == i
	Questions []GameQuestion

	CurrentLevel int        // Number of correctly answered questions
	IsFailed     bool       // Set by a wrong or timed-out answer
	FinishedAt   *time.Time // nil while in progress
	Prize        int        // Set when the game is finished

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewGame creates an in-progress game from a full, level-ordered question set
func NewGame(id GameID, userID UserID, questions []GameQuestion, now time.Time) (*Game, error) {
	if len(questions) != LevelCount {
		return nil, fmt.Errorf("%w: got %d questions, need %d", ErrInsufficientQuestions, len(questions), LevelCount)
	}
	for i := range questions {
		if questions[i].Level() != i {
			return nil, fmt.Errorf("%w: position %d holds level %d", ErrQuestionOrder, i, questions[i].Level())
		}
	}

	return &Game{
		ID:        id,
		UserID:    userID,
		Questions: questions,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Status derives the game status from its fields
func (g *Game) Status() GameStatus {
	if g.FinishedAt == nil {
		return StatusInProgress
	}
	if g.IsFailed {
		if g.FinishedAt.Sub(g.CreatedAt) >= TimeLimit {
			return StatusTimeout
		}
		return StatusFail
	}
	if g.CurrentLevel > MaxLevel {
		return StatusWon
	}
	return StatusMoney
}

// IsFinished returns true once the game has ended for any reason
func (g *Game) IsFinished() bool {
	return g.FinishedAt != nil
}

// IsTimeUp returns true if the time limit has elapsed at now
func (g *Game) IsTimeUp(now time.Time) bool {
	return now.Sub(g.CreatedAt) >= TimeLimit
}

// CurrentGameQuestion returns the question for the current level
func (g *Game) CurrentGameQuestion() (*GameQuestion, error) {
	if g.CurrentLevel < 0 || g.CurrentLevel >= len(g.Questions) {
		return nil, fmt.Errorf("%w: level %d", ErrOutOfQuestions, g.CurrentLevel)
	}
	return &g.Questions[g.CurrentLevel], nil
}

// PreviousLevel returns the last cleared level index, -1 for a fresh game
func (g *Game) PreviousLevel() int {
	return g.CurrentLevel - 1
}

// AnswerCurrentQuestion submits an answer for the current level and reports
// whether it was accepted. Once the time limit has passed every answer loses,
// correct or not. A wrong or late answer is an ordinary outcome, not an error.
func (g *Game) AnswerCurrentQuestion(key AnswerKey, now time.Time) (bool, error) {
	if g.Status() != StatusInProgress {
		return false, fmt.Errorf("%w: cannot answer a game with status %s", ErrInvalidTransition, g.Status())
	}

	if g.IsTimeUp(now) {
		g.finish(now, true)
		return false, nil
	}

	q, err := g.CurrentGameQuestion()
	if err != nil {
		return false, err
	}

	if !q.IsAnswerCorrect(key) {
		g.finish(now, true)
		return false, nil
	}

	g.CurrentLevel++
	if g.CurrentLevel > MaxLevel {
		g.Prize = TopPrize()
		g.finish(now, false)
		return true, nil
	}

	g.UpdatedAt = now
	return true, nil
}

// TakeMoney cashes out the prize for the last cleared level and returns it
func (g *Game) TakeMoney(now time.Time) (int, error) {
	if g.Status() != StatusInProgress {
		return 0, fmt.Errorf("%w: cannot take money from a game with status %s", ErrInvalidTransition, g.Status())
	}
	if g.PreviousLevel() < 0 {
		return 0, fmt.Errorf("%w: no level has been cleared yet", ErrInvalidTransition)
	}

	g.Prize = PrizeFor(g.CurrentLevel)
	g.finish(now, false)
	return g.Prize, nil
}

// TimeOut ends an in-progress game whose time limit has passed. Returns true
// if the game was ended by this call.
func (g *Game) TimeOut(now time.Time) bool {
	if g.Status() != StatusInProgress || !g.IsTimeUp(now) {
		return false
	}
	g.finish(now, true)
	return true
}

// HelpUsed reports whether a hint has been used on any question of this game
func (g *Game) HelpUsed(kind HelpKind) bool {
	for i := range g.Questions {
		if g.Questions[i].HelpUsed(kind) {
			return true
		}
	}
	return false
}

// UseHelp applies a hint to the current question. Each hint can be used
// once per game.
func (g *Game) UseHelp(kind HelpKind, rnd random.Random, now time.Time) error {
	if g.Status() != StatusInProgress {
		return fmt.Errorf("%w: cannot use help in a game with status %s", ErrInvalidTransition, g.Status())
	}
	if g.HelpUsed(kind) {
		return ErrHelpAlreadyUsed
	}

	q, err := g.CurrentGameQuestion()
	if err != nil {
		return err
	}
	if err := q.ApplyHelp(kind, rnd); err != nil {
		return err
	}

	g.UpdatedAt = now
	return nil
}

// Clone returns a deep copy of the game
func (g *Game) Clone() *Game {
	cp := *g
	if g.FinishedAt != nil {
		t := *g.FinishedAt
		cp.FinishedAt = &t
	}
	cp.Questions = make([]GameQuestion, len(g.Questions))
	for i := range g.Questions {
		cp.Questions[i] = g.Questions[i].clone()
	}
	return &cp
}

func (g *Game) finish(now time.Time, failed bool) {
	g.IsFailed = failed
	g.FinishedAt = &now
	g.UpdatedAt = now
}

// GameSummary is a lightweight record of a game for listings
type GameSummary struct {
	ID           GameID
	Status       GameStatus
	CurrentLevel int
	Prize        int
	CreatedAt    time.Time
	FinishedAt   *time.Time
}

// Summary returns a listing record for the game
func (g *Game) Summary() GameSummary {
	return GameSummary{
		ID:           g.ID,
		Status:       g.Status(),
		CurrentLevel: g.CurrentLevel,
		Prize:        g.Prize,
		CreatedAt:    g.CreatedAt,
		FinishedAt:   g.FinishedAt,
	}
}
