package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/mcoot/ladder/internal/dependencies/mocks"
	"github.com/mcoot/ladder/internal/model"
	"github.com/mcoot/ladder/internal/services/auth"
	"github.com/mcoot/ladder/internal/services/game"
	"github.com/mcoot/ladder/internal/storage/memory"
	"github.com/mcoot/ladder/internal/testutil"
)

// TestStart is the mock clock's initial time
var TestStart = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(game.Config{})
}

// NewTestAppWithConfig creates a TestApp with the given payout policy
func NewTestAppWithConfig(gameCfg game.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(TestStart)
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, auth.DefaultConfig(), gameCfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// LoadTestQuestions fills every level with perLevel generated questions.
// The first answer of each is the correct one.
func (t *TestApp) LoadTestQuestions(perLevel int) error {
	qs := make([]model.Question, 0, model.LevelCount*perLevel)
	for _, level := range model.Levels() {
		for i := 0; i < perLevel; i++ {
			qs = append(qs, model.Question{
				ID:      model.QuestionID(fmt.Sprintf("test-%02d-%d", level, i)),
				Level:   level,
				Text:    fmt.Sprintf("Level %d question %d?", level, i),
				Answers: [model.AnswerSlots]string{"Right", "Wrong 1", "Wrong 2", "Wrong 3"},
			})
		}
	}
	return t.QuestionService.Load(context.Background(), qs)
}

// CreateUser stores a user directly, bypassing sessions
func (t *TestApp) CreateUser(id, name string) (*model.User, error) {
	user := &model.User{
		ID:          model.UserID(id),
		DisplayName: name,
		CreatedAt:   t.MockClock.Now(),
	}
	if err := t.Storage.SaveUser(context.Background(), user); err != nil {
		return nil, err
	}
	return user, nil
}
