// Package storagetest holds the behavior every storage backend must share.
// Backend packages run Suite against a fresh store per test.
package storagetest

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/ladder/internal/dependencies/mocks"
	"github.com/mcoot/ladder/internal/model"
	"github.com/mcoot/ladder/internal/storage"
)

// Suite exercises a storage.Storage implementation
type Suite struct {
	suite.Suite

	// NewStorage returns an empty store; called before every test
	NewStorage func() storage.Storage

	Storage storage.Storage
	Ctx     context.Context
}

func (s *Suite) SetupTest() {
	s.Storage = s.NewStorage()
	s.Ctx = context.Background()
}

func (s *Suite) saveUsers(users ...*model.User) {
	for _, u := range users {
		s.Require().NoError(s.Storage.SaveUser(s.Ctx, u))
	}
}

// User tests

func (s *Suite) TestSaveAndGetUser() {
	s.saveUsers(User("alice", 300))

	user, err := s.Storage.GetUser(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.UserID("alice"), user.ID)
	s.Equal("Player alice", user.DisplayName)
	s.Equal(300, user.Balance)
	s.True(user.CreatedAt.Equal(Epoch))
}

func (s *Suite) TestGetUserNotFound() {
	_, err := s.Storage.GetUser(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *Suite) TestReturnedUserIsACopy() {
	s.saveUsers(User("alice", 0))

	user, err := s.Storage.GetUser(s.Ctx, "alice")
	s.Require().NoError(err)
	user.Balance = 999

	again, err := s.Storage.GetUser(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(0, again.Balance)
}

func (s *Suite) TestCreditUser() {
	s.saveUsers(User("alice", 100))

	s.Require().NoError(s.Storage.CreditUser(s.Ctx, "alice", 32000))

	user, err := s.Storage.GetUser(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(32100, user.Balance)
}

func (s *Suite) TestCreditUnknownUser() {
	err := s.Storage.CreditUser(s.Ctx, "nobody", 100)
	s.ErrorIs(err, model.ErrUserNotFound)

	_, err = s.Storage.GetUser(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *Suite) TestConcurrentCreditsAreNotLost() {
	s.saveUsers(User("alice", 0))

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Storage.CreditUser(context.Background(), "alice", 500)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.Require().NoError(err)
	}
	user, err := s.Storage.GetUser(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(workers*500, user.Balance)
}

func (s *Suite) TestListUsersByBalance() {
	s.saveUsers(User("poor", 100), User("rich", 1000000), User("middle", 32000))
	s.Require().NoError(s.Storage.CreditUser(s.Ctx, "poor", 63900))

	users, err := s.Storage.ListUsersByBalance(s.Ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(users, 3)
	s.Equal(model.UserID("rich"), users[0].ID)
	s.Equal(model.UserID("poor"), users[1].ID)
	s.Equal(64000, users[1].Balance)
	s.Equal(model.UserID("middle"), users[2].ID)

	top, err := s.Storage.ListUsersByBalance(s.Ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal(model.UserID("rich"), top[0].ID)
	s.Equal(model.UserID("poor"), top[1].ID)
}

func (s *Suite) TestListUsersByBalanceEmpty() {
	users, err := s.Storage.ListUsersByBalance(s.Ctx, 10)
	s.Require().NoError(err)
	s.Empty(users)
}

// Question pool tests

func (s *Suite) TestSaveAndQueryQuestions() {
	s.Require().NoError(s.Storage.SaveQuestions(s.Ctx, []model.Question{
		Question(3, "b"), Question(3, "a"), Question(4, "a"),
	}))

	qs, err := s.Storage.QuestionsForLevel(s.Ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(qs, 2)
	s.Equal(Question(3, "a"), qs[0])
	s.Equal(Question(3, "b"), qs[1])

	empty, err := s.Storage.QuestionsForLevel(s.Ctx, 9)
	s.Require().NoError(err)
	s.Empty(empty)

	n, err := s.Storage.QuestionCount(s.Ctx)
	s.Require().NoError(err)
	s.Equal(3, n)
}

func (s *Suite) TestSaveQuestionsUpsertsById() {
	q := Question(3, "a")
	s.Require().NoError(s.Storage.SaveQuestions(s.Ctx, []model.Question{q}))

	q.Level = 5
	q.Text = "Moved?"
	s.Require().NoError(s.Storage.SaveQuestions(s.Ctx, []model.Question{q}))

	old, err := s.Storage.QuestionsForLevel(s.Ctx, 3)
	s.Require().NoError(err)
	s.Empty(old)

	moved, err := s.Storage.QuestionsForLevel(s.Ctx, 5)
	s.Require().NoError(err)
	s.Require().Len(moved, 1)
	s.Equal("Moved?", moved[0].Text)

	n, err := s.Storage.QuestionCount(s.Ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *Suite) TestSaveQuestionsRejectsInvalidBatch() {
	bad := Question(2, "bad")
	bad.Answers[3] = ""

	err := s.Storage.SaveQuestions(s.Ctx, []model.Question{Question(2, "good"), bad})
	s.ErrorIs(err, model.ErrInvalidQuestion)

	n, err := s.Storage.QuestionCount(s.Ctx)
	s.Require().NoError(err)
	s.Equal(0, n)
}

// Game tests

func (s *Suite) TestSaveAndGetGame() {
	game := Game("g1", "alice", Epoch)
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	got, err := s.Storage.GetGame(s.Ctx, "g1")
	s.Require().NoError(err)
	s.assertSameGame(game, got)
	s.Equal(model.StatusInProgress, got.Status())
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.Storage.GetGame(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestSaveGamePersistsProgressAndHelp() {
	game := Game("g1", "alice", Epoch)
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	now := Epoch.Add(2 * time.Minute)
	ok, err := game.AnswerCurrentQuestion(model.KeyB, now)
	s.Require().NoError(err)
	s.Require().True(ok)

	rnd := mocks.NewMockRandom()
	rnd.QueueIntn(1)
	s.Require().NoError(game.UseHelp(model.HelpFiftyFifty, rnd, now))
	s.Require().NoError(game.UseHelp(model.HelpAudience, rnd, now))
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	got, err := s.Storage.GetGame(s.Ctx, "g1")
	s.Require().NoError(err)
	s.assertSameGame(game, got)
	s.Equal(1, got.CurrentLevel)
	s.True(got.HelpUsed(model.HelpFiftyFifty))
	s.True(got.HelpUsed(model.HelpAudience))
	s.False(got.HelpUsed(model.HelpFriendCall))

	votes := got.Questions[1].Help[model.HelpAudience].Votes
	total := 0
	for _, v := range votes {
		total += v
	}
	s.Equal(100, total)
}

func (s *Suite) TestSaveFinishedGame() {
	game := Game("g1", "alice", Epoch)
	_, err := game.AnswerCurrentQuestion(model.KeyA, Epoch.Add(time.Minute))
	s.Require().NoError(err)
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	got, err := s.Storage.GetGame(s.Ctx, "g1")
	s.Require().NoError(err)
	s.Equal(model.StatusFail, got.Status())
	s.Require().NotNil(got.FinishedAt)
	s.True(got.FinishedAt.Equal(Epoch.Add(time.Minute)))
}

func (s *Suite) TestReturnedGameIsACopy() {
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, Game("g1", "alice", Epoch)))

	got, err := s.Storage.GetGame(s.Ctx, "g1")
	s.Require().NoError(err)
	got.CurrentLevel = 9
	got.Questions[0].Keys[model.KeyA] = 1

	again, err := s.Storage.GetGame(s.Ctx, "g1")
	s.Require().NoError(err)
	s.Equal(0, again.CurrentLevel)
	s.Equal(2, again.Questions[0].Keys[model.KeyA])
}

func (s *Suite) TestListGamesForUserNewestFirst() {
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, Game("old", "alice", Epoch)))
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, Game("new", "alice", Epoch.Add(time.Hour))))
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, Game("mid", "alice", Epoch.Add(time.Minute))))
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, Game("other", "bob", Epoch.Add(2*time.Hour))))

	games, err := s.Storage.ListGamesForUser(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(games, 3)
	s.Equal(model.GameID("new"), games[0].ID)
	s.Equal(model.GameID("mid"), games[1].ID)
	s.Equal(model.GameID("old"), games[2].ID)
	s.Len(games[0].Questions, model.LevelCount)
}

func (s *Suite) TestListGamesForUserSavedTwiceAppearsOnce() {
	game := Game("g1", "alice", Epoch)
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	games, err := s.Storage.ListGamesForUser(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Len(games, 1)
}

func (s *Suite) TestListGamesForUnknownUser() {
	games, err := s.Storage.ListGamesForUser(s.Ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(games)
}

func (s *Suite) TestSettleGameSavesAndCredits() {
	s.saveUsers(User("alice", 100))
	game := Game("g1", "alice", Epoch)
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	for i := 0; i < 5; i++ {
		_, err := game.AnswerCurrentQuestion(model.KeyB, Epoch)
		s.Require().NoError(err)
	}
	prize, err := game.TakeMoney(Epoch.Add(time.Minute))
	s.Require().NoError(err)
	s.Require().NoError(s.Storage.SettleGame(s.Ctx, game, prize))

	got, err := s.Storage.GetGame(s.Ctx, "g1")
	s.Require().NoError(err)
	s.Equal(model.StatusMoney, got.Status())
	s.Equal(1000, got.Prize)

	user, err := s.Storage.GetUser(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(1100, user.Balance)

	board, err := s.Storage.ListUsersByBalance(s.Ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(board, 1)
	s.Equal(1100, board[0].Balance)
}

func (s *Suite) TestSettleGameWithZeroAmountOnlySaves() {
	game := Game("g1", "ghost", Epoch)
	_, err := game.AnswerCurrentQuestion(model.KeyC, Epoch)
	s.Require().NoError(err)

	s.Require().NoError(s.Storage.SettleGame(s.Ctx, game, 0))

	got, err := s.Storage.GetGame(s.Ctx, "g1")
	s.Require().NoError(err)
	s.Equal(model.StatusFail, got.Status())
}

func (s *Suite) TestSettleGameForUnknownUserWritesNothing() {
	game := Game("g1", "nobody", Epoch)
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	_, err := game.AnswerCurrentQuestion(model.KeyB, Epoch)
	s.Require().NoError(err)
	_, err = game.TakeMoney(Epoch)
	s.Require().NoError(err)

	err = s.Storage.SettleGame(s.Ctx, game, game.Prize)
	s.ErrorIs(err, model.ErrUserNotFound)

	got, err := s.Storage.GetGame(s.Ctx, "g1")
	s.Require().NoError(err)
	s.Equal(model.StatusInProgress, got.Status())
	s.Equal(0, got.CurrentLevel)
}

func (s *Suite) assertSameGame(want, got *model.Game) {
	s.Equal(want.ID, got.ID)
	s.Equal(want.UserID, got.UserID)
	s.Equal(want.CurrentLevel, got.CurrentLevel)
	s.Equal(want.IsFailed, got.IsFailed)
	s.Equal(want.Prize, got.Prize)
	s.True(want.CreatedAt.Equal(got.CreatedAt))
	s.True(want.UpdatedAt.Equal(got.UpdatedAt))
	if want.FinishedAt == nil {
		s.Nil(got.FinishedAt)
	} else {
		s.Require().NotNil(got.FinishedAt)
		s.True(want.FinishedAt.Equal(*got.FinishedAt))
	}

	s.Require().Len(got.Questions, len(want.Questions))
	for i := range want.Questions {
		w, g := want.Questions[i], got.Questions[i]
		s.Equal(w.Question, g.Question)
		s.Equal(w.Keys, g.Keys)
		s.Equal(len(w.Help), len(g.Help))
		for kind, payload := range w.Help {
			s.Equal(payload, g.Help[kind], "help %s on level %d", kind, i)
		}
	}
}
