package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/ladder/internal/model"
	"github.com/mcoot/ladder/internal/storage"
	"github.com/mcoot/ladder/internal/storage/storagetest"
)

func TestStorageConformance(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func() storage.Storage {
			mini := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
			return NewWithClient(client, DefaultConfig())
		},
	})
}

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.FinishedGameTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestUserIsStoredAsHash() {
	s.Require().NoError(s.storage.SaveUser(s.ctx, storagetest.User("alice", 500)))
	s.Require().NoError(s.storage.CreditUser(s.ctx, "alice", 1500))

	s.Equal("2000", s.mini.HGet("ladder:user:alice", "balance"))
	s.Equal("Player alice", s.mini.HGet("ladder:user:alice", "display_name"))

	score, err := s.mini.ZScore("ladder:idx:users_by_balance", "alice")
	s.Require().NoError(err)
	s.Equal(float64(2000), score)
}

func (s *StorageSuite) TestQuestionIndexes() {
	s.Require().NoError(s.storage.SaveQuestions(s.ctx, []model.Question{
		storagetest.Question(0, "a"),
		storagetest.Question(0, "b"),
		storagetest.Question(7, "a"),
	}))

	s.True(s.mini.Exists("ladder:question:q-00-a"))

	level0, err := s.mini.Members("ladder:idx:questions_for_level:0")
	s.Require().NoError(err)
	s.ElementsMatch([]string{"q-00-a", "q-00-b"}, level0)

	all, err := s.mini.Members("ladder:idx:questions")
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *StorageSuite) TestInProgressGameHasNoTTL() {
	s.Require().NoError(s.storage.SaveGame(s.ctx, storagetest.Game("g1", "alice", storagetest.Epoch)))

	s.True(s.mini.Exists("ladder:game:g1"))
	s.Equal(time.Duration(0), s.mini.TTL("ladder:game:g1"))

	members, err := s.mini.ZMembers("ladder:idx:games_for_user:alice")
	s.Require().NoError(err)
	s.Equal([]string{"g1"}, members)
}

func (s *StorageSuite) TestFinishedGameExpires() {
	s.Require().NoError(s.storage.SaveUser(s.ctx, storagetest.User("alice", 0)))
	game := storagetest.Game("g1", "alice", storagetest.Epoch)
	_, err := game.AnswerCurrentQuestion(model.KeyB, storagetest.Epoch)
	s.Require().NoError(err)
	prize, err := game.TakeMoney(storagetest.Epoch)
	s.Require().NoError(err)

	s.Require().NoError(s.storage.SettleGame(s.ctx, game, prize))
	s.Equal(time.Hour, s.mini.TTL("ladder:game:g1"))

	s.mini.FastForward(2 * time.Hour)

	_, err = s.storage.GetGame(s.ctx, "g1")
	s.ErrorIs(err, model.ErrGameNotFound)

	// The index still names the game but listing skips it
	games, err := s.storage.ListGamesForUser(s.ctx, "alice")
	s.Require().NoError(err)
	s.Empty(games)

	user, err := s.storage.GetUser(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(100, user.Balance)
}

func (s *StorageSuite) TestNewRejectsBadURL() {
	cfg := DefaultConfig()
	cfg.URL = "not-a-url"
	_, err := New(cfg)
	s.Error(err)
}

func (s *StorageSuite) TestNewConnects() {
	cfg := DefaultConfig()
	cfg.URL = "redis://" + s.mini.Addr()
	st, err := New(cfg)
	s.Require().NoError(err)
	s.NoError(st.Close())
}
