package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/ladder/internal/model"
	"github.com/mcoot/ladder/internal/storage"
	"github.com/mcoot/ladder/internal/storage/storagetest"
)

func newTestStorage(t *testing.T, path string) *Storage {
	t.Helper()
	st, err := New(Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func() storage.Storage {
			return newTestStorage(t, filepath.Join(t.TempDir(), "ladder.db"))
		},
	})
}

func TestNewCreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "ladder.db")
	st := newTestStorage(t, path)

	n, err := st.QuestionCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDataSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ladder.db")

	first, err := New(Config{Path: path})
	require.NoError(t, err)

	require.NoError(t, first.SaveUser(ctx, storagetest.User("alice", 0)))
	require.NoError(t, first.SaveQuestions(ctx, storagetest.FullPool(1)))

	game := storagetest.Game("g1", "alice", storagetest.Epoch)
	_, err = game.AnswerCurrentQuestion(model.KeyB, storagetest.Epoch.Add(time.Second))
	require.NoError(t, err)
	require.NoError(t, first.SaveGame(ctx, game))
	require.NoError(t, first.Close())

	second := newTestStorage(t, path)

	n, err := second.QuestionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.LevelCount, n)

	got, err := second.GetGame(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentLevel)
	assert.Len(t, got.Questions, model.LevelCount)
	assert.Equal(t, storagetest.Keys(), got.Questions[0].Keys)
}
