package storagetest

import (
	"fmt"
	"time"

	"github.com/mcoot/ladder/internal/model"
)

// Epoch is the creation time of fixture games
var Epoch = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

// Question returns a valid pool question for level with a distinguishing suffix
func Question(level int, suffix string) model.Question {
	return model.Question{
		ID:    model.QuestionID(fmt.Sprintf("q-%02d-%s", level, suffix)),
		Level: level,
		Text:  fmt.Sprintf("Level %d question %s?", level, suffix),
		Answers: [model.AnswerSlots]string{
			"right " + suffix,
			"wrong one " + suffix,
			"wrong two " + suffix,
			"wrong three " + suffix,
		},
	}
}

// FullPool returns perLevel questions for every level
func FullPool(perLevel int) []model.Question {
	qs := make([]model.Question, 0, model.LevelCount*perLevel)
	for _, level := range model.Levels() {
		for i := 0; i < perLevel; i++ {
			qs = append(qs, Question(level, fmt.Sprintf("%d", i)))
		}
	}
	return qs
}

// Keys returns the fixture permutation a:2 b:1 c:4 d:3, so the correct key is b
func Keys() model.KeyPermutation {
	return model.KeyPermutation{model.KeyA: 2, model.KeyB: 1, model.KeyC: 4, model.KeyD: 3}
}

// Game builds an in-progress game owned by userID created at createdAt
func Game(id model.GameID, userID model.UserID, createdAt time.Time) *model.Game {
	questions := make([]model.GameQuestion, model.LevelCount)
	for _, level := range model.Levels() {
		questions[level] = model.NewGameQuestion(Question(level, string(id)), Keys())
	}
	game, err := model.NewGame(id, userID, questions, createdAt)
	if err != nil {
		panic(err)
	}
	return game
}

// User returns a user with the given balance
func User(id model.UserID, balance int) *model.User {
	return &model.User{
		ID:          id,
		DisplayName: "Player " + string(id),
		Balance:     balance,
		CreatedAt:   Epoch,
	}
}
