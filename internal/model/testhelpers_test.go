package model

import (
	"fmt"
	"time"
)

var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// fixtureKeys matches the canonical fixture: b holds the correct answer
func fixtureKeys() KeyPermutation {
	return KeyPermutation{KeyA: 2, KeyB: 1, KeyC: 4, KeyD: 3}
}

func newTestQuestion(level int) Question {
	return Question{
		ID:    QuestionID(fmt.Sprintf("q-%d", level)),
		Level: level,
		Text:  fmt.Sprintf("Question %d?", level),
		Answers: [AnswerSlots]string{
			fmt.Sprintf("right-%d", level),
			fmt.Sprintf("wrong-%d-1", level),
			fmt.Sprintf("wrong-%d-2", level),
			fmt.Sprintf("wrong-%d-3", level),
		},
	}
}

func newTestGame() *Game {
	questions := make([]GameQuestion, LevelCount)
	for i := range questions {
		questions[i] = NewGameQuestion(newTestQuestion(i), fixtureKeys())
	}
	g, err := NewGame("game-1", "user-1", questions, testNow)
	if err != nil {
		panic(err)
	}
	return g
}

// fixedRandom returns the same value from every Intn call (clamped to n-1)
type fixedRandom int

func (r fixedRandom) Intn(n int) int {
	if int(r) >= n {
		return n - 1
	}
	return int(r)
}

func (r fixedRandom) String(length int, alphabet string) string {
	return ""
}
