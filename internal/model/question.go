package model

import (
	"fmt"
	"strings"

	"github.com/mcoot/ladder/internal/dependencies/random"
)

// QuestionID uniquely identifies a question in the pool
type QuestionID string

// AnswerSlots is the number of answers every question carries
const AnswerSlots = 4

// CorrectSlot is the 1-based answer slot that holds the correct answer
const CorrectSlot = 1

// Question is immutable pool content shared by every game that draws it
type Question struct {
	ID      QuestionID
	Level   int                 // Difficulty, 0..MaxLevel
	Text    string
	Answers [AnswerSlots]string // Answers[CorrectSlot-1] is correct
}

// Answer returns the text in the given 1-based slot, or "" if out of range
func (q Question) Answer(slot int) string {
	if slot < 1 || slot > AnswerSlots {
		return ""
	}
	return q.Answers[slot-1]
}

// Validate checks the question can be deployed in a game
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidQuestion)
	}
	if q.Level < 0 || q.Level > MaxLevel {
		return fmt.Errorf("%w: %s has level %d outside 0..%d", ErrInvalidQuestion, q.ID, q.Level, MaxLevel)
	}
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: %s has no text", ErrInvalidQuestion, q.ID)
	}
	for i, a := range q.Answers {
		if strings.TrimSpace(a) == "" {
			return fmt.Errorf("%w: %s answer %d is empty", ErrInvalidQuestion, q.ID, i+1)
		}
	}
	return nil
}

// AnswerKey is a display slot shown to the player
type AnswerKey string

const (
	KeyA AnswerKey = "a"
	KeyB AnswerKey = "b"
	KeyC AnswerKey = "c"
	KeyD AnswerKey = "d"
)

// AnswerKeys returns all display keys in presentation order
func AnswerKeys() []AnswerKey {
	return []AnswerKey{KeyA, KeyB, KeyC, KeyD}
}

// ParseAnswerKey converts user input to an AnswerKey
func ParseAnswerKey(s string) (AnswerKey, error) {
	key := AnswerKey(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range AnswerKeys() {
		if k == key {
			return key, nil
		}
	}
	return "", ErrInvalidAnswerKey
}

// KeyPermutation maps each display key to a 1-based answer slot
type KeyPermutation map[AnswerKey]int

// NewKeyPermutation shuffles the answer slots across the display keys
func NewKeyPermutation(rnd random.Random) KeyPermutation {
	slots := []int{1, 2, 3, 4}
	random.Shuffle(rnd, len(slots), func(i, j int) {
		slots[i], slots[j] = slots[j], slots[i]
	})

	perm := make(KeyPermutation, AnswerSlots)
	for i, key := range AnswerKeys() {
		perm[key] = slots[i]
	}
	return perm
}

// IsValid reports whether the permutation is a bijection from {a,b,c,d} to {1,2,3,4}
func (p KeyPermutation) IsValid() bool {
	if len(p) != AnswerSlots {
		return false
	}
	seen := make(map[int]bool, AnswerSlots)
	for _, key := range AnswerKeys() {
		slot, ok := p[key]
		if !ok || slot < 1 || slot > AnswerSlots || seen[slot] {
			return false
		}
		seen[slot] = true
	}
	return true
}
