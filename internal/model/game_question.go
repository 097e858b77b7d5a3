package model

import (
	"fmt"
	"maps"
	"strings"

	"github.com/mcoot/ladder/internal/dependencies/random"
)

// Friend call accuracy: the friend names the correct key in this many tries out of 10
const friendCallAccuracy = 8

// GameQuestion is a question as deployed inside one game, with its own
// answer-key permutation and hint state
type GameQuestion struct {
	Question Question
	Keys     KeyPermutation // Fixed when the game is created
	Help     HelpHash
}

// NewGameQuestion wraps a pool question with a key permutation
func NewGameQuestion(q Question, keys KeyPermutation) GameQuestion {
	return GameQuestion{
		Question: q,
		Keys:     keys,
		Help:     make(HelpHash),
	}
}

// Level returns the difficulty level of the underlying question
func (gq *GameQuestion) Level() int {
	return gq.Question.Level
}

// Text returns the question text
func (gq *GameQuestion) Text() string {
	return gq.Question.Text
}

// Variants returns the answer text shown under each display key
func (gq *GameQuestion) Variants() map[AnswerKey]string {
	variants := make(map[AnswerKey]string, AnswerSlots)
	for _, key := range AnswerKeys() {
		variants[key] = gq.Question.Answer(gq.Keys[key])
	}
	return variants
}

// CorrectAnswerKey returns the display key mapped to the correct slot
func (gq *GameQuestion) CorrectAnswerKey() AnswerKey {
	for _, key := range AnswerKeys() {
		if gq.Keys[key] == CorrectSlot {
			return key
		}
	}
	return ""
}

// IsAnswerCorrect reports whether key is the correct display key
func (gq *GameQuestion) IsAnswerCorrect(key AnswerKey) bool {
	correct := gq.CorrectAnswerKey()
	return correct != "" && key == correct
}

// HelpUsed reports whether a hint has been recorded on this question
func (gq *GameQuestion) HelpUsed(kind HelpKind) bool {
	_, ok := gq.Help[kind]
	return ok
}

// ApplyHelp records the given hint. Applying a hint twice overwrites the
// earlier payload.
func (gq *GameQuestion) ApplyHelp(kind HelpKind, rnd random.Random) error {
	switch kind {
	case HelpFiftyFifty:
		gq.AddFiftyFifty(rnd)
	case HelpAudience:
		gq.AddAudienceHelp(rnd)
	case HelpFriendCall:
		gq.AddFriendCall(rnd)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidHelpKind, kind)
	}
	return nil
}

// AddFiftyFifty keeps the correct answer and one random wrong answer
func (gq *GameQuestion) AddFiftyFifty(rnd random.Random) {
	correct := gq.CorrectAnswerKey()
	wrong := gq.wrongKeys()
	kept := wrong[rnd.Intn(len(wrong))]

	variants := gq.Variants()
	gq.setHelp(HelpFiftyFifty, HelpPayload{
		Variants: map[AnswerKey]string{
			correct: variants[correct],
			kept:    variants[kept],
		},
	})
}

// AddAudienceHelp records an audience vote split across all four keys.
// Percentages always sum to 100; the correct key is drawn from a higher range.
func (gq *GameQuestion) AddAudienceHelp(rnd random.Random) {
	correct := gq.CorrectAnswerKey()

	weights := make(map[AnswerKey]int, AnswerSlots)
	total := 0
	for _, key := range AnswerKeys() {
		w := 1 + rnd.Intn(60)
		if key == correct {
			w = 45 + rnd.Intn(46)
		}
		weights[key] = w
		total += w
	}

	votes := make(map[AnswerKey]int, AnswerSlots)
	assigned := 0
	for _, key := range AnswerKeys() {
		votes[key] = weights[key] * 100 / total
		assigned += votes[key]
	}
	// Rounding remainder goes to the favourite
	votes[correct] += 100 - assigned

	gq.setHelp(HelpAudience, HelpPayload{Votes: votes})
}

// AddFriendCall records a friend's guess, which is usually but not always right
func (gq *GameQuestion) AddFriendCall(rnd random.Random) {
	guess := gq.CorrectAnswerKey()
	if rnd.Intn(10) >= friendCallAccuracy {
		wrong := gq.wrongKeys()
		guess = wrong[rnd.Intn(len(wrong))]
	}

	gq.setHelp(HelpFriendCall, HelpPayload{
		Guess:    fmt.Sprintf("I think the answer is %s", strings.ToUpper(string(guess))),
		GuessKey: guess,
	})
}

func (gq *GameQuestion) setHelp(kind HelpKind, payload HelpPayload) {
	if gq.Help == nil {
		gq.Help = make(HelpHash)
	}
	gq.Help[kind] = payload
}

// wrongKeys returns the display keys that are not correct, in presentation order
func (gq *GameQuestion) wrongKeys() []AnswerKey {
	correct := gq.CorrectAnswerKey()
	keys := make([]AnswerKey, 0, AnswerSlots-1)
	for _, key := range AnswerKeys() {
		if key != correct {
			keys = append(keys, key)
		}
	}
	return keys
}

// clone returns a deep copy so stored aggregates never alias caller state
func (gq GameQuestion) clone() GameQuestion {
	help := make(HelpHash, len(gq.Help))
	for kind, p := range gq.Help {
		p.Variants = maps.Clone(p.Variants)
		p.Votes = maps.Clone(p.Votes)
		help[kind] = p
	}

	gq.Keys = maps.Clone(gq.Keys)
	gq.Help = help
	return gq
}
