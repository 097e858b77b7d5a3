package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type GameQuestionSuite struct {
	suite.Suite
	gq GameQuestion
}

func TestGameQuestionSuite(t *testing.T) {
	suite.Run(t, new(GameQuestionSuite))
}

func (s *GameQuestionSuite) SetupTest() {
	s.gq = NewGameQuestion(newTestQuestion(3), fixtureKeys())
}

func (s *GameQuestionSuite) TestVariantsApplyPermutation() {
	q := s.gq.Question
	s.Equal(map[AnswerKey]string{
		KeyA: q.Answers[1],
		KeyB: q.Answers[0],
		KeyC: q.Answers[3],
		KeyD: q.Answers[2],
	}, s.gq.Variants())
}

func (s *GameQuestionSuite) TestVariantsAreABijection() {
	for seed := 0; seed < 4; seed++ {
		gq := NewGameQuestion(newTestQuestion(0), NewKeyPermutation(fixedRandom(seed)))
		s.Require().True(gq.Keys.IsValid())

		texts := make([]string, 0, AnswerSlots)
		for _, text := range gq.Variants() {
			texts = append(texts, text)
		}
		s.ElementsMatch(gq.Question.Answers[:], texts)

		correct := 0
		for _, key := range AnswerKeys() {
			if gq.IsAnswerCorrect(key) {
				correct++
			}
		}
		s.Equal(1, correct)
	}
}

func (s *GameQuestionSuite) TestCorrectAnswerKey() {
	s.Equal(KeyB, s.gq.CorrectAnswerKey())
	s.True(s.gq.IsAnswerCorrect(KeyB))
	s.False(s.gq.IsAnswerCorrect(KeyA))
	s.False(s.gq.IsAnswerCorrect(""))
}

func (s *GameQuestionSuite) TestTextAndLevelDelegateToQuestion() {
	s.Equal(s.gq.Question.Text, s.gq.Text())
	s.Equal(3, s.gq.Level())
}

func (s *GameQuestionSuite) TestHelpStartsEmpty() {
	s.Empty(s.gq.Help)
	for _, kind := range HelpKinds() {
		s.False(s.gq.HelpUsed(kind))
	}
}

func (s *GameQuestionSuite) TestFiftyFiftyKeepsCorrectAndOneOther() {
	before := s.gq.Variants()

	s.gq.AddFiftyFifty(fixedRandom(2))

	s.Require().True(s.gq.HelpUsed(HelpFiftyFifty))
	ff := s.gq.Help[HelpFiftyFifty].Variants
	s.Len(ff, 2)
	s.Contains(ff, KeyB)
	s.Equal(before[KeyB], ff[KeyB])
	// wrong keys in order are a, c, d
	s.Contains(ff, KeyD)

	s.Equal(before, s.gq.Variants(), "hint must not change the question")
}

func (s *GameQuestionSuite) TestAudienceHelpCoversAllKeys() {
	s.gq.AddAudienceHelp(fixedRandom(30))

	s.Require().True(s.gq.HelpUsed(HelpAudience))
	votes := s.gq.Help[HelpAudience].Votes
	s.Len(votes, AnswerSlots)

	total := 0
	for _, key := range AnswerKeys() {
		s.Contains(votes, key)
		s.GreaterOrEqual(votes[key], 0)
		total += votes[key]
	}
	s.Equal(100, total)
	s.Greater(votes[KeyB], votes[KeyA])
}

func (s *GameQuestionSuite) TestFriendCallUsuallyRight() {
	s.gq.AddFriendCall(fixedRandom(0))

	payload := s.gq.Help[HelpFriendCall]
	s.Equal(KeyB, payload.GuessKey)
	s.Equal("I think the answer is B", payload.Guess)
}

func (s *GameQuestionSuite) TestFriendCallCanBeWrong() {
	s.gq.AddFriendCall(fixedRandom(9))

	payload := s.gq.Help[HelpFriendCall]
	s.NotEqual(KeyB, payload.GuessKey)
	s.Contains(AnswerKeys(), payload.GuessKey)
}

func (s *GameQuestionSuite) TestApplyHelpRejectsUnknownKind() {
	err := s.gq.ApplyHelp("phone_a_stranger", fixedRandom(0))
	s.ErrorIs(err, ErrInvalidHelpKind)
	s.Empty(s.gq.Help)
}

func (s *GameQuestionSuite) TestApplyHelpTwiceOverwrites() {
	s.Require().NoError(s.gq.ApplyHelp(HelpFiftyFifty, fixedRandom(0)))
	s.Require().NoError(s.gq.ApplyHelp(HelpFiftyFifty, fixedRandom(2)))

	s.Len(s.gq.Help, 1)
	s.Contains(s.gq.Help[HelpFiftyFifty].Variants, KeyD)
}

func TestParseAnswerKey(t *testing.T) {
	key, err := ParseAnswerKey(" C ")
	require.NoError(t, err)
	assert.Equal(t, KeyC, key)

	_, err = ParseAnswerKey("e")
	assert.ErrorIs(t, err, ErrInvalidAnswerKey)
}

func TestParseHelpKind(t *testing.T) {
	kind, err := ParseHelpKind("Audience_Help")
	require.NoError(t, err)
	assert.Equal(t, HelpAudience, kind)

	_, err = ParseHelpKind("ask_the_host")
	assert.ErrorIs(t, err, ErrInvalidHelpKind)
}

func TestKeyPermutationIsValid(t *testing.T) {
	assert.True(t, fixtureKeys().IsValid())
	assert.False(t, KeyPermutation{KeyA: 1, KeyB: 1, KeyC: 2, KeyD: 3}.IsValid())
	assert.False(t, KeyPermutation{KeyA: 1, KeyB: 2, KeyC: 3}.IsValid())
	assert.False(t, KeyPermutation{KeyA: 0, KeyB: 2, KeyC: 3, KeyD: 4}.IsValid())
}

func TestNewKeyPermutationVariesWithRandom(t *testing.T) {
	first := NewKeyPermutation(fixedRandom(0))
	second := NewKeyPermutation(fixedRandom(3))
	assert.True(t, first.IsValid())
	assert.True(t, second.IsValid())
	assert.NotEqual(t, first, second)
}

func TestQuestionValidate(t *testing.T) {
	assert.NoError(t, newTestQuestion(3).Validate())

	tests := []struct {
		name   string
		mutate func(q *Question)
	}{
		{"missing id", func(q *Question) { q.ID = "" }},
		{"negative level", func(q *Question) { q.Level = -1 }},
		{"level above max", func(q *Question) { q.Level = LevelCount }},
		{"blank text", func(q *Question) { q.Text = "  " }},
		{"empty answer", func(q *Question) { q.Answers[2] = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newTestQuestion(3)
			tt.mutate(&q)
			assert.ErrorIs(t, q.Validate(), ErrInvalidQuestion)
		})
	}
}
