package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrizesIncreaseMonotonically(t *testing.T) {
	for i := 1; i < LevelCount; i++ {
		assert.Greater(t, Prizes[i], Prizes[i-1], "prize at level %d", i)
	}
}

func TestPrizeFor(t *testing.T) {
	tests := []struct {
		name         string
		levelReached int
		expected     int
	}{
		{"nothing cleared", 0, 0},
		{"negative", -1, 0},
		{"first level", 1, 100},
		{"fifth level", 5, 1000},
		{"all levels", 15, 1000000},
		{"past the end clamps", 16, 1000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PrizeFor(tt.levelReached))
		})
	}
}

func TestFireproofPrizeFor(t *testing.T) {
	tests := []struct {
		name         string
		levelReached int
		expected     int
	}{
		{"nothing cleared", 0, 0},
		{"before first checkpoint", 4, 0},
		{"first checkpoint cleared", 5, 1000},
		{"between checkpoints", 9, 1000},
		{"second checkpoint cleared", 10, 32000},
		{"one short of the top", 14, 32000},
		{"all cleared", 15, 1000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FireproofPrizeFor(tt.levelReached))
		})
	}
}

func TestIsFireproof(t *testing.T) {
	assert.True(t, IsFireproof(4))
	assert.True(t, IsFireproof(9))
	assert.True(t, IsFireproof(14))
	assert.False(t, IsFireproof(0))
	assert.False(t, IsFireproof(5))
}

func TestTopPrize(t *testing.T) {
	assert.Equal(t, 1000000, TopPrize())
}

func TestLevels(t *testing.T) {
	levels := Levels()
	assert.Len(t, levels, LevelCount)
	for i, l := range levels {
		assert.Equal(t, i, l)
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0 ₽", FormatMoney(0))
	assert.Equal(t, "500 ₽", FormatMoney(500))
	assert.Equal(t, "25 000 ₽", FormatMoney(25000))
	assert.Equal(t, "100 500 ₽", FormatMoney(100500))
	assert.Equal(t, "1 000 000 ₽", FormatMoney(1000000))
	assert.Equal(t, "-1 000 ₽", FormatMoney(-1000))
}
