package model

import "time"

const (
	LevelCount = 15             // Questions per game
	MaxLevel   = LevelCount - 1 // Index of the last (hardest) level

	// TimeLimit is how long a game may run before any answer counts as a timeout
	TimeLimit = 35 * time.Minute
)

// Prizes maps a level index to the money banked for clearing it
var Prizes = [LevelCount]int{
	100, 200, 300, 500, 1000,
	2000, 4000, 8000, 16000, 32000,
	64000, 125000, 250000, 500000, 1000000,
}

// FireproofLevels are checkpoints whose prize is kept even after a failure
var FireproofLevels = []int{4, 9, 14}

// Levels returns every level index in ascending order
func Levels() []int {
	levels := make([]int, LevelCount)
	for i := range levels {
		levels[i] = i
	}
	return levels
}

// PrizeFor returns the money banked after clearing levelReached questions
func PrizeFor(levelReached int) int {
	if levelReached <= 0 {
		return 0
	}
	if levelReached > LevelCount {
		levelReached = LevelCount
	}
	return Prizes[levelReached-1]
}

// FireproofPrizeFor returns the guaranteed amount after clearing levelReached
// questions: the prize of the highest fireproof level at or below
// levelReached-1, or 0 if no checkpoint was passed.
func FireproofPrizeFor(levelReached int) int {
	prize := 0
	for _, level := range FireproofLevels {
		if level <= levelReached-1 {
			prize = Prizes[level]
		}
	}
	return prize
}

// IsFireproof reports whether clearing the given level index banks a guaranteed prize
func IsFireproof(level int) bool {
	for _, l := range FireproofLevels {
		if l == level {
			return true
		}
	}
	return false
}

// TopPrize returns the prize for clearing every level
func TopPrize() int {
	return Prizes[MaxLevel]
}
