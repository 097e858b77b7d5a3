package redis

import (
	"fmt"

	"github.com/mcoot/ladder/internal/model"
)

// Key prefix for all ladder data
const keyPrefix = "ladder"

// userKey returns the Redis key for a User HASH
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usersByBalanceKey returns the Redis key for the leaderboard ZSET
func usersByBalanceKey() string {
	return fmt.Sprintf("%s:idx:users_by_balance", keyPrefix)
}

// questionKey returns the Redis key for a Question
func questionKey(id model.QuestionID) string {
	return fmt.Sprintf("%s:question:%s", keyPrefix, id)
}

// questionsForLevelKey returns the Redis key for the SET of question ids at a level
func questionsForLevelKey(level int) string {
	return fmt.Sprintf("%s:idx:questions_for_level:%d", keyPrefix, level)
}

// questionsKey returns the Redis key for the SET of every question id
func questionsKey() string {
	return fmt.Sprintf("%s:idx:questions", keyPrefix)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gamesForUserKey returns the Redis key for the ZSET of a user's games, scored by creation time
func gamesForUserKey(userID model.UserID) string {
	return fmt.Sprintf("%s:idx:games_for_user:%s", keyPrefix, userID)
}
