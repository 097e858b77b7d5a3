package model

import "errors"

// Common errors used across the application
var (
	// Game progression errors
	ErrInsufficientQuestions = errors.New("insufficient questions for level")
	ErrInvalidTransition     = errors.New("invalid game state transition")
	ErrOutOfQuestions        = errors.New("no game question for current level")
	ErrQuestionOrder         = errors.New("game questions are not ordered by level")

	// Game lookup errors
	ErrGameNotFound   = errors.New("game not found")
	ErrGameInProgress = errors.New("user already has a game in progress")
	ErrNotGameOwner   = errors.New("game belongs to another user")

	// Input errors
	ErrInvalidAnswerKey = errors.New("invalid answer key")
	ErrInvalidHelpKind  = errors.New("invalid help kind")
	ErrHelpAlreadyUsed  = errors.New("help has already been used in this game")
	ErrInvalidQuestion  = errors.New("invalid question")

	// User errors
	ErrUserNotFound = errors.New("user not found")
)
