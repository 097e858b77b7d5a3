package model

import "time"

// UserID uniquely identifies a user across the system
type UserID string

// User is a player who can own games and receive prize money
type User struct {
	ID          UserID
	DisplayName string
	Balance     int // Only ever increased by settling a finished game
	CreatedAt   time.Time
}
