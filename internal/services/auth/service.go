package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mcoot/ladder/internal/dependencies/clock"
	"github.com/mcoot/ladder/internal/model"
	"github.com/mcoot/ladder/internal/storage"
)

// MaxDisplayNameLength is the longest display name a player may choose
const MaxDisplayNameLength = 32

// Errors
var (
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrInvalidDisplayName = errors.New("display name must be 1-32 characters")
)

// Session ties a bearer token to a user
type Session struct {
	Token     string
	UserID    model.UserID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service creates guest players and tracks their sessions. Sessions live in
// memory only; users (and their balances) live in storage.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		storage:         storage,
		clock:           clock,
		logger:          logger,
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
	}
}

// CreateGuest creates a user with a zero balance and opens a session for it
func (s *Service) CreateGuest(ctx context.Context, displayName string) (*Session, *model.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" || utf8.RuneCountInString(displayName) > MaxDisplayNameLength {
		return nil, nil, ErrInvalidDisplayName
	}

	user := &model.User{
		ID:          model.UserID(uuid.NewString()),
		DisplayName: displayName,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, nil, err
	}

	session := s.createSession(user.ID)

	s.logger.Info("guest created",
		slog.String("user_id", string(user.ID)),
		slog.String("display_name", displayName),
	)
	return session, user, nil
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if !s.clock.Now().Before(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// CleanExpiredSessions removes expired sessions and returns how many went
func (s *Service) CleanExpiredSessions() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.sessions {
		if !now.Before(session.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// RunJanitor cleans expired sessions every interval until ctx is done
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.CleanExpiredSessions(); n > 0 {
				s.logger.Debug("expired sessions removed", slog.Int("count", n))
			}
		}
	}
}

func (s *Service) createSession(userID model.UserID) *Session {
	now := s.clock.Now()
	session := &Session{
		Token:     "sess_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session
}
