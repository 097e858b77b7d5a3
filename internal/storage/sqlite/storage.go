package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/ladder/internal/model"
	"github.com/mcoot/ladder/internal/storage"
)

// Config holds SQLite settings
type Config struct {
	// Path is the database file; its directory is created if missing
	Path string
}

// Storage is a SQLite-backed implementation of the storage interface.
// Every write runs in a transaction, so a game and its questions (and any
// balance credit that settles it) commit together.
type Storage struct {
	db *sql.DB

	// SQLite allows one writer at a time; serializing here avoids SQLITE_BUSY
	writeMu sync.Mutex
}

// New opens (or creates) the database at cfg.Path and applies the schema
func New(cfg Config) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := cfg.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, display_name, balance, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				display_name = excluded.display_name,
				balance = excluded.balance`,
			string(user.ID), user.DisplayName, user.Balance, user.CreatedAt.UnixNano(),
		)
		return err
	})
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, balance, created_at FROM users WHERE id = ?`, string(id))

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	return user, err
}

func (s *Storage) CreditUser(ctx context.Context, id model.UserID, amount int) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return credit(ctx, tx, id, amount)
	})
}

func (s *Storage) ListUsersByBalance(ctx context.Context, limit int) ([]*model.User, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, balance, created_at FROM users
		ORDER BY balance DESC, id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Question pool operations

func (s *Storage) SaveQuestions(ctx context.Context, questions []model.Question) error {
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO questions (id, level, text, answer1, answer2, answer3, answer4)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				level = excluded.level,
				text = excluded.text,
				answer1 = excluded.answer1,
				answer2 = excluded.answer2,
				answer3 = excluded.answer3,
				answer4 = excluded.answer4`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, q := range questions {
			if _, err := stmt.ExecContext(ctx, string(q.ID), q.Level, q.Text,
				q.Answers[0], q.Answers[1], q.Answers[2], q.Answers[3]); err != nil {
				return fmt.Errorf("save question %s: %w", q.ID, err)
			}
		}
		return nil
	})
}

func (s *Storage) QuestionsForLevel(ctx context.Context, level int) ([]model.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, level, text, answer1, answer2, answer3, answer4
		FROM questions WHERE level = ? ORDER BY id`, level)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var q model.Question
		var id string
		if err := rows.Scan(&id, &q.Level, &q.Text,
			&q.Answers[0], &q.Answers[1], &q.Answers[2], &q.Answers[3]); err != nil {
			return nil, err
		}
		q.ID = model.QuestionID(id)
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Storage) QuestionCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n)
	return n, err
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return saveGame(ctx, tx, game)
	})
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, current_level, is_failed, finished_at, prize, created_at, updated_at
		FROM games WHERE id = ?`, string(id))

	game, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadQuestions(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

func (s *Storage) ListGamesForUser(ctx context.Context, userID model.UserID) ([]*model.Game, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, current_level, is_failed, finished_at, prize, created_at, updated_at
		FROM games WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, string(userID))
	if err != nil {
		return nil, err
	}

	games := []*model.Game{}
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		games = append(games, game)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	for _, game := range games {
		if err := s.loadQuestions(ctx, game); err != nil {
			return nil, err
		}
	}
	return games, nil
}

func (s *Storage) SettleGame(ctx context.Context, game *model.Game, amount int) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if amount != 0 {
			if err := credit(ctx, tx, game.UserID, amount); err != nil {
				return err
			}
		}
		return saveGame(ctx, tx, game)
	})
}

// inTx runs fn in a write transaction, committing only if fn succeeds
func (s *Storage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Storage) loadQuestions(ctx context.Context, game *model.Game) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT question, key_permutation, help_hash
		FROM game_questions WHERE game_id = ? ORDER BY level`, string(game.ID))
	if err != nil {
		return err
	}
	defer rows.Close()

	game.Questions = make([]model.GameQuestion, 0, model.LevelCount)
	for rows.Next() {
		var question, keys, help string
		if err := rows.Scan(&question, &keys, &help); err != nil {
			return err
		}

		var gq model.GameQuestion
		if err := json.Unmarshal([]byte(question), &gq.Question); err != nil {
			return fmt.Errorf("decode question for game %s: %w", game.ID, err)
		}
		if err := json.Unmarshal([]byte(keys), &gq.Keys); err != nil {
			return fmt.Errorf("decode key permutation for game %s: %w", game.ID, err)
		}
		if err := json.Unmarshal([]byte(help), &gq.Help); err != nil {
			return fmt.Errorf("decode help for game %s: %w", game.ID, err)
		}
		game.Questions = append(game.Questions, gq)
	}
	return rows.Err()
}

func credit(ctx context.Context, tx *sql.Tx, id model.UserID, amount int) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE users SET balance = balance + ? WHERE id = ?`, amount, string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", model.ErrUserNotFound, id)
	}
	return nil
}

func saveGame(ctx context.Context, tx *sql.Tx, game *model.Game) error {
	var finishedAt sql.NullInt64
	if game.FinishedAt != nil {
		finishedAt = sql.NullInt64{Int64: game.FinishedAt.UnixNano(), Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO games (id, user_id, current_level, is_failed, finished_at, prize, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			current_level = excluded.current_level,
			is_failed = excluded.is_failed,
			finished_at = excluded.finished_at,
			prize = excluded.prize,
			updated_at = excluded.updated_at`,
		string(game.ID), string(game.UserID), game.CurrentLevel, game.IsFailed, finishedAt,
		game.Prize, game.CreatedAt.UnixNano(), game.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save game %s: %w", game.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO game_questions (game_id, level, question, key_permutation, help_hash)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(game_id, level) DO UPDATE SET
			question = excluded.question,
			key_permutation = excluded.key_permutation,
			help_hash = excluded.help_hash`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range game.Questions {
		gq := &game.Questions[i]
		question, err := json.Marshal(gq.Question)
		if err != nil {
			return err
		}
		keys, err := json.Marshal(gq.Keys)
		if err != nil {
			return err
		}
		help, err := json.Marshal(gq.Help)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, string(game.ID), gq.Level(),
			string(question), string(keys), string(help)); err != nil {
			return fmt.Errorf("save game %s question %d: %w", game.ID, gq.Level(), err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*model.User, error) {
	var user model.User
	var id string
	var createdAt int64
	if err := row.Scan(&id, &user.DisplayName, &user.Balance, &createdAt); err != nil {
		return nil, err
	}
	user.ID = model.UserID(id)
	user.CreatedAt = time.Unix(0, createdAt).UTC()
	return &user, nil
}

func scanGame(row scanner) (*model.Game, error) {
	var game model.Game
	var id, userID string
	var finishedAt sql.NullInt64
	var createdAt, updatedAt int64
	if err := row.Scan(&id, &userID, &game.CurrentLevel, &game.IsFailed, &finishedAt,
		&game.Prize, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	game.ID = model.GameID(id)
	game.UserID = model.UserID(userID)
	game.CreatedAt = time.Unix(0, createdAt).UTC()
	game.UpdatedAt = time.Unix(0, updatedAt).UTC()
	if finishedAt.Valid {
		t := time.Unix(0, finishedAt.Int64).UTC()
		game.FinishedAt = &t
	}
	return &game, nil
}
