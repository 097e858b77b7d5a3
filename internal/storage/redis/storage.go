package redis

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/ladder/internal/model"
	"github.com/mcoot/ladder/internal/storage"
)

// Optimistic transactions are retried this many times before giving up
const maxWatchRetries = 10

// creditScript increments a user's balance and leaderboard score together,
// returning 0 without writing if the user does not exist
var creditScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
redis.call("HINCRBY", KEYS[1], "balance", ARGV[1])
redis.call("ZINCRBY", KEYS[2], ARGV[1], ARGV[2])
return 1
`)

// Storage is a Redis-backed implementation of the storage interface.
//
// Users are HASHes so balances can be credited with HINCRBY; the leaderboard
// is a ZSET kept in step with every credit. Questions and games are JSON
// blobs with SET/ZSET indexes alongside.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// userRecord is the HASH layout of a user
type userRecord struct {
	ID          string `redis:"id"`
	DisplayName string `redis:"display_name"`
	Balance     int64  `redis:"balance"`
	CreatedAt   int64  `redis:"created_at"`
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, userKey(user.ID),
			"id", string(user.ID),
			"display_name", user.DisplayName,
			"balance", user.Balance,
			"created_at", user.CreatedAt.UnixNano(),
		)
		pipe.ZAdd(ctx, usersByBalanceKey(), redis.Z{Score: float64(user.Balance), Member: string(user.ID)})
		return nil
	})
	return err
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return readUser(s.client.HGetAll(ctx, userKey(id)))
}

func (s *Storage) CreditUser(ctx context.Context, id model.UserID, amount int) error {
	found, err := creditScript.Run(ctx, s.client,
		[]string{userKey(id), usersByBalanceKey()},
		amount, string(id),
	).Int()
	if err != nil {
		return err
	}
	if found == 0 {
		return fmt.Errorf("%w: %s", model.ErrUserNotFound, id)
	}
	return nil
}

func (s *Storage) ListUsersByBalance(ctx context.Context, limit int) ([]*model.User, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	ids, err := s.client.ZRevRange(ctx, usersByBalanceKey(), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.User{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	pipe := s.client.Pipeline()
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, userKey(model.UserID(id)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(cmds))
	for _, cmd := range cmds {
		user, err := readUser(cmd)
		if errors.Is(err, model.ErrUserNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// Question pool operations

func (s *Storage) SaveQuestions(ctx context.Context, questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}

	keys := make([]string, len(questions))
	blobs := make([][]byte, len(questions))
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
		data, err := json.Marshal(q)
		if err != nil {
			return err
		}
		keys[i] = questionKey(q.ID)
		blobs[i] = data
	}

	// Existing questions may be moving level, so their old index entry goes
	existing, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, q := range questions {
			if raw, ok := existing[i].(string); ok {
				var old model.Question
				if err := json.Unmarshal([]byte(raw), &old); err == nil {
					pipe.SRem(ctx, questionsForLevelKey(old.Level), string(q.ID))
				}
			}
			pipe.Set(ctx, keys[i], blobs[i], 0)
			pipe.SAdd(ctx, questionsForLevelKey(q.Level), string(q.ID))
			pipe.SAdd(ctx, questionsKey(), string(q.ID))
		}
		return nil
	})
	return err
}

func (s *Storage) QuestionsForLevel(ctx context.Context, level int) ([]model.Question, error) {
	ids, err := s.client.SMembers(ctx, questionsForLevelKey(level)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.Question{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = questionKey(model.QuestionID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	questions := make([]model.Question, 0, len(values))
	for i, val := range values {
		raw, ok := val.(string)
		if !ok {
			continue
		}
		var q model.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, fmt.Errorf("decode question %s: %w", ids[i], err)
		}
		questions = append(questions, q)
	}
	slices.SortFunc(questions, func(a, b model.Question) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return questions, nil
}

func (s *Storage) QuestionCount(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, questionsKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.queueGame(ctx, pipe, game, data)
		return nil
	})
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) ListGamesForUser(ctx context.Context, userID model.UserID) ([]*model.Game, error) {
	ids, err := s.client.ZRevRange(ctx, gamesForUserKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Game{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameKey(model.GameID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*model.Game, 0, len(values))
	for i, val := range values {
		raw, ok := val.(string)
		if !ok {
			continue // Game may have expired
		}
		var game model.Game
		if err := json.Unmarshal([]byte(raw), &game); err != nil {
			return nil, fmt.Errorf("decode game %s: %w", ids[i], err)
		}
		games = append(games, &game)
	}
	return games, nil
}

func (s *Storage) SettleGame(ctx context.Context, game *model.Game, amount int) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	return s.watch(ctx, func(tx *redis.Tx) error {
		if amount != 0 {
			if err := requireUser(ctx, tx, game.UserID); err != nil {
				return err
			}
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			s.queueGame(ctx, pipe, game, data)
			if amount != 0 {
				queueCredit(ctx, pipe, game.UserID, amount)
			}
			return nil
		})
		return err
	}, userKey(game.UserID))
}

// queueGame adds the writes for a game blob and its user index to pipe
func (s *Storage) queueGame(ctx context.Context, pipe redis.Pipeliner, game *model.Game, data []byte) {
	var ttl time.Duration
	if game.IsFinished() {
		ttl = s.cfg.FinishedGameTTL
	}
	pipe.Set(ctx, gameKey(game.ID), data, ttl)
	pipe.ZAdd(ctx, gamesForUserKey(game.UserID), redis.Z{
		Score:  float64(game.CreatedAt.UnixMilli()),
		Member: string(game.ID),
	})
}

// watch runs fn as an optimistic transaction over keys, retrying on conflict
func (s *Storage) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < maxWatchRetries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

func queueCredit(ctx context.Context, pipe redis.Pipeliner, id model.UserID, amount int) {
	pipe.HIncrBy(ctx, userKey(id), "balance", int64(amount))
	pipe.ZIncrBy(ctx, usersByBalanceKey(), float64(amount), string(id))
}

func requireUser(ctx context.Context, tx *redis.Tx, id model.UserID) error {
	n, err := tx.Exists(ctx, userKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", model.ErrUserNotFound, id)
	}
	return nil
}

func readUser(cmd *redis.MapStringStringCmd) (*model.User, error) {
	fields, err := cmd.Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, model.ErrUserNotFound
	}

	var rec userRecord
	if err := cmd.Scan(&rec); err != nil {
		return nil, err
	}
	return &model.User{
		ID:          model.UserID(rec.ID),
		DisplayName: rec.DisplayName,
		Balance:     int(rec.Balance),
		CreatedAt:   time.Unix(0, rec.CreatedAt).UTC(),
	}, nil
}
