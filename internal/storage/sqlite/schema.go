package sqlite

// Times are stored as Unix nanoseconds. Each game question keeps a JSON
// snapshot of the pool question it was drawn from, so later edits to the
// pool never change a game already in play.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id           TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	balance      INTEGER NOT NULL DEFAULT 0,
	created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_users_balance ON users(balance DESC);

CREATE TABLE IF NOT EXISTS questions (
	id      TEXT PRIMARY KEY,
	level   INTEGER NOT NULL,
	text    TEXT NOT NULL,
	answer1 TEXT NOT NULL,
	answer2 TEXT NOT NULL,
	answer3 TEXT NOT NULL,
	answer4 TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_questions_level ON questions(level);

CREATE TABLE IF NOT EXISTS games (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	current_level INTEGER NOT NULL,
	is_failed     INTEGER NOT NULL,
	finished_at   INTEGER,
	prize         INTEGER NOT NULL,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_games_user ON games(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS game_questions (
	game_id         TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	level           INTEGER NOT NULL,
	question        TEXT NOT NULL,
	key_permutation TEXT NOT NULL,
	help_hash       TEXT NOT NULL,
	PRIMARY KEY (game_id, level)
);
`
