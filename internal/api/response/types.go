package response

import (
	"time"

	"github.com/mcoot/ladder/internal/model"
	"github.com/mcoot/ladder/internal/services/auth"
	"github.com/mcoot/ladder/internal/services/player"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Balance     int    `json:"balance"`
}

// PlayerFromModel converts a model.User to a response Player
func PlayerFromModel(u *model.User) Player {
	return Player{
		ID:          string(u.ID),
		DisplayName: u.DisplayName,
		Balance:     u.Balance,
	}
}

// AuthResponse is the response for creating a player
type AuthResponse struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session and its user
func AuthResponseFromSession(s *auth.Session, u *model.User) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(u),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Standing is one leaderboard row
type Standing struct {
	Rank   int    `json:"rank"`
	Player Player `json:"player"`
}

// LeaderboardResponse lists players by balance
type LeaderboardResponse struct {
	Standings []Standing `json:"standings"`
}

// LeaderboardFromStandings converts player standings
func LeaderboardFromStandings(standings []player.Standing) LeaderboardResponse {
	resp := LeaderboardResponse{Standings: make([]Standing, len(standings))}
	for i, st := range standings {
		resp.Standings[i] = Standing{Rank: st.Rank, Player: PlayerFromModel(st.User)}
	}
	return resp
}

// Help is the recorded result of one hint
type Help struct {
	Variants map[string]string `json:"variants,omitempty"`
	Votes    map[string]int    `json:"votes,omitempty"`
	Guess    string            `json:"guess,omitempty"`
}

// Question is the current question as shown to the player
type Question struct {
	Level    int               `json:"level"`
	Prize    int               `json:"prize"`
	Text     string            `json:"text"`
	Variants map[string]string `json:"variants"`
	Help     map[string]Help   `json:"help,omitempty"`

	// Only set once the game is over
	CorrectKey string `json:"correct_key,omitempty"`
}

// GameState is the full view of one game
type GameState struct {
	ID             string          `json:"id"`
	Status         string          `json:"status"`
	CurrentLevel   int             `json:"current_level"`
	PreviousLevel  int             `json:"previous_level"`
	Prize          int             `json:"prize"`
	BankedPrize    int             `json:"banked_prize"`
	FireproofPrize int             `json:"fireproof_prize"`
	HelpUsed       map[string]bool `json:"help_used"`
	Question       *Question       `json:"question,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	Deadline       time.Time       `json:"deadline"`
	FinishedAt     *time.Time      `json:"finished_at,omitempty"`
}

// GameStateFromModel converts a model.Game. The correct key of the current
// question is only revealed once the game is finished.
func GameStateFromModel(g *model.Game) GameState {
	resp := GameState{
		ID:             string(g.ID),
		Status:         string(g.Status()),
		CurrentLevel:   g.CurrentLevel,
		PreviousLevel:  g.PreviousLevel(),
		Prize:          g.Prize,
		BankedPrize:    model.PrizeFor(g.CurrentLevel),
		FireproofPrize: model.FireproofPrizeFor(g.CurrentLevel),
		HelpUsed:       make(map[string]bool, len(model.HelpKinds())),
		CreatedAt:      g.CreatedAt,
		Deadline:       g.CreatedAt.Add(model.TimeLimit),
		FinishedAt:     g.FinishedAt,
	}
	for _, kind := range model.HelpKinds() {
		resp.HelpUsed[string(kind)] = g.HelpUsed(kind)
	}

	q, err := g.CurrentGameQuestion()
	if err != nil {
		// Won games have cleared every level
		return resp
	}
	resp.Question = questionFromModel(q)
	if g.IsFinished() {
		resp.Question.CorrectKey = string(q.CorrectAnswerKey())
	}
	return resp
}

func questionFromModel(q *model.GameQuestion) *Question {
	resp := &Question{
		Level:    q.Level(),
		Prize:    model.PrizeFor(q.Level() + 1),
		Text:     q.Text(),
		Variants: make(map[string]string, model.AnswerSlots),
	}
	for key, text := range q.Variants() {
		resp.Variants[string(key)] = text
	}
	if len(q.Help) > 0 {
		resp.Help = make(map[string]Help, len(q.Help))
		for kind, p := range q.Help {
			resp.Help[string(kind)] = helpFromModel(p)
		}
	}
	return resp
}

func helpFromModel(p model.HelpPayload) Help {
	h := Help{Guess: p.Guess}
	if len(p.Variants) > 0 {
		h.Variants = make(map[string]string, len(p.Variants))
		for key, text := range p.Variants {
			h.Variants[string(key)] = text
		}
	}
	if len(p.Votes) > 0 {
		h.Votes = make(map[string]int, len(p.Votes))
		for key, pct := range p.Votes {
			h.Votes[string(key)] = pct
		}
	}
	return h
}

// AnswerResponse is the result of answering a question
type AnswerResponse struct {
	Correct bool      `json:"correct"`
	Game    GameState `json:"game"`
}

// GameSummary is one row in a player's game list
type GameSummary struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	CurrentLevel int        `json:"current_level"`
	Prize        int        `json:"prize"`
	CreatedAt    time.Time  `json:"created_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// GameListResponse lists a player's games, newest first
type GameListResponse struct {
	Games []GameSummary `json:"games"`
}

// GameListFromModels converts a list of games
func GameListFromModels(games []*model.Game) GameListResponse {
	resp := GameListResponse{Games: make([]GameSummary, len(games))}
	for i, g := range games {
		s := g.Summary()
		resp.Games[i] = GameSummary{
			ID:           string(s.ID),
			Status:       string(s.Status),
			CurrentLevel: s.CurrentLevel,
			Prize:        s.Prize,
			CreatedAt:    s.CreatedAt,
			FinishedAt:   s.FinishedAt,
		}
	}
	return resp
}

// HealthResponse reports server health
type HealthResponse struct {
	Status    string `json:"status"`
	Questions int    `json:"questions"`
}
