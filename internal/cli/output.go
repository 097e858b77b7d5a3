package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/ladder/internal/api/response"
	"github.com/mcoot/ladder/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Player:
		o.printPlayer(v)
	case response.AuthResponse:
		o.printAuthResult(v)
	case response.GameState:
		o.printGameState(v)
	case response.AnswerResponse:
		o.printAnswerResult(v)
	case response.GameListResponse:
		o.printGameList(v)
	case response.LeaderboardResponse:
		o.printLeaderboard(v)
	case response.HealthResponse:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printPlayer(p response.Player) {
	o.printf("Player: %s (%s)\n", p.DisplayName, p.ID)
	o.printf("Balance: %s\n", model.FormatMoney(p.Balance))
}

func (o *Output) printAuthResult(a response.AuthResponse) {
	o.printPlayer(a.Player)
	o.printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printGameState(g response.GameState) {
	o.printf("Game: %s (%s)\n", g.ID, g.Status)
	o.printf("Cleared: %d of %d\n", g.CurrentLevel, model.LevelCount)

	if g.Status == string(model.StatusInProgress) {
		o.printf("Banked: %s  Fireproof: %s\n", model.FormatMoney(g.BankedPrize), model.FormatMoney(g.FireproofPrize))
		o.printf("Deadline: %s\n", g.Deadline.Format("15:04:05 MST"))
		if left := hintsLeft(g.HelpUsed); len(left) > 0 {
			o.printf("Hints left: %s\n", strings.Join(left, ", "))
		}
	} else {
		o.printf("Prize: %s\n", model.FormatMoney(g.Prize))
	}

	if g.Question != nil {
		o.printQuestion(*g.Question)
	}
}

func (o *Output) printQuestion(q response.Question) {
	o.printf("\nQuestion %d for %s:\n", q.Level+1, model.FormatMoney(q.Prize))
	o.printf("%s\n", q.Text)
	for _, key := range model.AnswerKeys() {
		marker := " "
		if q.CorrectKey == string(key) {
			marker = "*"
		}
		o.printf(" %s %s) %s\n", marker, key, q.Variants[string(key)])
	}

	if h, ok := q.Help[string(model.HelpFiftyFifty)]; ok {
		var kept []string
		for _, key := range model.AnswerKeys() {
			if _, ok := h.Variants[string(key)]; ok {
				kept = append(kept, string(key))
			}
		}
		o.printf("50/50: %s\n", strings.Join(kept, ", "))
	}
	if h, ok := q.Help[string(model.HelpAudience)]; ok {
		parts := make([]string, 0, model.AnswerSlots)
		for _, key := range model.AnswerKeys() {
			parts = append(parts, fmt.Sprintf("%s %d%%", key, h.Votes[string(key)]))
		}
		o.printf("Audience: %s\n", strings.Join(parts, "  "))
	}
	if h, ok := q.Help[string(model.HelpFriendCall)]; ok {
		o.printf("Friend: %s\n", h.Guess)
	}
}

func (o *Output) printAnswerResult(a response.AnswerResponse) {
	if a.Correct {
		o.printf("Correct!\n")
	} else {
		o.printf("Wrong.\n")
	}
	o.printGameState(a.Game)
}

func (o *Output) printGameList(l response.GameListResponse) {
	if len(l.Games) == 0 {
		o.printf("No games yet\n")
		return
	}
	for _, g := range l.Games {
		o.printf("%s  %-11s  level %2d  %s  %s\n",
			g.ID, g.Status, g.CurrentLevel, model.FormatMoney(g.Prize), g.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func (o *Output) printLeaderboard(l response.LeaderboardResponse) {
	if len(l.Standings) == 0 {
		o.printf("No players yet\n")
		return
	}
	for _, s := range l.Standings {
		o.printf("%3d. %s  %s\n", s.Rank, s.Player.DisplayName, model.FormatMoney(s.Player.Balance))
	}
}

func (o *Output) printHealthResult(h response.HealthResponse) {
	o.printf("Status: %s\n", h.Status)
	o.printf("Questions: %d\n", h.Questions)
}

// hintsLeft lists unused hints in their standard order
func hintsLeft(used map[string]bool) []string {
	var left []string
	for _, kind := range model.HelpKinds() {
		if !used[string(kind)] {
			left = append(left, string(kind))
		}
	}
	return left
}
