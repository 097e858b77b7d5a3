package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/ladder/internal/api"
	"github.com/mcoot/ladder/internal/api/response"
	"github.com/mcoot/ladder/internal/factory"
	"github.com/mcoot/ladder/internal/testutil"
)

type CLISuite struct {
	suite.Suite
	app       *factory.TestApp
	server    *httptest.Server
	tokenFile string
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	s.T().Setenv("LADDER_TOKEN", "")

	s.app = factory.NewTestApp()
	s.Require().NoError(s.app.LoadTestQuestions(1))

	s.server = httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:          testutil.NopLogger(),
		AuthService:     s.app.AuthService,
		PlayerService:   s.app.PlayerService,
		QuestionService: s.app.QuestionService,
		GameController:  s.app.GameController,
	}))
	s.tokenFile = filepath.Join(s.T().TempDir(), "token")
}

func (s *CLISuite) TearDownTest() {
	s.server.Close()
}

func (s *CLISuite) run(args ...string) (string, error) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", s.server.URL, "--token-file", s.tokenFile}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (s *CLISuite) mustRun(args ...string) string {
	out, err := s.run(args...)
	s.Require().NoError(err, out)
	return out
}

func (s *CLISuite) TestHealth() {
	out := s.mustRun("health")
	s.Contains(out, "Status: ok")
	s.Contains(out, "Questions: 15")
}

func (s *CLISuite) TestPlayerNewSavesToken() {
	out := s.mustRun("player", "new", "--name", "Alice")
	s.Contains(out, "Player: Alice")
	s.Contains(out, "Balance: 0 ₽")

	data, err := os.ReadFile(s.tokenFile)
	s.Require().NoError(err)
	s.NotEmpty(data)

	out = s.mustRun("player", "me")
	s.Contains(out, "Player: Alice")
}

func (s *CLISuite) TestPlayerLogout() {
	s.mustRun("player", "new", "--name", "Alice")

	out := s.mustRun("player", "logout")
	s.Contains(out, "Logged out")

	_, err := os.Stat(s.tokenFile)
	s.True(os.IsNotExist(err))

	_, err = s.run("player", "me")
	s.Require().Error(err)
	s.Contains(err.Error(), "UNAUTHORIZED")

	// Nothing to log out of
	s.mustRun("player", "logout")
}

func (s *CLISuite) TestPlayerNewRequiresName() {
	_, err := s.run("player", "new")
	s.Error(err)
}

func (s *CLISuite) TestFullGame() {
	s.app.MockRandom.QueueString("GAME01")
	s.mustRun("player", "new", "--name", "Alice")

	out := s.mustRun("game", "new")
	s.Contains(out, "Game: GAME01 (in_progress)")
	s.Contains(out, "Question 1 for 100 ₽:")
	s.Contains(out, "Hints left: fifty_fifty, audience_help, friend_call")

	out = s.mustRun("game", "answer", "GAME01", "d")
	s.Contains(out, "Correct!")
	s.Contains(out, "Question 2 for 200 ₽:")

	out = s.mustRun("game", "help", "GAME01", "fifty_fifty")
	s.Contains(out, "50/50: a, d")
	s.Contains(out, "Hints left: audience_help, friend_call")

	out = s.mustRun("game", "get")
	s.Contains(out, "Game: GAME01 (in_progress)")

	out = s.mustRun("game", "take-money", "GAME01")
	s.Contains(out, "Game: GAME01 (money)")
	s.Contains(out, "Prize: 100 ₽")

	out = s.mustRun("game", "list")
	s.Contains(out, "GAME01")
	s.Contains(out, "money")

	out = s.mustRun("leaderboard", "--limit", "5")
	s.Contains(out, "1. Alice  100 ₽")
}

func (s *CLISuite) TestWrongAnswerShowsCorrectKey() {
	s.app.MockRandom.QueueString("GAME01")
	s.mustRun("player", "new", "--name", "Bob")
	s.mustRun("game", "new")

	out := s.mustRun("game", "answer", "GAME01", "b")
	s.Contains(out, "Wrong.")
	s.Contains(out, "Game: GAME01 (fail)")
	s.Contains(out, " * d) Right")
}

func (s *CLISuite) TestJSONOutput() {
	s.mustRun("player", "new", "--name", "Carol")

	out := s.mustRun("-o", "json", "player", "me")
	var p response.Player
	s.Require().NoError(json.Unmarshal([]byte(out), &p))
	s.Equal("Carol", p.DisplayName)
}

func (s *CLISuite) TestAPIErrorsAreReported() {
	_, err := s.run("game", "new")
	s.Require().Error(err)
	s.Contains(err.Error(), "UNAUTHORIZED")

	s.mustRun("player", "new", "--name", "Dave")
	_, err = s.run("game", "get")
	s.Require().Error(err)
	s.Contains(err.Error(), "GAME_NOT_FOUND")
}

func (s *CLISuite) TestRejectsUnknownOutputFormat() {
	_, err := s.run("-o", "yaml", "health")
	s.Error(err)
}
