package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/ladder/internal/api"
	"github.com/mcoot/ladder/internal/api/apierr"
	"github.com/mcoot/ladder/internal/api/response"
	"github.com/mcoot/ladder/internal/factory"
	"github.com/mcoot/ladder/internal/model"
	"github.com/mcoot/ladder/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	// Mocked clock and random make the drawn questions and the correct key
	// predictable: with nothing queued the correct answer is always "d"
	app := factory.NewTestApp()
	require.NoError(t, app.LoadTestQuestions(2))

	router := api.NewRouter(api.RouterConfig{
		Logger:          testutil.NopLogger(),
		AuthService:     app.AuthService,
		PlayerService:   app.PlayerService,
		QuestionService: app.QuestionService,
		GameController:  app.GameController,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2*model.LevelCount, resp.Questions)
}

func TestCreatePlayer(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{"display_name": "Alice"}
	rr := ts.request(http.MethodPost, "/api/v1/players", body, "")

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, "Alice", resp.Player.DisplayName)
	assert.Equal(t, 0, resp.Player.Balance)
	assert.NotEmpty(t, resp.Player.ID)
	assert.NotEmpty(t, resp.SessionToken)
}

func TestCreatePlayerValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body any
		code string
	}{
		{"missing name", map[string]string{}, apierr.CodeInvalidRequest},
		{"blank name", map[string]string{"display_name": "   "}, apierr.CodeInvalidDisplayName},
		{"long name", map[string]string{"display_name": "abcdefghijklmnopqrstuvwxyz0123456"}, apierr.CodeInvalidDisplayName},
		{"no body", nil, apierr.CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/v1/players", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.code, errorCode(t, rr))
		})
	}
}

func TestGetMe(t *testing.T) {
	ts := newTestServer(t)
	token := createPlayer(t, ts, "Bob")

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var meResp response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &meResp))
	assert.Equal(t, "Bob", meResp.DisplayName)
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	token := createPlayer(t, ts, "Bob")

	rr := ts.request(http.MethodPost, "/api/v1/players/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.Bytes())

	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeUnauthorized, errorCode(t, rr))
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/games", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/games", nil, "sess_bogus")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeUnauthorized, errorCode(t, rr))
}

func TestCreateGameHidesCorrectKey(t *testing.T) {
	ts := newTestServer(t)
	token := createPlayer(t, ts, "Alice")
	ts.app.MockRandom.QueueString("GAME01")

	rr := ts.request(http.MethodPost, "/api/v1/games", nil, token)
	require.Equal(t, http.StatusCreated, rr.Code)

	var g response.GameState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &g))
	assert.Equal(t, "GAME01", g.ID)
	assert.Equal(t, "in_progress", g.Status)
	assert.Equal(t, 0, g.CurrentLevel)
	assert.Equal(t, -1, g.PreviousLevel)
	require.NotNil(t, g.Question)
	assert.Len(t, g.Question.Variants, 4)
	assert.Equal(t, "Right", g.Question.Variants["d"])
	assert.Empty(t, g.Question.CorrectKey)
	assert.True(t, g.CreatedAt.Add(model.TimeLimit).Equal(g.Deadline))
}

func TestOneGameAtATime(t *testing.T) {
	ts := newTestServer(t)
	token := createPlayer(t, ts, "Alice")
	ts.app.MockRandom.QueueString("GAME01", "GAME02")

	createGame(t, ts, token)

	rr := ts.request(http.MethodPost, "/api/v1/games", nil, token)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeGameInProgress, errorCode(t, rr))

	rr = ts.request(http.MethodGet, "/api/v1/games/current", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var current response.GameState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &current))
	assert.Equal(t, "GAME01", current.ID)
}

func TestAnswerAndTakeMoney(t *testing.T) {
	ts := newTestServer(t)
	token := createPlayer(t, ts, "Alice")
	ts.app.MockRandom.QueueString("GAME01")
	id := createGame(t, ts, token)

	for i := 0; i < 3; i++ {
		resp := answer(t, ts, token, id, "D")
		assert.True(t, resp.Correct)
	}

	rr := ts.request(http.MethodPost, "/api/v1/games/"+id+"/take-money", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var g response.GameState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &g))
	assert.Equal(t, "money", g.Status)
	assert.Equal(t, 300, g.Prize)
	assert.NotNil(t, g.FinishedAt)

	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	var me response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, 300, me.Balance)

	// Finished games reject further moves
	rr = ts.request(http.MethodPost, "/api/v1/games/"+id+"/answer", map[string]string{"key": "d"}, token)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeInvalidTransition, errorCode(t, rr))
}

func TestWrongAnswerRevealsCorrectKey(t *testing.T) {
	ts := newTestServer(t)
	token := createPlayer(t, ts, "Alice")
	ts.app.MockRandom.QueueString("GAME01")
	id := createGame(t, ts, token)

	resp := answer(t, ts, token, id, "a")
	assert.False(t, resp.Correct)
	assert.Equal(t, "fail", resp.Game.Status)
	require.NotNil(t, resp.Game.Question)
	assert.Equal(t, "d", resp.Game.Question.CorrectKey)
}

func TestTakeMoneyBeforeAnyAnswer(t *testing.T) {
	ts := newTestServer(t)
	token := createPlayer(t, ts, "Alice")
	ts.app.MockRandom.QueueString("GAME01")
	id := createGame(t, ts, token)

	rr := ts.request(http.MethodPost, "/api/v1/games/"+id+"/take-money", nil, token)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeInvalidTransition, errorCode(t, rr))
}

func TestInvalidAnswerKey(t *testing.T) {
	ts := newTestServer(t)
	token := createPlayer(t, ts, "Alice")
	ts.app.MockRandom.QueueString("GAME01")
	id := createGame(t, ts, token)

	rr := ts.request(http.MethodPost, "/api/v1/games/"+id+"/answer", map[string]string{"key": "e"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidAnswerKey, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/games/"+id+"/answer", map[string]string{}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rr))
}

func TestHelp(t *testing.T) {
	ts := newTestServer(t)
	token := createPlayer(t, ts, "Alice")
	ts.app.MockRandom.QueueString("GAME01")
	id := createGame(t, ts, token)

	rr := ts.request(http.MethodPost, "/api/v1/games/"+id+"/help", map[string]string{"type": "fifty_fifty"}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var g response.GameState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &g))
	assert.True(t, g.HelpUsed["fifty_fifty"])
	assert.False(t, g.HelpUsed["audience_help"])
	require.NotNil(t, g.Question)
	ff := g.Question.Help["fifty_fifty"]
	assert.Len(t, ff.Variants, 2)
	assert.Equal(t, "Right", ff.Variants["d"])

	rr = ts.request(http.MethodPost, "/api/v1/games/"+id+"/help", map[string]string{"type": "fifty_fifty"}, token)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeHelpAlreadyUsed, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/games/"+id+"/help", map[string]string{"type": "phone_a_stranger"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidHelpKind, errorCode(t, rr))
}

func TestGameOwnership(t *testing.T) {
	ts := newTestServer(t)
	alice := createPlayer(t, ts, "Alice")
	bob := createPlayer(t, ts, "Bob")
	ts.app.MockRandom.QueueString("GAME01")
	id := createGame(t, ts, alice)

	rr := ts.request(http.MethodGet, "/api/v1/games/"+id, nil, bob)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeNotGameOwner, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/games/"+id+"/answer", map[string]string{"key": "d"}, bob)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/games/nope", nil, bob)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeGameNotFound, errorCode(t, rr))
}

func TestReadingExpiredGameTimesItOut(t *testing.T) {
	ts := newTestServer(t)
	token := createPlayer(t, ts, "Alice")
	ts.app.MockRandom.QueueString("GAME01")
	id := createGame(t, ts, token)

	ts.app.MockClock.Advance(model.TimeLimit)

	rr := ts.request(http.MethodGet, "/api/v1/games/"+id, nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var g response.GameState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &g))
	assert.Equal(t, "timeout", g.Status)

	rr = ts.request(http.MethodGet, "/api/v1/games", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var list response.GameListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Games, 1)
	assert.Equal(t, "timeout", list.Games[0].Status)
}

func TestCreateGameWithEmptyPool(t *testing.T) {
	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:          testutil.NopLogger(),
		AuthService:     app.AuthService,
		PlayerService:   app.PlayerService,
		QuestionService: app.QuestionService,
		GameController:  app.GameController,
	})
	ts := &testServer{handler: router, app: app}
	token := createPlayer(t, ts, "Alice")

	rr := ts.request(http.MethodPost, "/api/v1/games", nil, token)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, apierr.CodeInsufficientQuestions, errorCode(t, rr))
}

func TestLeaderboard(t *testing.T) {
	ts := newTestServer(t)
	alice := createPlayer(t, ts, "Alice")
	createPlayer(t, ts, "Bob")
	ts.app.MockRandom.QueueString("GAME01")
	id := createGame(t, ts, alice)

	answer(t, ts, alice, id, "d")
	rr := ts.request(http.MethodPost, "/api/v1/games/"+id+"/take-money", nil, alice)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/leaderboard?limit=1", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var board response.LeaderboardResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
	require.Len(t, board.Standings, 1)
	assert.Equal(t, 1, board.Standings[0].Rank)
	assert.Equal(t, "Alice", board.Standings[0].Player.DisplayName)
	assert.Equal(t, 100, board.Standings[0].Player.Balance)

	rr = ts.request(http.MethodGet, "/api/v1/leaderboard?limit=zero", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// Helper functions

func createPlayer(t *testing.T, ts *testServer, displayName string) string {
	t.Helper()

	body := map[string]string{"display_name": displayName}
	rr := ts.request(http.MethodPost, "/api/v1/players", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	return resp.SessionToken
}

func createGame(t *testing.T, ts *testServer, token string) string {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/games", nil, token)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.GameState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	return resp.ID
}

func answer(t *testing.T, ts *testServer, token, id, key string) response.AnswerResponse {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/games/"+id+"/answer", map[string]string{"key": key}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.AnswerResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error.Code
}
