package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/ladder/internal/api/middleware"
	"github.com/mcoot/ladder/internal/api/request"
	"github.com/mcoot/ladder/internal/api/response"
	"github.com/mcoot/ladder/internal/model"
	"github.com/mcoot/ladder/internal/services/game"
)

// GameHandler handles game-related endpoints
type GameHandler struct {
	gameController game.ControllerInterface
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameController game.ControllerInterface) *GameHandler {
	return &GameHandler{
		gameController: gameController,
	}
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	g, err := h.gameController.CreateGameForUser(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameStateFromModel(g))
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	games, err := h.gameController.ListGamesForUser(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameListFromModels(games))
}

// Current handles GET /api/v1/games/current
func (h *GameHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	g, err := h.gameController.CurrentGameForUser(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameStateFromModel(g))
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	g, err := h.gameController.GetGame(r.Context(), gameID(r), userID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameStateFromModel(g))
}

// Answer handles POST /api/v1/games/{id}/answer
func (h *GameHandler) Answer(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	var req request.AnswerRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}
	key, err := model.ParseAnswerKey(req.Key)
	if err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.gameController.AnswerCurrentQuestion(r.Context(), gameID(r), userID, key)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AnswerResponse{
		Correct: result.Correct,
		Game:    response.GameStateFromModel(result.Game),
	})
}

// TakeMoney handles POST /api/v1/games/{id}/take-money
func (h *GameHandler) TakeMoney(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	g, err := h.gameController.TakeMoney(r.Context(), gameID(r), userID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameStateFromModel(g))
}

// Help handles POST /api/v1/games/{id}/help
func (h *GameHandler) Help(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	var req request.HelpRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}
	kind, err := model.ParseHelpKind(req.Type)
	if err != nil {
		WriteError(w, err)
		return
	}

	g, err := h.gameController.UseHelp(r.Context(), gameID(r), userID, kind)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameStateFromModel(g))
}

func gameID(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["id"])
}
