package handler

import (
	"net/http"
	"strconv"

	"github.com/mcoot/ladder/internal/api/middleware"
	"github.com/mcoot/ladder/internal/api/request"
	"github.com/mcoot/ladder/internal/api/response"
	"github.com/mcoot/ladder/internal/services/auth"
	"github.com/mcoot/ladder/internal/services/player"
)

// PlayerHandler handles player and leaderboard endpoints
type PlayerHandler struct {
	authService   *auth.Service
	playerService *player.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authService *auth.Service, playerService *player.Service) *PlayerHandler {
	return &PlayerHandler{
		authService:   authService,
		playerService: playerService,
	}
}

// Create handles POST /api/v1/players
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePlayerRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	session, user, err := h.authService.CreateGuest(r.Context(), req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session, user))
}

// GetMe handles GET /api/v1/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.MustGetUserID(r.Context())

	user, err := h.playerService.Get(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(user))
}

// Leaderboard handles GET /api/v1/leaderboard
func (h *PlayerHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			WriteError(w, NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = n
	}

	standings, err := h.playerService.Leaderboard(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromStandings(standings))
}

// Logout handles POST /api/v1/players/logout
func (h *PlayerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := middleware.GetSession(r.Context()); session != nil {
		h.authService.InvalidateSession(session.Token)
	}
	response.NoContent(w)
}
