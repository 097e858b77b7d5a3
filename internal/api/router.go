package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/ladder/internal/api/handler"
	"github.com/mcoot/ladder/internal/api/middleware"
	"github.com/mcoot/ladder/internal/api/response"
	"github.com/mcoot/ladder/internal/services/auth"
	"github.com/mcoot/ladder/internal/services/game"
	"github.com/mcoot/ladder/internal/services/player"
	"github.com/mcoot/ladder/internal/services/questions"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	AuthService     *auth.Service
	PlayerService   *player.Service
	QuestionService *questions.Service
	GameController  game.ControllerInterface
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService, cfg.PlayerService)
	gameHandler := handler.NewGameHandler(cfg.GameController)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Public routes
	api.HandleFunc("/health", healthHandler(cfg.QuestionService)).Methods(http.MethodGet)
	api.HandleFunc("/players", playerHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/leaderboard", playerHandler.Leaderboard).Methods(http.MethodGet)

	// Protected player routes
	players := api.PathPrefix("/players").Subrouter()
	players.Use(authMiddleware)
	players.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	players.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)

	// Game routes (all require auth)
	games := api.PathPrefix("/games").Subrouter()
	games.Use(authMiddleware)
	games.HandleFunc("", gameHandler.Create).Methods(http.MethodPost)
	games.HandleFunc("", gameHandler.List).Methods(http.MethodGet)
	games.HandleFunc("/current", gameHandler.Current).Methods(http.MethodGet)
	games.HandleFunc("/{id}", gameHandler.Get).Methods(http.MethodGet)
	games.HandleFunc("/{id}/answer", gameHandler.Answer).Methods(http.MethodPost)
	games.HandleFunc("/{id}/take-money", gameHandler.TakeMoney).Methods(http.MethodPost)
	games.HandleFunc("/{id}/help", gameHandler.Help).Methods(http.MethodPost)

	return r
}

func healthHandler(questionService *questions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := response.HealthResponse{Status: "ok"}
		if questionService != nil {
			n, err := questionService.Count(r.Context())
			if err != nil {
				resp.Status = "degraded"
			}
			resp.Questions = n
		}
		response.JSON(w, http.StatusOK, resp)
	}
}
