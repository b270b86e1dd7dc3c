package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"multichat/internal/handlers"
	"multichat/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService service.ChatService
	DB          *sql.DB
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(CORS)
	r.Use(RequestLogger)

	pageHandler := handlers.NewPageHandler(deps.ChatService)
	conversationHandler := handlers.NewConversationHandler(deps.ChatService)
	messageHandler := handlers.NewMessageHandler(deps.ChatService)
	botHandler := handlers.NewBotHandler(deps.ChatService)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	r.Method(http.MethodGet, "/", pageHandler)

	r.Route("/conversations", func(r chi.Router) {
		r.Post("/", conversationHandler.Create)
		r.Get("/{id}", conversationHandler.Get)
		r.Delete("/{id}", conversationHandler.Delete)
	})

	r.Method(http.MethodPost, "/message", messageHandler)

	r.Route("/bots", func(r chi.Router) {
		r.Post("/", botHandler.Create)
		r.Put("/{id}", botHandler.Update)
	})

	r.Method(http.MethodGet, "/api/health", healthHandler)

	return r
}
