package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"chatbox-ai/internal/handlers"
	"chatbox-ai/internal/render"
	"chatbox-ai/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService service.ChatService
	Markdown    *render.Markdown
	DB          *sql.DB
	IndexHTML   string // Embedded HTML content
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(CORS)
	r.Use(LoggerMiddleware)

	sessionHandler := handlers.NewSessionHandler(deps.ChatService, deps.Markdown)
	chatHandler := handlers.NewChatHandler(deps.ChatService, deps.Markdown)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	// Register API routes
	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Post("/session", sessionHandler.Create)
		r.Route("/session/{sessionID}", func(r chi.Router) {
			r.Get("/", sessionHandler.Get)
			r.Method(http.MethodPost, "/message", chatHandler)
			r.Put("/model", sessionHandler.SelectModel)
			r.Post("/clear", sessionHandler.Clear)
			r.Delete("/", sessionHandler.Delete)
		})
	})

	// Serve the chat page at root
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(deps.IndexHTML))
	})

	return r
}
