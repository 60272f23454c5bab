package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"secrecy-ai/internal/auth"
	"secrecy-ai/internal/config"
	"secrecy-ai/internal/events"
	"secrecy-ai/internal/export"
	"secrecy-ai/internal/handlers"
	"secrecy-ai/internal/ledger"
	"secrecy-ai/internal/service"
	"secrecy-ai/internal/storage"
	"secrecy-ai/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Config      *config.Config
	DB          *sql.DB
	Bus         *events.Bus
	JWT         *auth.JWT
	Users       storage.UserStore
	Tokens      *ledger.Ledger
	Chats       service.ChatService
	Notes       service.NoteService
	Analyzer    service.AnalyzerService
	VectorStore vectorstore.VectorStore
}

// NewRouter creates the HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS(deps.Config.CORSAllowedOrigins, deps.Config.CORSAllowCredentials))

	authHandler := handlers.NewAuthHandler(deps.Users, deps.JWT, deps.Tokens)
	chatHandler := handlers.NewChatHandler(deps.Chats)
	noteHandler := handlers.NewNoteHandler(deps.Notes, export.New())
	tokenHandler := handlers.NewTokenHandler(deps.Tokens)
	analyzerHandler := handlers.NewAnalyzerHandler(deps.Analyzer)
	eventsHandler := handlers.NewEventsHandler(deps.Bus)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.VectorStore, deps.Config.QdrantCollection)

	r.Method(http.MethodGet, "/health", healthHandler)
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.JWT))

		r.Route("/chats", func(r chi.Router) {
			r.Get("/", chatHandler.List)
			r.Post("/", chatHandler.Create)
			r.Get("/{id}", chatHandler.Get)
			r.Post("/{id}/messages", chatHandler.Send)
			r.Patch("/{id}/title", chatHandler.Rename)
			r.Patch("/{id}/pin", chatHandler.Pin)
			r.Post("/{id}/clear", chatHandler.Clear)
			r.Delete("/{id}", chatHandler.Delete)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", noteHandler.List)
			r.Post("/", noteHandler.Create)
			r.Get("/search", noteHandler.Search)
			r.Get("/{id}", noteHandler.Get)
			r.Put("/{id}", noteHandler.Update)
			r.Delete("/{id}", noteHandler.Delete)
			r.Get("/{id}/export", noteHandler.Export)
		})

		r.Route("/tokens", func(r chi.Router) {
			r.Get("/", tokenHandler.Get)
			r.Post("/credit", tokenHandler.Credit)
		})

		r.Post("/analyzer", analyzerHandler.Analyze)
		r.Post("/analyzer/pin", analyzerHandler.Pin)

		r.Method(http.MethodGet, "/events", eventsHandler)
	})

	return r
}
