package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/maruonline/chat-widget/internal/chat"
	httpmiddleware "github.com/maruonline/chat-widget/internal/http/middleware"
	"github.com/maruonline/chat-widget/internal/leads"
	"github.com/maruonline/chat-widget/internal/widget"
	"github.com/maruonline/chat-widget/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *chat.Handler
	LeadsHandler       *leads.Handler
	WidgetHandler      *widget.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", handleHealth)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.ChatHandler != nil {
			api.Post("/chat", cfg.ChatHandler.HandleChat)
		}
		if cfg.LeadsHandler != nil {
			api.Post("/leads", cfg.LeadsHandler.SubmitLead)
		}
	})

	if cfg.WidgetHandler != nil {
		r.Get("/widget.js", cfg.WidgetHandler.HandleWidgetJS)
		r.Route("/widget", func(w chi.Router) {
			w.Get("/ws", cfg.WidgetHandler.HandleWebSocket)
			w.Post("/message", cfg.WidgetHandler.HandleMessage)
			w.Get("/history", cfg.WidgetHandler.HandleHistory)
		})
	}

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
