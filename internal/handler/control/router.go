package control

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// NewRouter wires the agent's localhost control surface. No bearer auth:
// the listener binds loopback only and trusts the local user, the way the
// desktop shell trusts its own renderer.
func NewRouter(trackingHandler TrackingHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "worklens-agent"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1/tracking", func(r chi.Router) {
		r.Get("/status", trackingHandler.Status)
		r.Post("/check-in", trackingHandler.CheckIn)
		r.Post("/checkout", trackingHandler.CheckOut)
		r.Post("/break-start", trackingHandler.BreakStart)
		r.Post("/break-end", trackingHandler.BreakEnd)
	})
	return r
}
