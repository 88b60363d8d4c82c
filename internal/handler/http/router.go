package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/worklens/worklens-agent-go/internal/handler/http/middleware"
	"github.com/worklens/worklens-agent-go/internal/pkg/jwt"
	"github.com/worklens/worklens-agent-go/internal/realtime"
)

// NewRouter wires the simulator's attendance API: the today-session fetch,
// the four state-changing actions, the websocket realtime channel, and the
// presence view derived from heartbeats.
func NewRouter(jwtService jwt.Service, attendanceHandler AttendanceHandler, hub *realtime.Hub) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "worklens-simulator"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/ws", hub.HandleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/today", attendanceHandler.Today)
				r.Post("/check-in", attendanceHandler.CheckIn)
				r.Post("/checkout", attendanceHandler.CheckOut)
				r.Post("/break-start", attendanceHandler.BreakStart)
				r.Post("/break-end", attendanceHandler.BreakEnd)
			})

			r.Get("/presence", attendanceHandler.Presence)
		})
	})
	return r
}
