package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/chocoalano/esas-api/internal/handler/http/middleware"
	"github.com/chocoalano/esas-api/internal/handler/http/response"
	"github.com/chocoalano/esas-api/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, presenceHandler PresenceHandler, attendanceHandler AttendanceHandler) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			timeout := chiMiddleware.Timeout(opts.RequestTimeout)

			r.Route("/presence", func(r chi.Router) {
				r.With(timeout).Post("/redeem", presenceHandler.Redeem)

				// Kiosk operators
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Use(middleware.RequireCompany)

					// Long-lived stream
					r.Get("/events", presenceHandler.Events)

					r.Group(func(r chi.Router) {
						r.Use(timeout)
						r.Post("/tokens", presenceHandler.IssueToken)
						r.Get("/tokens/{id}/qrcode", presenceHandler.QRCode)
					})
				})
			})

			r.With(timeout).Get("/attendances/me", attendanceHandler.GetMyAttendance)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	return r
}
