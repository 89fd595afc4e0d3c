package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ninebox-hr/ninebox-backend-go/internal/handler/http/middleware"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/jwt"
)

// RouterOptions holds the settings the router takes from configuration.
type RouterOptions struct {
	AppName        string
	Version        string
	Env            string
	LogLevel       slog.Level
	AllowedOrigins []string
}

// NewRouter mounts the API. With a nil JWTService the session routes are open
// and no token endpoints exist.
func NewRouter(JWTService jwt.Service, tokenHandler TokenHandler, sessionHandler SessionHandler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", opts.AppName),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		if JWTService != nil {
			r.Post("/token", tokenHandler.Issue)
		}

		// The event stream authenticates with a query token of its own
		r.Get("/session/events", sessionHandler.Stream)

		r.Group(func(r chi.Router) {
			if JWTService != nil {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
				r.Post("/token/stream", tokenHandler.IssueStream)
			}

			r.Route("/session", func(r chi.Router) {
				r.Post("/import", sessionHandler.Import)

				r.Route("/employees", func(r chi.Router) {
					r.Get("/", sessionHandler.ListEmployees)
					r.Get("/{id}", sessionHandler.GetEmployee)
				})

				r.Post("/moves", sessionHandler.Move)
				r.Get("/movements", sessionHandler.ListMovements)
				r.Put("/movements/{id}/note", sessionHandler.SetNote)

				r.Route("/donut", func(r chi.Router) {
					r.Post("/moves", sessionHandler.DonutMove)
					r.Get("/movements", sessionHandler.ListDonutMovements)
					r.Put("/movements/{id}/note", sessionHandler.SetDonutNote)
				})

				r.Get("/anomalies", sessionHandler.Anomalies)
				r.Get("/score", sessionHandler.Score)

				r.Post("/export", sessionHandler.Export)
				r.Get("/export", sessionHandler.DownloadExport)
				r.Post("/snapshot", sessionHandler.Snapshot)
				r.Post("/restore/{id}", sessionHandler.Restore)
				r.Delete("/snapshots/{id}", sessionHandler.DeleteSnapshot)
			})
		})
	})
	return r
}
