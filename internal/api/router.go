package api

import (
	"net/http"
	"time"

	"nomad-health-backend/internal/config"
	"nomad-health-backend/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration.
type RouterDependencies struct {
	AuthHandler         *handlers.AuthHandler
	ConsultHandler      *handlers.ConsultHandler
	HealthReportHandler *handlers.HealthReportHandler
	Config              *config.Config
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Liveness probe.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Uploaded media (audio clips referenced by message media URLs).
	fileServer := http.StripPrefix("/static/uploads/", http.FileServer(http.Dir(deps.Config.UploadDir)))
	r.Get("/static/uploads/*", fileServer.ServeHTTP)

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/register", deps.AuthHandler.HandleRegister)
		r.Post("/login", deps.AuthHandler.HandleLogin)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(JwtAuthMiddleware(deps.Config.JWTSecret))

		r.Route("/consult", func(r chi.Router) {
			r.Post("/sessions", deps.ConsultHandler.HandleCreateSession)
			r.Get("/sessions", deps.ConsultHandler.HandleListSessions)
			r.Get("/sessions/{sessionID}", deps.ConsultHandler.HandleGetSession)
			r.Put("/sessions/{sessionID}", deps.ConsultHandler.HandleUpdateSession)
			r.Post("/sessions/{sessionID}/messages", deps.ConsultHandler.HandleSendMessage)
			r.Post("/sessions/{sessionID}/audio", deps.ConsultHandler.HandleUploadAudio)
			r.Post("/medical-qa", deps.ConsultHandler.HandleMedicalQA)
		})

		r.Route("/health/reports", func(r chi.Router) {
			r.Post("/", deps.HealthReportHandler.HandleCreateReport)
			r.Get("/", deps.HealthReportHandler.HandleListReports)
			r.Get("/{reportID}", deps.HealthReportHandler.HandleGetReport)
			r.Put("/{reportID}", deps.HealthReportHandler.HandleUpdateReport)
			r.Delete("/{reportID}", deps.HealthReportHandler.HandleDeleteReport)
		})
	})

	return r
}
