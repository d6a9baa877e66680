// Package router assembles the HTTP surface: public directory and
// availability reads, authenticated booking routes, and doctor-only template
// management.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/harborhealth/clinic-scheduler/internal/appointments"
	"github.com/harborhealth/clinic-scheduler/internal/availability"
	"github.com/harborhealth/clinic-scheduler/internal/doctors"
	httpmiddleware "github.com/harborhealth/clinic-scheduler/internal/http/middleware"
	"github.com/harborhealth/clinic-scheduler/internal/schedule"
	"github.com/harborhealth/clinic-scheduler/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	DoctorsHandler      *doctors.Handler
	ScheduleHandler     *schedule.Handler
	AvailabilityHandler *availability.Handler
	AppointmentsHandler *appointments.Handler
	MetricsHandler      http.Handler
	AuthSecret          string
	CORSAllowedOrigins  []string
	RateLimitPerSecond  float64
	RateLimitBurst      int
}

// New creates a chi router with all routes configured.
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
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	// Public endpoints: health, metrics, directory, availability reads.
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.DoctorsHandler != nil {
			public.Get("/api/doctors", cfg.DoctorsHandler.List)
			public.Get("/api/doctors/specialties", cfg.DoctorsHandler.Specialties)
			public.Get("/api/doctors/{id}", cfg.DoctorsHandler.Get)
		}
		if cfg.ScheduleHandler != nil {
			public.Get("/api/doctors/availability", cfg.ScheduleHandler.Batch)
			public.Get("/api/doctors/{id}/availability", cfg.ScheduleHandler.Day)
		}
	})

	// Authenticated routes.
	r.Group(func(authed chi.Router) {
		authed.Use(httpmiddleware.Auth(cfg.AuthSecret))

		if cfg.AppointmentsHandler != nil {
			authed.Route("/api/appointments", func(r chi.Router) {
				r.Post("/", cfg.AppointmentsHandler.Book)
				r.Get("/", cfg.AppointmentsHandler.ListMine)
				r.Put("/{id}", cfg.AppointmentsHandler.Reschedule)
				r.Delete("/{id}", cfg.AppointmentsHandler.Cancel)
			})
		}

		// Doctor-only routes.
		authed.Group(func(doctor chi.Router) {
			doctor.Use(httpmiddleware.RequireRole("doctor"))
			if cfg.AvailabilityHandler != nil {
				doctor.Get("/api/doctor/my-availability", cfg.AvailabilityHandler.GetMine)
				doctor.Post("/api/doctor/update-availability", cfg.AvailabilityHandler.UpdateMine)
			}
			if cfg.AppointmentsHandler != nil {
				doctor.Get("/api/doctor/appointments", cfg.AppointmentsHandler.ListForDoctor)
			}
		})
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status": "ok"}`))
}
