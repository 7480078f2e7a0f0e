package attendance

import (
	"net/http"

	"github.com/FieldPulse/FP-Attendance/internal/auth"
	"github.com/FieldPulse/FP-Attendance/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Post("/check-in", CheckInHandler)
		r.Post("/check-out", CheckOutHandler)
		r.Post("/break", BreakHandler)
		r.Get("/today", TodayHandler)
		r.Get("/history", HistoryHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminMiddleware(sessionFetcher))
			r.Post("/override", OverrideHandler)
			r.Get("/report", ReportHandler)
		})
	})

	return r
}
