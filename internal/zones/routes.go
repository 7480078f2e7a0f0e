package zones

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
		r.Get("/", ListZonesHandler)
		r.Get("/{id}", GetZoneHandler)

		// Zone edits are admin-only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminMiddleware(sessionFetcher))
			r.Post("/", CreateZoneHandler)
			r.Put("/{id}", UpdateZoneHandler)
			r.Delete("/{id}", DeleteZoneHandler)
		})
	})

	return r
}
