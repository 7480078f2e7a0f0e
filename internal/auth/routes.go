package auth

import (
	"net/http"

	"github.com/FieldPulse/FP-Attendance/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := SessionInfo{}

	r.Post("/register", RegisterHandler)
	r.Post("/login", LoginHandler)
	r.Post("/logout", LogoutHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Get("/me", MeHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminMiddleware(sessionFetcher))
			r.Post("/device-token", DeviceTokenHandler)
		})
	})

	return r
}
