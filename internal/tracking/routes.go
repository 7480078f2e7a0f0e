package tracking

import (
	"net/http"

	"github.com/FieldPulse/FP-Attendance/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(deviceSecret []byte) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.DeviceAuth(deviceSecret))
		r.With(middleware.SampleRateLimit(ActivePolicy.SampleInterval(), 4)).
			Post("/samples", SampleHandler)
		r.Post("/stop", StopHandler)
		r.Get("/status", StatusHandler)
	})

	return r
}
