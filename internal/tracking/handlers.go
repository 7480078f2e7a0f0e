package tracking

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/FieldPulse/FP-Attendance/internal/middleware"
	"github.com/FieldPulse/FP-Attendance/internal/syncqueue"
	"github.com/FieldPulse/FP-Attendance/internal/zones"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// SampleHandler ingests one position fix from an enrolled device. The device
// token on the request decides whose stream the sample joins.
func SampleHandler(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := middleware.GetDeviceEmployeeID(r.Context())
	if !ok {
		http.Error(w, "Missing device identity", http.StatusUnauthorized)
		return
	}
	orgID, ok := middleware.GetDeviceOrgID(r.Context())
	if !ok {
		http.Error(w, "Missing device identity", http.StatusUnauthorized)
		return
	}

	var sample Sample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(sample); err != nil {
		http.Error(w, "Invalid sample: "+err.Error(), http.StatusBadRequest)
		return
	}
	if sample.CapturedAt.After(time.Now().Add(time.Minute)) {
		http.Error(w, "Sample timestamp is in the future", http.StatusBadRequest)
		return
	}

	if err := DefaultTracker.Submit(employeeID, orgID, sample); err != nil {
		http.Error(w, "Tracking unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// StopHandler halts tracking for the device's employee, called when the app
// user logs out or revokes location consent.
func StopHandler(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := middleware.GetDeviceEmployeeID(r.Context())
	if !ok {
		http.Error(w, "Missing device identity", http.StatusUnauthorized)
		return
	}

	DefaultTracker.StopSubject(employeeID)
	w.WriteHeader(http.StatusOK)
}

type StatusResponse struct {
	MonitoringDegraded bool       `json:"monitoring_degraded"`
	PendingWrites      int        `json:"pending_writes"`
	LastSyncAt         *time.Time `json:"last_sync_at,omitempty"`
}

// StatusHandler reports pipeline health to the device so the app can surface
// "working in degraded mode" to the user.
func StatusHandler(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		MonitoringDegraded: zones.DefaultRegistry.Degraded(),
	}
	if q := syncqueue.DefaultQueue; q != nil {
		resp.PendingWrites = q.PendingCount()
		if last := q.LastSyncAt(); !last.IsZero() {
			resp.LastSyncAt = &last
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
