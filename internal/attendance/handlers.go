package attendance

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/FieldPulse/FP-Attendance/internal/geo"
	"github.com/FieldPulse/FP-Attendance/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

func subjectFromRequest(w http.ResponseWriter, r *http.Request) (employeeID, orgID uuid.UUID, ok bool) {
	userStr, found := utils.GetUserIDFromContext(r.Context())
	if !found {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}
	orgStr, found := utils.GetOrgIDFromContext(r.Context())
	if !found {
		http.Error(w, "Missing organization in session", http.StatusUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}
	employeeID, err := uuid.Parse(userStr)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}
	orgID, err = uuid.Parse(orgStr)
	if err != nil {
		http.Error(w, "Invalid organization ID", http.StatusUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}
	return employeeID, orgID, true
}

type checkInput struct {
	Method string   `json:"method" validate:"omitempty,oneof=manual qr_code"`
	Lat    *float64 `json:"lat" validate:"omitempty,min=-90,max=90"`
	Lng    *float64 `json:"lng" validate:"omitempty,min=-180,max=180"`
}

func (in checkInput) location() *geo.Point {
	if in.Lat == nil || in.Lng == nil {
		return nil
	}
	return &geo.Point{Lat: *in.Lat, Lng: *in.Lng}
}

func (in checkInput) method() string {
	if in.Method == "" {
		return MethodManual
	}
	return in.Method
}

func writeRecord(w http.ResponseWriter, rec Record, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(rec)
}

func CheckInHandler(w http.ResponseWriter, r *http.Request) {
	employeeID, orgID, ok := subjectFromRequest(w, r)
	if !ok {
		return
	}

	var input checkInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		http.Error(w, "Invalid check-in: "+err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := Svc.CheckIn(r.Context(), employeeID, orgID, input.method(), time.Now(), input.location())
	if err != nil {
		http.Error(w, "Check-in failed", http.StatusInternalServerError)
		return
	}
	writeRecord(w, rec, http.StatusOK)
}

func CheckOutHandler(w http.ResponseWriter, r *http.Request) {
	employeeID, _, ok := subjectFromRequest(w, r)
	if !ok {
		return
	}

	var input checkInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		http.Error(w, "Invalid check-out: "+err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := Svc.CheckOut(r.Context(), employeeID, input.method(), time.Now(), input.location())
	switch {
	case errors.Is(err, ErrNotCheckedIn):
		http.Error(w, "Not checked in today", http.StatusConflict)
		return
	case errors.Is(err, ErrInvalidOrdering):
		http.Error(w, "Check-out cannot precede check-in", http.StatusUnprocessableEntity)
		return
	case err != nil:
		http.Error(w, "Check-out failed", http.StatusInternalServerError)
		return
	}
	writeRecord(w, rec, http.StatusOK)
}

func BreakHandler(w http.ResponseWriter, r *http.Request) {
	employeeID, _, ok := subjectFromRequest(w, r)
	if !ok {
		return
	}

	rec, err := Svc.ToggleBreak(r.Context(), employeeID, time.Now())
	if errors.Is(err, ErrNotCheckedIn) {
		http.Error(w, "Not checked in today", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, "Break toggle failed", http.StatusInternalServerError)
		return
	}
	writeRecord(w, rec, http.StatusOK)
}

func TodayHandler(w http.ResponseWriter, r *http.Request) {
	employeeID, _, ok := subjectFromRequest(w, r)
	if !ok {
		return
	}

	rec, err := Svc.Today(employeeID, time.Now())
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeRecord(w, rec, http.StatusOK)
}

// dateRange pulls from/to query params, defaulting to the last 30 days.
func dateRange(r *http.Request) (string, string) {
	now := time.Now()
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" {
		from = DateKey(now.AddDate(0, 0, -30))
	}
	if to == "" {
		to = DateKey(now)
	}
	return from, to
}

func HistoryHandler(w http.ResponseWriter, r *http.Request) {
	employeeID, _, ok := subjectFromRequest(w, r)
	if !ok {
		return
	}

	from, to := dateRange(r)
	recs, err := Svc.History(employeeID, from, to)
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recs)
}

type overrideInput struct {
	EmployeeID string     `json:"employee_id" validate:"required,uuid"`
	Date       string     `json:"date" validate:"required,datetime=2006-01-02"`
	Status     string     `json:"status" validate:"omitempty,oneof=not_checked_in checked_in checked_out absent half_day on_break"`
	CheckInAt  *time.Time `json:"check_in_at"`
	CheckOutAt *time.Time `json:"check_out_at"`
	Reason     string     `json:"reason" validate:"required"`
}

func OverrideHandler(w http.ResponseWriter, r *http.Request) {
	adminID, orgID, ok := subjectFromRequest(w, r)
	if !ok {
		return
	}

	var input overrideInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		http.Error(w, "Invalid override: "+err.Error(), http.StatusBadRequest)
		return
	}

	employeeID, err := uuid.Parse(input.EmployeeID)
	if err != nil {
		http.Error(w, "Invalid employee ID", http.StatusBadRequest)
		return
	}

	rec, err := Svc.Override(r.Context(), employeeID, orgID, input.Date, OverrideInput{
		Status:     input.Status,
		CheckInAt:  input.CheckInAt,
		CheckOutAt: input.CheckOutAt,
		AdminID:    adminID.String(),
		Reason:     input.Reason,
	})
	if errors.Is(err, ErrInvalidOrdering) {
		http.Error(w, "Check-out cannot precede check-in", http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		http.Error(w, "Override failed", http.StatusInternalServerError)
		return
	}
	writeRecord(w, rec, http.StatusOK)
}

func ReportHandler(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := subjectFromRequest(w, r)
	if !ok {
		return
	}

	from, to := dateRange(r)
	recs, err := Svc.Report(orgID, from, to)
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recs)
}
