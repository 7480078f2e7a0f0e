package zones

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/FieldPulse/FP-Attendance/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var validate = validator.New()

type zoneInput struct {
	Name            string  `json:"name" validate:"required"`
	Kind            string  `json:"kind" validate:"omitempty,oneof=office branch warehouse client_site custom"`
	CenterLat       float64 `json:"center_lat" validate:"min=-90,max=90"`
	CenterLng       float64 `json:"center_lng" validate:"min=-180,max=180"`
	RadiusMeters    float64 `json:"radius_m" validate:"required,gt=0"`
	Active          *bool   `json:"active"`
	AutoCheckIn     bool    `json:"auto_check_in"`
	AutoCheckOut    bool    `json:"auto_check_out"`
	WorkWindowStart string  `json:"work_window_start"`
	WorkWindowEnd   string  `json:"work_window_end"`
	ActiveWeekdays  []int64 `json:"active_weekdays" validate:"dive,min=1,max=7"`
	LoiteringDelayS int     `json:"loitering_delay_s" validate:"min=0"`
}

func orgIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	orgStr, ok := utils.GetOrgIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing organization in session", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	orgID, err := uuid.Parse(orgStr)
	if err != nil {
		http.Error(w, "Invalid organization ID", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	return orgID, true
}

func ListZonesHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromRequest(w, r)
	if !ok {
		return
	}

	zs := DefaultRegistry.List(orgID)
	if zs == nil {
		zs = []Zone{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(zs); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func GetZoneHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid zone ID", http.StatusBadRequest)
		return
	}

	z, err := DefaultRegistry.Get(id)
	if errors.Is(err, ErrZoneNotFound) {
		http.Error(w, "Zone not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(z)
}

func CreateZoneHandler(w http.ResponseWriter, r *http.Request) {
	upsertZone(w, r, uuid.Nil)
}

func UpdateZoneHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid zone ID", http.StatusBadRequest)
		return
	}
	upsertZone(w, r, id)
}

func upsertZone(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	orgID, ok := orgIDFromRequest(w, r)
	if !ok {
		return
	}

	var input zoneInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		http.Error(w, "Invalid zone: "+err.Error(), http.StatusBadRequest)
		return
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}
	kind := input.Kind
	if kind == "" {
		kind = KindOffice
	}

	z := Zone{
		ID:              id,
		OrganizationID:  orgID,
		Name:            input.Name,
		Kind:            kind,
		CenterLat:       input.CenterLat,
		CenterLng:       input.CenterLng,
		RadiusMeters:    input.RadiusMeters,
		Active:          active,
		AutoCheckIn:     input.AutoCheckIn,
		AutoCheckOut:    input.AutoCheckOut,
		WorkWindowStart: input.WorkWindowStart,
		WorkWindowEnd:   input.WorkWindowEnd,
		ActiveWeekdays:  pq.Int64Array(input.ActiveWeekdays),
		LoiteringDelayS: input.LoiteringDelayS,
	}

	if id == uuid.Nil {
		z.ID = uuid.New()
	} else {
		existing, err := DefaultRegistry.Get(id)
		if errors.Is(err, ErrZoneNotFound) {
			http.Error(w, "Zone not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if existing.OrganizationID != orgID {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}

	if err := DefaultRegistry.Upsert(z); err != nil {
		if errors.Is(err, ErrInvalidZone) {
			http.Error(w, "Zone rejected: invalid or duplicate name", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to save zone", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if id == uuid.Nil {
		status = http.StatusCreated
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(z)
}

func DeleteZoneHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDFromRequest(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid zone ID", http.StatusBadRequest)
		return
	}

	z, err := DefaultRegistry.Get(id)
	if errors.Is(err, ErrZoneNotFound) {
		http.Error(w, "Zone not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if z.OrganizationID != orgID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := DefaultRegistry.Remove(id); err != nil {
		http.Error(w, "Failed to delete zone", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
