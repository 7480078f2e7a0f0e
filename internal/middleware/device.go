package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type deviceContextKey string

const (
	ContextDeviceEmployeeKey deviceContextKey = "deviceEmployeeID"
	ContextDeviceOrgKey      deviceContextKey = "deviceOrgID"
)

// DeviceClaims are the custom claims minted for a field device. One token per
// enrolled device, scoped to a single employee.
type DeviceClaims struct {
	EmployeeID string `json:"employee_id"`
	OrgID      string `json:"org_id"`
	DeviceID   string `json:"device_id"`
	jwt.RegisteredClaims
}

// DeviceAuth validates the Bearer token on device-facing endpoints (sample
// ingest, tracking stop) and puts employee/org IDs on the request context.
func DeviceAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "Missing bearer token", http.StatusUnauthorized)
				return
			}
			tokenStr := strings.TrimPrefix(header, "Bearer ")

			claims := &DeviceClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			if _, err := uuid.Parse(claims.EmployeeID); err != nil {
				http.Error(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}
			if _, err := uuid.Parse(claims.OrgID); err != nil {
				http.Error(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ContextDeviceEmployeeKey, claims.EmployeeID)
			ctx = context.WithValue(ctx, ContextDeviceOrgKey, claims.OrgID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetDeviceEmployeeID(ctx context.Context) (uuid.UUID, bool) {
	s, ok := ctx.Value(ContextDeviceEmployeeKey).(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	return id, err == nil
}

func GetDeviceOrgID(ctx context.Context) (uuid.UUID, bool) {
	s, ok := ctx.Value(ContextDeviceOrgKey).(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	return id, err == nil
}
