package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/FieldPulse/FP-Attendance/internal/db"
	"github.com/FieldPulse/FP-Attendance/internal/middleware"
	"github.com/FieldPulse/FP-Attendance/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     "session_id",
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   os.Getenv("ENV") == "production",
	}
}

func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var user User

	err := json.NewDecoder(r.Body).Decode(&user)
	if err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}

	if user.Username == "" || user.Password == "" || user.OrgID == "" {
		http.Error(w, "Username, password and organization are required", http.StatusBadRequest)
		return
	}

	var org Organization
	if err := db.DB.First(&org, "org_id = ?", user.OrgID).Error; err != nil {
		http.Error(w, "Unknown organization", http.StatusBadRequest)
		return
	}

	// Check if username is taken
	var existing User
	err = db.DB.First(&existing, "username = ?", user.Username).Error
	if err == nil {
		http.Error(w, "Username already taken", http.StatusConflict)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Server error hashing password", http.StatusInternalServerError)
		return
	}
	user.HashedPassword = string(hashed)
	user.UserID = utils.GenerateUUID()
	user.Role = "employee" // roles are elevated by an admin, never self-assigned
	user.Active = true
	user.Password = ""

	if err := db.DB.Create(&user).Error; err != nil {
		http.Error(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"user_id":  user.UserID,
		"username": user.Username,
		"org_id":   user.OrgID,
	})
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var user User
	var existing Session

	err := json.NewDecoder(r.Body).Decode(&user)
	if err != nil {
		http.Error(w, "Invalid Data", http.StatusBadRequest)
		return
	}
	password := user.Password

	err = db.DB.First(&user, "username = ?", user.Username).Error
	if err != nil {
		http.Error(w, "Invalid Credentials", http.StatusUnauthorized)
		return
	}
	if !user.Active {
		http.Error(w, "Account disabled", http.StatusForbidden)
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password))
	if err != nil {
		http.Error(w, "Invalid Credentials", http.StatusUnauthorized)
		return
	}

	sessionID := utils.GenerateUUID()
	http.SetCookie(w, sessionCookie(sessionID, 6*60*60))

	// One session per user: replace any existing session row
	db.DB.Where("user_id = ?", user.UserID).First(&existing)
	if existing.UserID != "" {
		db.DB.Model(&existing).Updates(Session{
			SessionID: sessionID,
			ExpiresAt: time.Now().Add(6 * time.Hour),
		})
	} else {
		session := Session{
			SessionID: sessionID,
			UserID:    user.UserID,
			ExpiresAt: time.Now().Add(6 * time.Hour),
		}
		db.DB.Create(&session)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"user_id":  user.UserID,
		"username": user.Username,
		"org_id":   user.OrgID,
	})
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var session Session

	cookie, err := r.Cookie("session_id")
	if err != nil {
		http.Error(w, "Couldn't find cookie", http.StatusUnauthorized)
		return
	}

	err = db.DB.First(&session, "session_id = ?", cookie.Value).Error
	if err != nil {
		http.Error(w, "Couldn't find session", http.StatusUnauthorized)
		return
	}

	db.DB.Delete(&session)
	http.SetCookie(w, sessionCookie("", -1))

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Logout successful")
}

type MeResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	OrgID    string `json:"org_id"`
	Role     string `json:"role"`
}

func MeHandler(w http.ResponseWriter, r *http.Request) {
	var user User

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Failed converting ID to string", http.StatusInternalServerError)
		return
	}

	err := db.DB.First(&user, "user_id = ?", userID).Error
	if err != nil {
		http.Error(w, "Couldn't find user", http.StatusNotFound)
		return
	}

	response := MeResponse{
		UserID:   userID,
		Username: user.Username,
		FullName: user.FullName,
		OrgID:    user.OrgID,
		Role:     user.Role,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// DeviceSigningSecret decodes the base64 HMAC secret shared with field
// devices.
func DeviceSigningSecret() ([]byte, error) {
	encoded := os.Getenv("DEVICE_SIGNING_SECRET")
	if encoded == "" {
		return nil, fmt.Errorf("DEVICE_SIGNING_SECRET is empty")
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// DeviceTokenHandler mints a long-lived bearer token binding one device to
// one employee. Admin-only; the token is what the mobile app presents on the
// sample-ingest endpoints.
func DeviceTokenHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		EmployeeID string `json:"employee_id"`
		DeviceID   string `json:"device_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.EmployeeID == "" || input.DeviceID == "" {
		http.Error(w, "employee_id and device_id are required", http.StatusBadRequest)
		return
	}

	var employee User
	if err := db.DB.First(&employee, "user_id = ?", input.EmployeeID).Error; err != nil {
		http.Error(w, "Unknown employee", http.StatusNotFound)
		return
	}

	secret, err := DeviceSigningSecret()
	if err != nil {
		http.Error(w, "Device token signing not configured", http.StatusInternalServerError)
		return
	}

	claims := middleware.DeviceClaims{
		EmployeeID: employee.UserID,
		OrgID:      employee.OrgID,
		DeviceID:   input.DeviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(90 * 24 * time.Hour)),
			Subject:   employee.UserID,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		http.Error(w, "Failed to sign token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}
