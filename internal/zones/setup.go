package zones

import (
	"log"

	"github.com/FieldPulse/FP-Attendance/internal/db"
)

// DefaultRegistry is the process-wide registry, initialized in Init().
var DefaultRegistry *Registry

func Init(monitor Monitor) {
	if err := db.EnsureSchema(db.DB, "geofences"); err != nil {
		log.Fatal("Failed to ensure schema geofences: ", err)
	}

	if err := db.DB.AutoMigrate(&Zone{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}

	DefaultRegistry = NewRegistry(GormStore{}, monitor)
}
