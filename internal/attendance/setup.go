package attendance

import (
	"log"

	"github.com/FieldPulse/FP-Attendance/internal/db"
	"github.com/FieldPulse/FP-Attendance/internal/syncqueue"
	"github.com/FieldPulse/FP-Attendance/internal/zones"
)

// Svc is the process-wide attendance service, initialized in Init().
var Svc *Service

func Init(registry *zones.Registry, queue *syncqueue.Queue) {
	if err := db.EnsureSchema(db.DB, "attendance"); err != nil {
		log.Fatal("Failed to ensure schema attendance: ", err)
	}

	if err := db.DB.AutoMigrate(&Record{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}

	Svc = NewService(GormRecordStore{}, registry, queue)
}
