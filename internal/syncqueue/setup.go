package syncqueue

import (
	"log"

	"github.com/FieldPulse/FP-Attendance/internal/db"
)

// DefaultQueue is the process-wide offline write queue, initialized in Init().
var DefaultQueue *Queue

func Init(opts Options) {
	if err := db.EnsureSchema(db.DB, "offline"); err != nil {
		log.Fatal("Failed to ensure schema offline: ", err)
	}

	if err := db.DB.AutoMigrate(&QueuedWrite{}, &Document{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}

	DefaultQueue = NewQueue(GormBuffer{}, GormRemote{}, opts)
}
