package tracking

import (
	"log"
	"os"

	"github.com/FieldPulse/FP-Attendance/internal/zones"
)

// DefaultTracker is the process-wide sample pipeline, initialized in Init().
var DefaultTracker *Tracker

// ActivePolicy is the policy the tracker was started with.
var ActivePolicy Policy

func Init(registry *zones.Registry, sink EventSink) {
	path := os.Getenv("TRACKING_POLICY_FILE")
	if path == "" {
		path = "tracking-policy.yaml"
	}

	policy, err := LoadPolicy(path)
	if err != nil {
		log.Fatal("Failed to load tracking policy: ", err)
	}
	ActivePolicy = policy

	DefaultTracker = NewTracker(registry, policy, sink)
	log.Printf("[tracking] started with loitering delay %s, dwell threshold %s", policy.LoiteringDelay(), policy.DwellThreshold())
}
