package main

import (
	"log"

	"github.com/FieldPulse/FP-Attendance/internal/auth"
	"github.com/FieldPulse/FP-Attendance/internal/db"
	"github.com/FieldPulse/FP-Attendance/internal/seeds"
	"github.com/FieldPulse/FP-Attendance/internal/zones"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	auth.Init()
	zones.Init(zones.NoopMonitor{})

	if err := seeds.SeedAll(); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
}
