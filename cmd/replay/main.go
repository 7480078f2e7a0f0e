package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/FieldPulse/FP-Attendance/internal/db"
	"github.com/FieldPulse/FP-Attendance/internal/tracking"
	"github.com/FieldPulse/FP-Attendance/internal/zones"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Replays a CSV of position samples through the transition detector against an
// org's real zones, printing the events that would have fired. Used to debug
// "why didn't auto check-in trigger" reports from the field.
//
// CSV columns: employee_id, lat, lng, accuracy_m, captured_at (RFC 3339).
func main() {
	file := flag.String("file", "", "CSV file of position samples")
	org := flag.String("org", "", "organization ID whose zones to replay against")
	policyFile := flag.String("policy", "", "optional tracking policy YAML")
	flag.Parse()

	if *file == "" || *org == "" {
		log.Fatal("usage: replay -file samples.csv -org <org-id> [-policy policy.yaml]")
	}

	orgID, err := uuid.Parse(*org)
	if err != nil {
		log.Fatalf("Invalid org ID: %v", err)
	}

	godotenv.Load(".env.local")
	db.Connect()

	policy, err := tracking.LoadPolicy(*policyFile)
	if err != nil {
		log.Fatalf("Policy error: %v", err)
	}

	registry := zones.NewRegistry(zones.GormStore{}, zones.NoopMonitor{})
	snapshot := registry.List(orgID)
	if len(snapshot) == 0 {
		log.Fatalf("No zones found for org %s", orgID)
	}
	fmt.Printf("Replaying against %d zones\n\n", len(snapshot))

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Open error: %v", err)
	}
	defer f.Close()

	detector := tracking.NewDetector(policy)
	reader := csv.NewReader(f)
	line := 0
	events := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("CSV error at line %d: %v", line+1, err)
		}
		line++
		if len(row) < 5 {
			log.Fatalf("Line %d: expected 5 columns, got %d", line, len(row))
		}

		employeeID, err := uuid.Parse(row[0])
		if err != nil {
			log.Fatalf("Line %d: bad employee_id: %v", line, err)
		}
		lat, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			log.Fatalf("Line %d: bad lat: %v", line, err)
		}
		lng, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			log.Fatalf("Line %d: bad lng: %v", line, err)
		}
		accuracy, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			log.Fatalf("Line %d: bad accuracy_m: %v", line, err)
		}
		capturedAt, err := time.Parse(time.RFC3339, row[4])
		if err != nil {
			log.Fatalf("Line %d: bad captured_at: %v", line, err)
		}

		sample := tracking.Sample{
			Lat:        lat,
			Lng:        lng,
			AccuracyM:  accuracy,
			CapturedAt: capturedAt,
		}

		fired, err := detector.Observe(employeeID, sample, snapshot)
		if err != nil {
			fmt.Printf("line %d: sample dropped: %v\n", line, err)
			continue
		}
		for _, e := range fired {
			events++
			flag := ""
			if e.LowConfidence {
				flag = " (low confidence)"
			}
			fmt.Printf("line %d: %s zone=%s employee=%s at=%s%s\n",
				line, e.Kind, e.ZoneID, e.EmployeeID, e.At.Format(time.RFC3339), flag)
		}
	}

	fmt.Printf("\nProcessed %d samples, %d events\n", line, events)
}
