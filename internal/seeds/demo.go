package seeds

import (
	"fmt"
	"log"

	"github.com/FieldPulse/FP-Attendance/internal/auth"
	"github.com/FieldPulse/FP-Attendance/internal/db"
	"github.com/FieldPulse/FP-Attendance/internal/zones"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// demoOrgID is fixed so re-running the seeder targets the same org.
const demoOrgID = "7a3f1c9e-0000-4000-8000-000000000001"

func SeedOrganization() error {
	var existing auth.Organization
	err := db.DB.First(&existing, "org_id = ?", demoOrgID).Error
	if err == nil {
		log.Printf("⚠️ Demo org exists, skipping")
		return nil
	} else if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("DB error on demo org: %w", err)
	}

	org := auth.Organization{
		OrgID: demoOrgID,
		Name:  "FieldPulse Demo Co",
	}
	if err := db.DB.Create(&org).Error; err != nil {
		return fmt.Errorf("failed to create demo org: %w", err)
	}

	log.Printf("✅ Seeded demo organization")
	return nil
}

func SeedUsers() error {
	users := []struct {
		Username string
		FullName string
		Role     string
	}{
		{"admin", "Dana Admin", "admin"},
		{"jordan", "Jordan Field", "employee"},
		{"casey", "Casey Rivera", "employee"},
		{"morgan", "Morgan Lee", "employee"},
	}

	created := 0
	for _, u := range users {
		var existing auth.User
		err := db.DB.First(&existing, "username = ?", u.Username).Error
		if err == nil {
			log.Printf("⚠️ User exists, skipping: %s", u.Username)
			continue
		} else if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("DB error on user %s: %w", u.Username, err)
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte("ChangeMe123!"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("bcrypt error for %s: %w", u.Username, err)
		}

		user := auth.User{
			UserID:         uuid.NewString(),
			OrgID:          demoOrgID,
			Username:       u.Username,
			FullName:       u.FullName,
			HashedPassword: string(hashed),
			Role:           u.Role,
			Active:         true,
		}
		if err := db.DB.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", u.Username, err)
		}
		created++
	}

	log.Printf("✅ Seeded %d users", created)
	return nil
}

func SeedZones() error {
	orgID, err := uuid.Parse(demoOrgID)
	if err != nil {
		return err
	}

	demoZones := []zones.Zone{
		{
			Name:            "Headquarters",
			Kind:            zones.KindOffice,
			CenterLat:       40.712800,
			CenterLng:       -74.006000,
			RadiusMeters:    120,
			Active:          true,
			AutoCheckIn:     true,
			AutoCheckOut:    true,
			WorkWindowStart: "08:00",
			WorkWindowEnd:   "18:00",
			ActiveWeekdays:  pq.Int64Array{1, 2, 3, 4, 5},
		},
		{
			Name:         "Brooklyn Warehouse",
			Kind:         zones.KindWarehouse,
			CenterLat:    40.678200,
			CenterLng:    -73.944200,
			RadiusMeters: 250,
			Active:       true,
			AutoCheckIn:  true,
			AutoCheckOut: false,
		},
		{
			Name:            "Acme Client Site",
			Kind:            zones.KindClientSite,
			CenterLat:       40.748400,
			CenterLng:       -73.985700,
			RadiusMeters:    80,
			Active:          true,
			AutoCheckIn:     false,
			AutoCheckOut:    false,
			LoiteringDelayS: 60,
		},
	}

	created := 0
	for _, z := range demoZones {
		var existing zones.Zone
		err := db.DB.First(&existing, "organization_id = ? AND name = ?", orgID, z.Name).Error
		if err == nil {
			log.Printf("⚠️ Zone exists, skipping: %s", z.Name)
			continue
		} else if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("DB error on zone %s: %w", z.Name, err)
		}

		z.ID = uuid.New()
		z.OrganizationID = orgID
		if err := db.DB.Create(&z).Error; err != nil {
			return fmt.Errorf("failed to create zone %s: %w", z.Name, err)
		}
		created++
	}

	log.Printf("✅ Seeded %d zones", created)
	return nil
}
