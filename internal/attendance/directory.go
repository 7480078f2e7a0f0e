package attendance

import (
	"github.com/FieldPulse/FP-Attendance/internal/db"
	"github.com/google/uuid"
)

// employeeRow reads the auth schema's users table without importing the auth
// package, which would cycle back through the route wiring.
type employeeRow struct {
	UserID string
	OrgID  string
}

func (employeeRow) TableName() string { return "app_auth.users" }

// GormDirectory lists active employees for the end-of-day evaluator.
type GormDirectory struct{}

func (GormDirectory) ActiveEmployees() ([]Employee, error) {
	var rows []employeeRow
	err := db.DB.Where("active = ? AND role = ?", true, "employee").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	employees := make([]Employee, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.UserID)
		if err != nil {
			continue
		}
		orgID, err := uuid.Parse(row.OrgID)
		if err != nil {
			continue
		}
		employees = append(employees, Employee{ID: id, OrganizationID: orgID})
	}
	return employees, nil
}
