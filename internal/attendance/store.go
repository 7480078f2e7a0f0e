package attendance

import (
	"errors"
	"sync"

	"github.com/FieldPulse/FP-Attendance/internal/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrRecordNotFound = errors.New("attendance record not found")

// RecordStore abstracts record persistence so the state machine can be tested
// without a database.
type RecordStore interface {
	FindByEmployeeDate(employeeID uuid.UUID, date string) (Record, error)
	Save(r *Record) error
	ListByEmployee(employeeID uuid.UUID, from, to string) ([]Record, error)
	ListByOrgRange(orgID uuid.UUID, from, to string) ([]Record, error)
}

type GormRecordStore struct{}

func (GormRecordStore) FindByEmployeeDate(employeeID uuid.UUID, date string) (Record, error) {
	var rec Record
	err := db.DB.First(&rec, "employee_id = ? AND date = ?", employeeID, date).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrRecordNotFound
	}
	return rec, err
}

func (GormRecordStore) Save(r *Record) error {
	return db.DB.Save(r).Error
}

func (GormRecordStore) ListByEmployee(employeeID uuid.UUID, from, to string) ([]Record, error) {
	var recs []Record
	err := db.DB.
		Where("employee_id = ? AND date >= ? AND date <= ?", employeeID, from, to).
		Order("date desc").
		Find(&recs).Error
	return recs, err
}

func (GormRecordStore) ListByOrgRange(orgID uuid.UUID, from, to string) ([]Record, error) {
	var recs []Record
	err := db.DB.
		Where("organization_id = ? AND date >= ? AND date <= ?", orgID, from, to).
		Order("date desc, employee_id asc").
		Find(&recs).Error
	return recs, err
}

// MemoryRecordStore backs the state machine tests.
type MemoryRecordStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]Record
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{records: make(map[uuid.UUID]Record)}
}

func (m *MemoryRecordStore) FindByEmployeeDate(employeeID uuid.UUID, date string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.EmployeeID == employeeID && r.Date == date {
			return r, nil
		}
	}
	return Record{}, ErrRecordNotFound
}

func (m *MemoryRecordStore) Save(r *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.ID] = *r
	return nil
}

func (m *MemoryRecordStore) ListByEmployee(employeeID uuid.UUID, from, to string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for _, r := range m.records {
		if r.EmployeeID == employeeID && r.Date >= from && r.Date <= to {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryRecordStore) ListByOrgRange(orgID uuid.UUID, from, to string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for _, r := range m.records {
		if r.OrganizationID == orgID && r.Date >= from && r.Date <= to {
			out = append(out, r)
		}
	}
	return out, nil
}

// Count returns the number of stored records; test helper.
func (m *MemoryRecordStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
