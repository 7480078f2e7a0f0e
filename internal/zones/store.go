package zones

import (
	"errors"
	"sync"

	"github.com/FieldPulse/FP-Attendance/internal/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrZoneNotFound = errors.New("zone not found")

// Store is the durable backing for the registry cache.
type Store interface {
	ListByOrg(orgID uuid.UUID) ([]Zone, error)
	Get(id uuid.UUID) (Zone, error)
	Save(z Zone) error
	Delete(id uuid.UUID) error
}

// GormStore persists zones in the geofences schema.
type GormStore struct{}

func (GormStore) ListByOrg(orgID uuid.UUID) ([]Zone, error) {
	var zs []Zone
	if err := db.DB.Where("organization_id = ?", orgID).Find(&zs).Error; err != nil {
		return nil, err
	}
	return zs, nil
}

func (GormStore) Get(id uuid.UUID) (Zone, error) {
	var z Zone
	err := db.DB.First(&z, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Zone{}, ErrZoneNotFound
	}
	return z, err
}

func (GormStore) Save(z Zone) error {
	return db.DB.Save(&z).Error
}

func (GormStore) Delete(id uuid.UUID) error {
	return db.DB.Delete(&Zone{}, "id = ?", id).Error
}

// MemoryStore is an in-memory Store for tests and the replay tool.
type MemoryStore struct {
	mu    sync.Mutex
	zones map[uuid.UUID]Zone

	// FailList forces ListByOrg to fail, to exercise refresh fallback.
	FailList bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{zones: make(map[uuid.UUID]Zone)}
}

func (m *MemoryStore) ListByOrg(orgID uuid.UUID) ([]Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailList {
		return nil, errors.New("store unavailable")
	}
	var zs []Zone
	for _, z := range m.zones {
		if z.OrganizationID == orgID {
			zs = append(zs, z)
		}
	}
	return zs, nil
}

func (m *MemoryStore) Get(id uuid.UUID) (Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok := m.zones[id]
	if !ok {
		return Zone{}, ErrZoneNotFound
	}
	return z, nil
}

func (m *MemoryStore) Save(z Zone) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zones[z.ID] = z
	return nil
}

func (m *MemoryStore) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.zones, id)
	return nil
}
