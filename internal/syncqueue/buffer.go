package syncqueue

import (
	"errors"
	"sync"

	"github.com/FieldPulse/FP-Attendance/internal/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEntryNotFound = errors.New("queued write not found")

// LocalBuffer is the durable key-value persistence behind the queue. It must
// survive process restarts in production; tests use the in-memory variant.
type LocalBuffer interface {
	Put(entry QueuedWrite) error
	Get(id uuid.UUID) (QueuedWrite, error)
	Delete(id uuid.UUID) error
	Values() ([]QueuedWrite, error)
}

// GormBuffer persists queue entries in the offline schema.
type GormBuffer struct{}

func (GormBuffer) Put(entry QueuedWrite) error {
	return db.DB.Save(&entry).Error
}

func (GormBuffer) Get(id uuid.UUID) (QueuedWrite, error) {
	var entry QueuedWrite
	err := db.DB.First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return QueuedWrite{}, ErrEntryNotFound
	}
	return entry, err
}

func (GormBuffer) Delete(id uuid.UUID) error {
	return db.DB.Delete(&QueuedWrite{}, "id = ?", id).Error
}

func (GormBuffer) Values() ([]QueuedWrite, error) {
	var entries []QueuedWrite
	err := db.DB.Order("created_at asc").Find(&entries).Error
	return entries, err
}

// MemoryBuffer is a LocalBuffer for tests and the replay tool.
type MemoryBuffer struct {
	mu      sync.Mutex
	entries map[uuid.UUID]QueuedWrite
	order   []uuid.UUID
}

func NewMemoryBuffer() *MemoryBuffer {
	return &MemoryBuffer{entries: make(map[uuid.UUID]QueuedWrite)}
}

func (m *MemoryBuffer) Put(entry QueuedWrite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[entry.ID]; !ok {
		m.order = append(m.order, entry.ID)
	}
	m.entries[entry.ID] = entry
	return nil
}

func (m *MemoryBuffer) Get(id uuid.UUID) (QueuedWrite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return QueuedWrite{}, ErrEntryNotFound
	}
	return entry, nil
}

func (m *MemoryBuffer) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *MemoryBuffer) Values() ([]QueuedWrite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []QueuedWrite
	for _, id := range m.order {
		if entry, ok := m.entries[id]; ok {
			out = append(out, entry)
		}
	}
	return out, nil
}
