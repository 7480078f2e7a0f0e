package zones

import (
	"errors"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

var ErrInvalidZone = errors.New("invalid zone")

// Registry is a read-mostly cache of an organization's zones. Readers (the
// transition detector, once per sample) get an immutable snapshot; writers
// (admin zone edits) replace the whole snapshot, never mutate it in place.
type Registry struct {
	store   Store
	monitor Monitor

	mu        sync.RWMutex
	snapshots map[uuid.UUID][]Zone

	degraded bool
}

func NewRegistry(store Store, monitor Monitor) *Registry {
	if monitor == nil {
		monitor = NoopMonitor{}
	}
	return &Registry{
		store:     store,
		monitor:   monitor,
		snapshots: make(map[uuid.UUID][]Zone),
	}
}

// Refresh replaces the cached snapshot for orgID from the store. On store
// failure the previous snapshot is kept: stale zones beat no zones.
func (r *Registry) Refresh(orgID uuid.UUID) error {
	zs, err := r.store.ListByOrg(orgID)
	if err != nil {
		log.Printf("[zones] refresh failed for org %s, keeping old snapshot: %v", orgID, err)
		return err
	}
	sort.Slice(zs, func(i, j int) bool { return zs[i].ID.String() < zs[j].ID.String() })

	r.mu.Lock()
	r.snapshots[orgID] = zs
	r.mu.Unlock()
	return nil
}

// List returns the cached snapshot for orgID, loading it on first use.
// The returned slice must not be mutated by callers.
func (r *Registry) List(orgID uuid.UUID) []Zone {
	r.mu.RLock()
	zs, ok := r.snapshots[orgID]
	r.mu.RUnlock()
	if ok {
		return zs
	}
	if err := r.Refresh(orgID); err != nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshots[orgID]
}

func (r *Registry) Get(id uuid.UUID) (Zone, error) {
	r.mu.RLock()
	for _, zs := range r.snapshots {
		for _, z := range zs {
			if z.ID == id {
				r.mu.RUnlock()
				return z, nil
			}
		}
	}
	r.mu.RUnlock()
	return r.store.Get(id)
}

// Upsert validates and persists a zone, then refreshes the org snapshot and
// nudges the native monitor. Monitor failures are logged and swallowed:
// containment evaluation recomputes from raw samples, so native monitoring is
// battery optimization, not a dependency.
func (r *Registry) Upsert(z Zone) error {
	if z.RadiusMeters <= 0 {
		return ErrInvalidZone
	}
	if !z.Center().Valid() {
		return ErrInvalidZone
	}
	if z.ID == uuid.Nil {
		z.ID = uuid.New()
	}

	// Case-folded name uniqueness within the org.
	folded := cases.Fold().String(z.Name)
	for _, existing := range r.List(z.OrganizationID) {
		if existing.ID != z.ID && cases.Fold().String(existing.Name) == folded {
			return ErrInvalidZone
		}
	}

	if err := r.store.Save(z); err != nil {
		return err
	}
	if err := r.Refresh(z.OrganizationID); err != nil {
		log.Printf("[zones] post-upsert refresh failed: %v", err)
	}

	if err := r.monitor.AddZone(z.ID, z.Center(), z.RadiusMeters); err != nil {
		r.noteMonitorFailure("add", z.ID, err)
	}
	return nil
}

func (r *Registry) Remove(id uuid.UUID) error {
	z, err := r.Get(id)
	if err != nil {
		return err
	}
	if err := r.store.Delete(id); err != nil {
		return err
	}
	if err := r.Refresh(z.OrganizationID); err != nil {
		log.Printf("[zones] post-remove refresh failed: %v", err)
	}

	if err := r.monitor.RemoveZone(id); err != nil {
		r.noteMonitorFailure("remove", id, err)
	}
	return nil
}

// Degraded reports whether the native monitor has signalled missing
// permission. Surfaced on the tracking status endpoint so impaired tracking
// is visible rather than silent.
func (r *Registry) Degraded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.degraded
}

func (r *Registry) noteMonitorFailure(op string, id uuid.UUID, err error) {
	log.Printf("[zones] native monitor %s failed for zone %s: %v", op, id, err)
	if errors.Is(err, ErrPermissionUnavailable) {
		r.mu.Lock()
		r.degraded = true
		r.mu.Unlock()
	}
}
