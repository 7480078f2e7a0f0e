package syncqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/FieldPulse/FP-Attendance/internal/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	ErrDocNotFound       = errors.New("document not found")
)

// RemoteStore is the document-oriented backend collaborator: JSON-like
// documents keyed by collection + id. Set merges fields into any existing
// document, matching the hosted backend's merge-write semantics.
type RemoteStore interface {
	Get(ctx context.Context, collection, docID string) (json.RawMessage, error)
	Set(ctx context.Context, collection, docID string, payload json.RawMessage) error
	Delete(ctx context.Context, collection, docID string) error
	Query(ctx context.Context, collection string, filters map[string]any) ([]json.RawMessage, error)
}

// GormRemote keeps remote documents in a Postgres table. It stands in for the
// hosted document backend with the same merge semantics.
type GormRemote struct{}

func (GormRemote) Get(ctx context.Context, collection, docID string) (json.RawMessage, error) {
	var doc Document
	err := db.DB.WithContext(ctx).First(&doc, "collection = ? AND doc_id = ?", collection, docID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return json.RawMessage(doc.Payload), nil
}

func (r GormRemote) Set(ctx context.Context, collection, docID string, payload json.RawMessage) error {
	merged := payload

	existing, err := r.Get(ctx, collection, docID)
	if err == nil {
		merged, err = mergeJSON(existing, payload)
		if err != nil {
			return err
		}
	} else if !errors.Is(err, ErrDocNotFound) {
		return err
	}

	doc := Document{
		Collection: collection,
		DocID:      docID,
		Payload:    merged,
	}
	err = db.DB.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, docID).
		Assign(map[string]any{"payload": []byte(merged)}).
		Attrs(map[string]any{"id": uuid.New()}).
		FirstOrCreate(&doc).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return nil
}

func (GormRemote) Delete(ctx context.Context, collection, docID string) error {
	err := db.DB.WithContext(ctx).Delete(&Document{}, "collection = ? AND doc_id = ?", collection, docID).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return nil
}

func (GormRemote) Query(ctx context.Context, collection string, filters map[string]any) ([]json.RawMessage, error) {
	var docs []Document
	q := db.DB.WithContext(ctx).Where("collection = ?", collection)
	for field, value := range filters {
		q = q.Where("payload ->> ? = ?", field, fmt.Sprint(value))
	}
	if err := q.Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	out := make([]json.RawMessage, 0, len(docs))
	for _, d := range docs {
		out = append(out, json.RawMessage(d.Payload))
	}
	return out, nil
}

// mergeJSON overlays the fields of patch onto base.
func mergeJSON(base, patch json.RawMessage) (json.RawMessage, error) {
	var baseMap, patchMap map[string]any
	if err := json.Unmarshal(base, &baseMap); err != nil {
		return nil, fmt.Errorf("merge base: %w", err)
	}
	if err := json.Unmarshal(patch, &patchMap); err != nil {
		return nil, fmt.Errorf("merge patch: %w", err)
	}
	for k, v := range patchMap {
		baseMap[k] = v
	}
	return json.Marshal(baseMap)
}
