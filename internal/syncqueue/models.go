package syncqueue

import (
	"time"

	"github.com/google/uuid"
)

// QueuedWrite is one buffered remote write. It leaves the queue only by being
// flagged synced after a confirmed remote commit, never by being dropped.
type QueuedWrite struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Collection   string    `gorm:"index" json:"collection"`
	DocID        string    `json:"doc_id"`
	Payload      []byte    `gorm:"type:jsonb" json:"payload"`
	Synced       bool      `gorm:"index;default:false" json:"synced"`
	AttemptCount int       `json:"attempt_count"`
	LastError    string    `json:"last_error"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (QueuedWrite) TableName() string {
	return "offline.queued_writes"
}

// Document mirrors a remote-store document. The production RemoteStore keeps
// them in Postgres; the hosted deployment swaps in the real backend client.
type Document struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Collection string    `gorm:"uniqueIndex:idx_documents_coll_doc" json:"collection"`
	DocID      string    `gorm:"uniqueIndex:idx_documents_coll_doc" json:"doc_id"`
	Payload    []byte    `gorm:"type:jsonb" json:"payload"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Document) TableName() string {
	return "offline.documents"
}
