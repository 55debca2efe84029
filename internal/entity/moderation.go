package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ModerationActionPin    = "pin"
	ModerationActionUnpin  = "unpin"
	ModerationActionLock   = "lock"
	ModerationActionUnlock = "unlock"
	ModerationActionDelete = "delete"
)

// ModerationLog is the audit trail for admin actions on threads. Rows are
// written in the same transaction as the state change they describe.
type ModerationLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ThreadID    uuid.UUID `gorm:"type:uuid;not null;index" json:"thread_id"`
	ModeratorID uuid.UUID `gorm:"type:uuid;not null" json:"moderator_id"`
	Action      string    `gorm:"size:20;not null" json:"action"`
	Reason      string    `gorm:"type:text" json:"reason"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (m *ModerationLog) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}
