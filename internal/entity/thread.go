package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Thread struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	Category   Category  `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Tags       []string  `gorm:"type:text;serializer:json" json:"tags"`
	Views      int       `gorm:"not null;default:0" json:"views"`
	ReplyCount int       `gorm:"not null;default:0" json:"replies"`
	Likes      int       `gorm:"not null;default:0" json:"likes"`
	IsPinned   bool      `gorm:"not null;default:false" json:"is_pinned"`
	IsLocked   bool      `gorm:"not null;default:false" json:"is_locked"`
	IsDeleted  bool      `gorm:"not null;default:false;index" json:"is_deleted"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Thread) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}

// Writable reports whether content changes (edits, replies, votes) are
// currently allowed on the thread. Deletion is governed separately: a
// locked thread can still be deleted by its author or an admin.
func (t *Thread) Writable() bool {
	return !t.IsLocked && !t.IsDeleted
}
