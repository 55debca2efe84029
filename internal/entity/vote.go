package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	VoteTargetThread = "thread"
	VoteTargetReply  = "reply"
)

// Vote is one row of the like ledger. The unique index over
// (voter_id, target_type, target_id) is what makes the toggle idempotent
// under concurrent requests: a second concurrent insert is rejected by the
// database instead of creating a duplicate.
type Vote struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VoterID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_voter_target,priority:1" json:"voter_id"`
	TargetType string    `gorm:"size:20;not null;uniqueIndex:uk_voter_target,priority:2" json:"target_type"`
	TargetID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_voter_target,priority:3" json:"target_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID, err = uuid.NewV7()
	}
	return
}
