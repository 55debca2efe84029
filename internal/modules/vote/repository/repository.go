package vote

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sitecraft.dev/forumservice/internal/entity"
)

type VoteRepository interface {
	// Toggle flips the caller's vote on the target inside one transaction:
	// insert + counter increment, or delete + floored decrement. Returns
	// the resulting liked state.
	Toggle(ctx context.Context, voterID uuid.UUID, targetType string, targetID uuid.UUID) (bool, error)
	CountFor(ctx context.Context, targetType string, targetID uuid.UUID) (int64, error)
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Toggle(ctx context.Context, voterID uuid.UUID, targetType string, targetID uuid.UUID) (bool, error) {
	var liked bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Find with a slice avoids gorm's "record not found" log noise.
		var existing []entity.Vote
		if err := tx.
			Where("voter_id = ? AND target_type = ? AND target_id = ?", voterID, targetType, targetID).
			Limit(1).
			Find(&existing).Error; err != nil {
			return err
		}

		if len(existing) > 0 {
			if err := tx.Delete(&existing[0]).Error; err != nil {
				return err
			}
			liked = false
			return adjustLikes(tx, targetType, targetID, -1)
		}

		vote := &entity.Vote{
			VoterID:    voterID,
			TargetType: targetType,
			TargetID:   targetID,
		}
		// A concurrent duplicate insert is rejected by the unique
		// (voter_id, target_type, target_id) index and rolls the whole
		// transaction back, counter bump included.
		if err := tx.Create(vote).Error; err != nil {
			return err
		}
		liked = true
		return adjustLikes(tx, targetType, targetID, 1)
	})

	return liked, err
}

func (r *voteRepository) CountFor(ctx context.Context, targetType string, targetID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Vote{}).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Count(&count).Error
	return count, err
}

func adjustLikes(tx *gorm.DB, targetType string, targetID uuid.UUID, delta int) error {
	expr := gorm.Expr("CASE WHEN likes + ? > 0 THEN likes + ? ELSE 0 END", delta, delta)

	switch targetType {
	case entity.VoteTargetThread:
		return tx.Model(&entity.Thread{}).Where("id = ?", targetID).UpdateColumn("likes", expr).Error
	case entity.VoteTargetReply:
		return tx.Model(&entity.Reply{}).Where("id = ?", targetID).UpdateColumn("likes", expr).Error
	default:
		return fmt.Errorf("unknown vote target type %q", targetType)
	}
}
