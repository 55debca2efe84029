package reply

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sitecraft.dev/forumservice/internal/entity"
)

type ReplyRepository interface {
	CreateWithCounter(ctx context.Context, reply *entity.Reply) error
	FindLiveByID(ctx context.Context, id uuid.UUID) (*entity.Reply, error)
	FindByThread(ctx context.Context, threadID uuid.UUID, offset, limit int) ([]*entity.Reply, int64, error)
	Update(ctx context.Context, reply *entity.Reply) error
	SoftDeleteWithCounter(ctx context.Context, reply *entity.Reply) error
}

type replyRepository struct {
	db *gorm.DB
}

func NewReplyRepository(db *gorm.DB) ReplyRepository {
	return &replyRepository{db: db}
}

// CreateWithCounter inserts the reply and bumps the parent thread's reply
// counter and activity timestamp in one transaction, so a failure in either
// leaves neither applied.
func (r *replyRepository) CreateWithCounter(ctx context.Context, reply *entity.Reply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		return tx.Model(&entity.Thread{}).
			Where("id = ?", reply.ThreadID).
			UpdateColumns(map[string]interface{}{
				"reply_count": gorm.Expr("reply_count + 1"),
				"updated_at":  time.Now(),
			}).Error
	})
}

func (r *replyRepository) FindLiveByID(ctx context.Context, id uuid.UUID) (*entity.Reply, error) {
	var reply entity.Reply
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&reply).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *replyRepository) FindByThread(ctx context.Context, threadID uuid.UUID, offset, limit int) ([]*entity.Reply, int64, error) {
	var replies []*entity.Reply
	var total int64

	query := r.db.WithContext(ctx).
		Where("thread_id = ? AND is_deleted = ?", threadID, false)

	if err := query.Model(&entity.Reply{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Oldest first: replies read as a conversation.
	if err := query.Order("created_at ASC").Offset(offset).Limit(limit).Find(&replies).Error; err != nil {
		return nil, 0, err
	}

	return replies, total, nil
}

// Update writes the content only; likes is mutated with atomic
// expressions by the vote ledger and must not be overwritten from a
// stale in-memory copy.
func (r *replyRepository) Update(ctx context.Context, reply *entity.Reply) error {
	return r.db.WithContext(ctx).
		Model(reply).
		Select("content").
		Updates(reply).Error
}

// SoftDeleteWithCounter marks the reply deleted and decrements the parent
// counter (never below zero) atomically. The thread's updated_at is left
// alone: deleting a reply does not rewind activity.
func (r *replyRepository) SoftDeleteWithCounter(ctx context.Context, reply *entity.Reply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Reply{}).
			Where("id = ?", reply.ID).
			UpdateColumn("is_deleted", true).Error; err != nil {
			return err
		}
		return tx.Model(&entity.Thread{}).
			Where("id = ?", reply.ThreadID).
			UpdateColumn("reply_count", gorm.Expr("CASE WHEN reply_count > 0 THEN reply_count - 1 ELSE 0 END")).Error
	})
}
