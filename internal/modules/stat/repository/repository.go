package stat

import (
	"context"

	"gorm.io/gorm"

	"sitecraft.dev/forumservice/internal/entity"
)

type StatRepository interface {
	CountActiveCategories(ctx context.Context) (int64, error)
	CountLiveThreads(ctx context.Context) (int64, error)
	CountLiveReplies(ctx context.Context) (int64, error)
	SumThreadViews(ctx context.Context) (int64, error)
	SumLikes(ctx context.Context) (int64, error)
}

type statRepository struct {
	db *gorm.DB
}

func NewStatRepository(db *gorm.DB) StatRepository {
	return &statRepository{db: db}
}

func (r *statRepository) CountActiveCategories(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Category{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

func (r *statRepository) CountLiveThreads(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Thread{}).
		Where("is_deleted = ?", false).
		Count(&count).Error
	return count, err
}

func (r *statRepository) CountLiveReplies(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Reply{}).
		Where("is_deleted = ?", false).
		Count(&count).Error
	return count, err
}

func (r *statRepository) SumThreadViews(ctx context.Context) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&entity.Thread{}).
		Where("is_deleted = ?", false).
		Select("COALESCE(SUM(views), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *statRepository) SumLikes(ctx context.Context) (int64, error) {
	var threadLikes int64
	if err := r.db.WithContext(ctx).
		Model(&entity.Thread{}).
		Where("is_deleted = ?", false).
		Select("COALESCE(SUM(likes), 0)").
		Scan(&threadLikes).Error; err != nil {
		return 0, err
	}

	var replyLikes int64
	if err := r.db.WithContext(ctx).
		Model(&entity.Reply{}).
		Where("is_deleted = ?", false).
		Select("COALESCE(SUM(likes), 0)").
		Scan(&replyLikes).Error; err != nil {
		return 0, err
	}

	return threadLikes + replyLikes, nil
}
