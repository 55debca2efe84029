package thread

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sitecraft.dev/forumservice/internal/entity"
)

// sortColumns is the allow-list for client-supplied sortBy values. Anything
// not in here falls back to latest activity; the client string is never
// interpolated into the query.
var sortColumns = map[string]string{
	"updatedAt": "updated_at DESC",
	"replies":   "reply_count DESC",
	"views":     "views DESC",
	"likes":     "likes DESC",
}

type ListQuery struct {
	CategoryID *uuid.UUID
	AuthorID   *uuid.UUID
	Pinned     *bool
	SortBy     string
	Offset     int
	Limit      int
}

type Repository interface {
	Create(ctx context.Context, thread *entity.Thread) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Thread, error)
	FindLiveByID(ctx context.Context, id uuid.UUID) (*entity.Thread, error)
	FindAll(ctx context.Context, q ListQuery) ([]*entity.Thread, int64, error)
	Search(ctx context.Context, query string, limit int) ([]*entity.Thread, error)
	Update(ctx context.Context, thread *entity.Thread) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Moderate(ctx context.Context, thread *entity.Thread, logEntry *entity.ModerationLog) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, thread *entity.Thread) error {
	return r.db.WithContext(ctx).Create(thread).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Thread, error) {
	var thread entity.Thread
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ?", id).
		First(&thread).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *repository) FindLiveByID(ctx context.Context, id uuid.UUID) (*entity.Thread, error) {
	var thread entity.Thread
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&thread).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *repository) FindAll(ctx context.Context, q ListQuery) ([]*entity.Thread, int64, error) {
	var threads []*entity.Thread
	var total int64

	query := r.db.WithContext(ctx).
		Preload("Category").
		Where("is_deleted = ?", false)

	if q.CategoryID != nil {
		query = query.Where("category_id = ?", q.CategoryID)
	}
	if q.AuthorID != nil {
		query = query.Where("author_id = ?", q.AuthorID)
	}
	if q.Pinned != nil {
		query = query.Where("is_pinned = ?", *q.Pinned)
	}

	if err := query.Model(&entity.Thread{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := sortColumns[q.SortBy]
	if !ok {
		order = sortColumns["updatedAt"]
	}

	if err := query.Order(order).Offset(q.Offset).Limit(q.Limit).Find(&threads).Error; err != nil {
		return nil, 0, err
	}

	return threads, total, nil
}

func (r *repository) Search(ctx context.Context, query string, limit int) ([]*entity.Thread, error) {
	var threads []*entity.Thread
	pattern := "%" + query + "%"
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("is_deleted = ?", false).
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(content) LIKE LOWER(?)", pattern, pattern).
		Order("updated_at DESC").
		Limit(limit).
		Find(&threads).Error; err != nil {
		return nil, err
	}
	return threads, nil
}

// Update writes the editable columns only. Counters (views, likes,
// reply_count) are mutated with atomic expressions elsewhere; writing the
// whole row here would revert a counter bump committed between the read
// and this write.
func (r *repository) Update(ctx context.Context, thread *entity.Thread) error {
	return r.db.WithContext(ctx).
		Model(thread).
		Select("title", "content", "category_id", "tags").
		Updates(thread).Error
}

// IncrementViews bumps the counter atomically in the database. UpdateColumn
// skips hooks so updated_at is untouched: a view is not "activity".
func (r *repository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.Thread{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.Thread{}).
		Where("id = ?", id).
		UpdateColumn("is_deleted", true).Error
}

// Moderate persists the state change and its audit log row atomically.
// Only the moderation flags are written so the counter columns stay
// untouched by a stale in-memory copy.
func (r *repository) Moderate(ctx context.Context, thread *entity.Thread, logEntry *entity.ModerationLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(thread).
			Select("is_pinned", "is_locked", "is_deleted").
			Updates(thread).Error; err != nil {
			return err
		}
		return tx.Create(logEntry).Error
	})
}
