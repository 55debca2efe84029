package thread

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"

	"sitecraft.dev/forumservice/internal/entity"
	categoryRepo "sitecraft.dev/forumservice/internal/modules/category/repository"
	threadDto "sitecraft.dev/forumservice/internal/modules/thread/dto"
	repo "sitecraft.dev/forumservice/internal/modules/thread/repository"
	"sitecraft.dev/forumservice/pkg/apperror"
)

type Service interface {
	CreateThread(ctx context.Context, authorID uuid.UUID, req threadDto.CreateThreadRequest) (*threadDto.ThreadResponse, error)
	GetThread(ctx context.Context, id uuid.UUID, incrementView bool) (*threadDto.ThreadResponse, error)
	ListThreads(ctx context.Context, filter threadDto.ThreadFilter) (*threadDto.PaginatedThreadResponse, error)
	UpdateThread(ctx context.Context, authorID uuid.UUID, id uuid.UUID, req threadDto.UpdateThreadRequest) (*threadDto.ThreadResponse, error)
	DeleteThread(ctx context.Context, requesterID uuid.UUID, isAdmin bool, id uuid.UUID) error
	Moderate(ctx context.Context, moderatorID uuid.UUID, id uuid.UUID, req threadDto.ModerateThreadRequest) (*threadDto.ThreadResponse, error)
	Search(ctx context.Context, filter threadDto.SearchFilter) ([]threadDto.ThreadResponse, error)
}

type service struct {
	threadRepo   repo.Repository
	categoryRepo categoryRepo.CategoryRepository
	redisClient  *redis.Client
	sanitizer    *bluemonday.Policy
}

func NewService(threadRepo repo.Repository, categoryRepo categoryRepo.CategoryRepository, redisClient *redis.Client) Service {
	return &service{
		threadRepo:   threadRepo,
		categoryRepo: categoryRepo,
		redisClient:  redisClient,
		sanitizer:    bluemonday.StrictPolicy(),
	}
}

func (s *service) CreateThread(ctx context.Context, authorID uuid.UUID, req threadDto.CreateThreadRequest) (*threadDto.ThreadResponse, error) {
	cleanup, err := s.checkCreateThreadRateLimit(ctx, authorID)
	if err != nil {
		return nil, err
	}
	creationFailed := true
	defer func() {
		if creationFailed && cleanup != nil {
			cleanup()
		}
	}()

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("invalid category id format: %w", apperror.ErrInvalidInput)
	}

	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, wrapNotFound(err, "category does not exist", apperror.ErrInvalidInput)
	}
	if !category.IsActive {
		return nil, fmt.Errorf("category is inactive: %w", apperror.ErrInvalidInput)
	}

	title := s.sanitize(req.Title)
	content := s.sanitize(req.Content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("title and content must not be empty: %w", apperror.ErrInvalidInput)
	}

	thread := &entity.Thread{
		CategoryID: category.ID,
		AuthorID:   authorID,
		Title:      title,
		Content:    content,
		Tags:       normalizeTags(req.Tags),
	}

	if err := s.threadRepo.Create(ctx, thread); err != nil {
		return nil, err
	}

	creationFailed = false
	thread.Category = *category

	return buildThreadResponse(thread), nil
}

func (s *service) GetThread(ctx context.Context, id uuid.UUID, incrementView bool) (*threadDto.ThreadResponse, error) {
	thread, err := s.threadRepo.FindLiveByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "thread not found", apperror.ErrNotFound)
	}

	// Best-effort: the caller opts in once per session, the service does no
	// dedup. A lost or doubled increment is documented imprecision.
	if incrementView {
		if err := s.threadRepo.IncrementViews(ctx, id); err != nil {
			return nil, err
		}
		thread.Views++
	}

	return buildThreadResponse(thread), nil
}

func (s *service) ListThreads(ctx context.Context, filter threadDto.ThreadFilter) (*threadDto.PaginatedThreadResponse, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)

	q := repo.ListQuery{
		Pinned: filter.Pinned,
		SortBy: filter.SortBy,
		Offset: (page - 1) * limit,
		Limit:  limit,
	}

	if filter.CategoryID != "" {
		id, err := uuid.Parse(filter.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("invalid category id: %w", apperror.ErrInvalidInput)
		}
		q.CategoryID = &id
	}
	if filter.AuthorID != "" {
		id, err := uuid.Parse(filter.AuthorID)
		if err != nil {
			return nil, fmt.Errorf("invalid author id: %w", apperror.ErrInvalidInput)
		}
		q.AuthorID = &id
	}

	threads, total, err := s.threadRepo.FindAll(ctx, q)
	if err != nil {
		return nil, err
	}

	responses := make([]threadDto.ThreadResponse, 0, len(threads))
	for _, t := range threads {
		responses = append(responses, *buildThreadResponse(t))
	}

	return &threadDto.PaginatedThreadResponse{
		Threads:    responses,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (s *service) UpdateThread(ctx context.Context, authorID uuid.UUID, id uuid.UUID, req threadDto.UpdateThreadRequest) (*threadDto.ThreadResponse, error) {
	thread, err := s.threadRepo.FindLiveByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "thread not found", apperror.ErrNotFound)
	}

	if thread.AuthorID != authorID {
		return nil, fmt.Errorf("only the author may edit a thread: %w", apperror.ErrForbidden)
	}
	if thread.IsLocked {
		return nil, fmt.Errorf("thread is locked: %w", apperror.ErrLocked)
	}

	if req.Title != nil {
		title := s.sanitize(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("title must not be empty: %w", apperror.ErrInvalidInput)
		}
		thread.Title = title
	}
	if req.Content != nil {
		content := s.sanitize(*req.Content)
		if content == "" {
			return nil, fmt.Errorf("content must not be empty: %w", apperror.ErrInvalidInput)
		}
		thread.Content = content
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("invalid category id format: %w", apperror.ErrInvalidInput)
		}
		category, err := s.categoryRepo.FindByID(ctx, categoryID)
		if err != nil {
			return nil, wrapNotFound(err, "category does not exist", apperror.ErrInvalidInput)
		}
		if !category.IsActive {
			return nil, fmt.Errorf("category is inactive: %w", apperror.ErrInvalidInput)
		}
		thread.CategoryID = category.ID
		thread.Category = *category
	}
	if req.Tags != nil {
		thread.Tags = normalizeTags(*req.Tags)
	}

	if err := s.threadRepo.Update(ctx, thread); err != nil {
		return nil, err
	}

	return buildThreadResponse(thread), nil
}

func (s *service) DeleteThread(ctx context.Context, requesterID uuid.UUID, isAdmin bool, id uuid.UUID) error {
	thread, err := s.threadRepo.FindLiveByID(ctx, id)
	if err != nil {
		return wrapNotFound(err, "thread not found", apperror.ErrNotFound)
	}

	// A lock freezes content, not existence: deletion stays available to
	// the author and admins even on locked threads.
	if thread.AuthorID != requesterID && !isAdmin {
		return fmt.Errorf("only the author or an admin may delete a thread: %w", apperror.ErrForbidden)
	}

	return s.threadRepo.SoftDelete(ctx, id)
}

func (s *service) Moderate(ctx context.Context, moderatorID uuid.UUID, id uuid.UUID, req threadDto.ModerateThreadRequest) (*threadDto.ThreadResponse, error) {
	thread, err := s.threadRepo.FindLiveByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "thread not found", apperror.ErrNotFound)
	}

	switch req.Action {
	case entity.ModerationActionPin:
		thread.IsPinned = true
	case entity.ModerationActionUnpin:
		thread.IsPinned = false
	case entity.ModerationActionLock:
		thread.IsLocked = true
	case entity.ModerationActionUnlock:
		thread.IsLocked = false
	case entity.ModerationActionDelete:
		thread.IsDeleted = true
	default:
		return nil, fmt.Errorf("unknown moderation action %q: %w", req.Action, apperror.ErrInvalidInput)
	}

	logEntry := &entity.ModerationLog{
		ThreadID:    thread.ID,
		ModeratorID: moderatorID,
		Action:      req.Action,
		Reason:      req.Reason,
	}

	if err := s.threadRepo.Moderate(ctx, thread, logEntry); err != nil {
		return nil, err
	}

	return buildThreadResponse(thread), nil
}

func (s *service) Search(ctx context.Context, filter threadDto.SearchFilter) ([]threadDto.ThreadResponse, error) {
	query := strings.TrimSpace(filter.Query)
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty: %w", apperror.ErrInvalidInput)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	threads, err := s.threadRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]threadDto.ThreadResponse, 0, len(threads))
	for _, t := range threads {
		responses = append(responses, *buildThreadResponse(t))
	}

	return responses, nil
}
