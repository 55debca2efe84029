package reply

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"sitecraft.dev/forumservice/internal/entity"
	replyDto "sitecraft.dev/forumservice/internal/modules/reply/dto"
	replyRepo "sitecraft.dev/forumservice/internal/modules/reply/repository"
	threadRepo "sitecraft.dev/forumservice/internal/modules/thread/repository"
	"sitecraft.dev/forumservice/pkg/apperror"
	"sitecraft.dev/forumservice/pkg/ratelimiter"
)

type ReplyService interface {
	CreateReply(ctx context.Context, authorID uuid.UUID, threadID uuid.UUID, req replyDto.CreateReplyRequest) (*replyDto.ReplyResponse, error)
	UpdateReply(ctx context.Context, authorID uuid.UUID, id uuid.UUID, req replyDto.UpdateReplyRequest) (*replyDto.ReplyResponse, error)
	DeleteReply(ctx context.Context, requesterID uuid.UUID, isAdmin bool, id uuid.UUID) error
	ListReplies(ctx context.Context, threadID uuid.UUID, filter replyDto.ReplyFilter) (*replyDto.PaginatedReplyResponse, error)
}

type replyService struct {
	replyRepo   replyRepo.ReplyRepository
	threadRepo  threadRepo.Repository
	redisClient *redis.Client
	sanitizer   *bluemonday.Policy
}

func NewReplyService(replyRepo replyRepo.ReplyRepository, threadRepo threadRepo.Repository, redisClient *redis.Client) ReplyService {
	return &replyService{
		replyRepo:   replyRepo,
		threadRepo:  threadRepo,
		redisClient: redisClient,
		sanitizer:   bluemonday.StrictPolicy(),
	}
}

func (s *replyService) CreateReply(ctx context.Context, authorID uuid.UUID, threadID uuid.UUID, req replyDto.CreateReplyRequest) (*replyDto.ReplyResponse, error) {
	cleanup, err := s.checkCreateReplyRateLimit(ctx, authorID)
	if err != nil {
		return nil, err
	}
	creationFailed := true
	defer func() {
		if creationFailed && cleanup != nil {
			cleanup()
		}
	}()

	thread, err := s.threadRepo.FindByID(ctx, threadID)
	if err != nil {
		return nil, wrapNotFound(err, "thread not found")
	}
	if !thread.Writable() {
		return nil, fmt.Errorf("thread does not accept replies: %w", apperror.ErrLocked)
	}

	content := s.sanitize(req.Content)
	if content == "" {
		return nil, fmt.Errorf("content must not be empty: %w", apperror.ErrInvalidInput)
	}

	reply := &entity.Reply{
		ThreadID: threadID,
		AuthorID: authorID,
		Content:  content,
	}

	if err := s.replyRepo.CreateWithCounter(ctx, reply); err != nil {
		return nil, err
	}

	creationFailed = false

	return buildReplyResponse(reply), nil
}

func (s *replyService) UpdateReply(ctx context.Context, authorID uuid.UUID, id uuid.UUID, req replyDto.UpdateReplyRequest) (*replyDto.ReplyResponse, error) {
	reply, err := s.replyRepo.FindLiveByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "reply not found")
	}

	if reply.AuthorID != authorID {
		return nil, fmt.Errorf("only the author may edit a reply: %w", apperror.ErrForbidden)
	}

	thread, err := s.threadRepo.FindByID(ctx, reply.ThreadID)
	if err != nil {
		return nil, wrapNotFound(err, "thread not found")
	}
	if !thread.Writable() {
		return nil, fmt.Errorf("thread is locked: %w", apperror.ErrLocked)
	}

	content := s.sanitize(req.Content)
	if content == "" {
		return nil, fmt.Errorf("content must not be empty: %w", apperror.ErrInvalidInput)
	}
	reply.Content = content

	if err := s.replyRepo.Update(ctx, reply); err != nil {
		return nil, err
	}

	return buildReplyResponse(reply), nil
}

func (s *replyService) DeleteReply(ctx context.Context, requesterID uuid.UUID, isAdmin bool, id uuid.UUID) error {
	reply, err := s.replyRepo.FindLiveByID(ctx, id)
	if err != nil {
		return wrapNotFound(err, "reply not found")
	}

	thread, err := s.threadRepo.FindByID(ctx, reply.ThreadID)
	if err != nil {
		return wrapNotFound(err, "thread not found")
	}

	// The thread's author moderates their own thread: they may remove any
	// reply in it, not just their own.
	allowed := requesterID == reply.AuthorID || requesterID == thread.AuthorID || isAdmin
	if !allowed {
		return fmt.Errorf("not allowed to delete this reply: %w", apperror.ErrForbidden)
	}

	return s.replyRepo.SoftDeleteWithCounter(ctx, reply)
}

func (s *replyService) ListReplies(ctx context.Context, threadID uuid.UUID, filter replyDto.ReplyFilter) (*replyDto.PaginatedReplyResponse, error) {
	if _, err := s.threadRepo.FindLiveByID(ctx, threadID); err != nil {
		return nil, wrapNotFound(err, "thread not found")
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	replies, total, err := s.replyRepo.FindByThread(ctx, threadID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]replyDto.ReplyResponse, 0, len(replies))
	for _, r := range replies {
		responses = append(responses, *buildReplyResponse(r))
	}

	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	if pages < 1 {
		pages = 1
	}

	return &replyDto.PaginatedReplyResponse{
		Replies:    responses,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: pages,
	}, nil
}

// wrapNotFound maps a missing row to the not-found sentinel; any other
// repository error is a storage failure and passes through untouched.
func wrapNotFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", msg, apperror.ErrNotFound)
	}
	return err
}

func buildReplyResponse(reply *entity.Reply) *replyDto.ReplyResponse {
	return &replyDto.ReplyResponse{
		ID:        reply.ID,
		ThreadID:  reply.ThreadID,
		AuthorID:  reply.AuthorID,
		Content:   reply.Content,
		Likes:     reply.Likes,
		CreatedAt: reply.CreatedAt,
		UpdatedAt: reply.UpdatedAt,
	}
}

func (s *replyService) sanitize(input string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(input))
}

func (s *replyService) checkCreateReplyRateLimit(ctx context.Context, userID uuid.UUID) (func(), error) {
	globalLimit := ratelimiter.GetDurationFromEnv("RATE_LIMIT_GLOBAL", 5*time.Second)
	allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redisClient, userID, ratelimiter.ScopeGlobal, globalLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redisClient, userID, ratelimiter.ScopeGlobal)
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you are doing that too fast. Please wait %.0f seconds", ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	replyLimit := ratelimiter.GetDurationFromEnv("RATE_LIMIT_REPLY", 15*time.Second)
	allowed, err = ratelimiter.CheckAndSetRateLimit(ctx, s.redisClient, userID, ratelimiter.ScopeReply, replyLimit)
	if err != nil {
		_ = ratelimiter.ClearRateLimit(ctx, s.redisClient, userID, ratelimiter.ScopeGlobal)
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		_ = ratelimiter.ClearRateLimit(ctx, s.redisClient, userID, ratelimiter.ScopeGlobal)
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redisClient, userID, ratelimiter.ScopeReply)
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you can only reply every %.0f seconds. Please wait %.0f seconds", replyLimit.Seconds(), ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	cleanup := func() {
		_ = ratelimiter.ClearRateLimit(ctx, s.redisClient, userID, ratelimiter.ScopeGlobal)
		_ = ratelimiter.ClearRateLimit(ctx, s.redisClient, userID, ratelimiter.ScopeReply)
	}

	return cleanup, nil
}
