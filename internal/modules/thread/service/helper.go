package thread

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sitecraft.dev/forumservice/internal/entity"
	threadDto "sitecraft.dev/forumservice/internal/modules/thread/dto"
	"sitecraft.dev/forumservice/pkg/ratelimiter"
)

// wrapNotFound maps a missing row onto the given sentinel. Any other
// repository error is a storage failure and passes through untouched, so
// it surfaces as an internal error instead of a 404.
func wrapNotFound(err error, msg string, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", msg, sentinel)
	}
	return err
}

func buildThreadResponse(thread *entity.Thread) *threadDto.ThreadResponse {
	tags := thread.Tags
	if tags == nil {
		tags = []string{}
	}

	return &threadDto.ThreadResponse{
		ID:           thread.ID,
		CategoryID:   thread.CategoryID,
		CategoryName: thread.Category.Name,
		AuthorID:     thread.AuthorID,
		Title:        thread.Title,
		Content:      thread.Content,
		Tags:         tags,
		Views:        thread.Views,
		Replies:      thread.ReplyCount,
		Likes:        thread.Likes,
		IsPinned:     thread.IsPinned,
		IsLocked:     thread.IsLocked,
		CreatedAt:    thread.CreatedAt,
		UpdatedAt:    thread.UpdatedAt,
	}
}

func (s *service) sanitize(input string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(input))
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.ToLower(tag))
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	return page, limit
}

// totalPages is never below 1 so an empty listing still reports one page.
func totalPages(total int64, limit int) int {
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	if pages < 1 {
		pages = 1
	}
	return pages
}

func (s *service) checkCreateThreadRateLimit(ctx context.Context, userID uuid.UUID) (func(), error) {
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

	threadLimit := ratelimiter.GetDurationFromEnv("RATE_LIMIT_THREAD", 5*time.Minute)
	allowed, err = ratelimiter.CheckAndSetRateLimit(ctx, s.redisClient, userID, ratelimiter.ScopeThread, threadLimit)
	if err != nil {
		_ = ratelimiter.ClearRateLimit(ctx, s.redisClient, userID, ratelimiter.ScopeGlobal)
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		_ = ratelimiter.ClearRateLimit(ctx, s.redisClient, userID, ratelimiter.ScopeGlobal)
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redisClient, userID, ratelimiter.ScopeThread)
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you can only create one thread every %.0f minutes. Please wait %.0f minutes", threadLimit.Minutes(), ttl.Minutes()),
			RetryAfter: ttl,
		}
	}

	cleanup := func() {
		_ = ratelimiter.ClearRateLimit(ctx, s.redisClient, userID, ratelimiter.ScopeGlobal)
		_ = ratelimiter.ClearRateLimit(ctx, s.redisClient, userID, ratelimiter.ScopeThread)
	}

	return cleanup, nil
}
