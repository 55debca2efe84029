package stat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sitecraft.dev/forumservice/internal/modules/stat/dto"
	repo "sitecraft.dev/forumservice/internal/modules/stat/repository"
)

const statsCacheKey = "forum:stats"

type StatService interface {
	GetStats(ctx context.Context) (*dto.StatsResponse, error)
}

type statService struct {
	repo        repo.StatRepository
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewStatService(repo repo.StatRepository, redisClient *redis.Client, cacheTTL time.Duration) StatService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &statService{
		repo:        repo,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

func (s *statService) GetStats(ctx context.Context) (*dto.StatsResponse, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, stats)
	return stats, nil
}

func (s *statService) compute(ctx context.Context) (*dto.StatsResponse, error) {
	categories, err := s.repo.CountActiveCategories(ctx)
	if err != nil {
		return nil, err
	}
	threads, err := s.repo.CountLiveThreads(ctx)
	if err != nil {
		return nil, err
	}
	replies, err := s.repo.CountLiveReplies(ctx)
	if err != nil {
		return nil, err
	}
	views, err := s.repo.SumThreadViews(ctx)
	if err != nil {
		return nil, err
	}
	likes, err := s.repo.SumLikes(ctx)
	if err != nil {
		return nil, err
	}

	average := "0.00"
	if threads > 0 {
		average = fmt.Sprintf("%.2f", float64(replies)/float64(threads))
	}

	return &dto.StatsResponse{
		TotalCategories:         categories,
		TotalThreads:            threads,
		TotalReplies:            replies,
		TotalViews:              views,
		TotalLikes:              likes,
		AverageRepliesPerThread: average,
	}, nil
}

// Cache misses and redis failures both fall back to computing from the
// database; stats stay available without redis.
func (s *statService) fromCache(ctx context.Context) *dto.StatsResponse {
	if s.redisClient == nil {
		return nil
	}

	val, err := s.redisClient.Get(ctx, statsCacheKey).Result()
	if err != nil {
		return nil
	}

	var stats dto.StatsResponse
	if err := json.Unmarshal([]byte(val), &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *statService) toCache(ctx context.Context, stats *dto.StatsResponse) {
	if s.redisClient == nil {
		return
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		return
	}
	_ = s.redisClient.Set(ctx, statsCacheKey, payload, s.cacheTTL).Err()
}
