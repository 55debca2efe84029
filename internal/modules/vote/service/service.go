package vote

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sitecraft.dev/forumservice/internal/entity"
	replyRepo "sitecraft.dev/forumservice/internal/modules/reply/repository"
	threadRepo "sitecraft.dev/forumservice/internal/modules/thread/repository"
	voteDto "sitecraft.dev/forumservice/internal/modules/vote/dto"
	voteRepo "sitecraft.dev/forumservice/internal/modules/vote/repository"
	"sitecraft.dev/forumservice/pkg/apperror"
)

type VoteService interface {
	ToggleVote(ctx context.Context, voterID uuid.UUID, targetType string, targetID uuid.UUID) (*voteDto.ToggleVoteResponse, error)
}

type voteService struct {
	voteRepo   voteRepo.VoteRepository
	threadRepo threadRepo.Repository
	replyRepo  replyRepo.ReplyRepository
}

func NewVoteService(voteRepo voteRepo.VoteRepository, threadRepo threadRepo.Repository, replyRepo replyRepo.ReplyRepository) VoteService {
	return &voteService{
		voteRepo:   voteRepo,
		threadRepo: threadRepo,
		replyRepo:  replyRepo,
	}
}

func (s *voteService) ToggleVote(ctx context.Context, voterID uuid.UUID, targetType string, targetID uuid.UUID) (*voteDto.ToggleVoteResponse, error) {
	authorID, err := s.checkTarget(ctx, voterID, targetType, targetID)
	if err != nil {
		return nil, err
	}
	if authorID == voterID {
		return nil, fmt.Errorf("you cannot like your own %s: %w", targetType, apperror.ErrForbidden)
	}

	liked, err := s.voteRepo.Toggle(ctx, voterID, targetType, targetID)
	if err != nil {
		// A concurrent toggle from the same user can trip the unique vote
		// index; one retry settles on the surviving state.
		liked, err = s.voteRepo.Toggle(ctx, voterID, targetType, targetID)
		if err != nil {
			log.Printf("vote toggle failed after retry: %v", err)
			return nil, fmt.Errorf("could not record vote: %w", apperror.ErrInternal)
		}
	}

	likeCount, err := s.currentLikes(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}

	return &voteDto.ToggleVoteResponse{
		Liked:     liked,
		LikeCount: likeCount,
	}, nil
}

// checkTarget validates the target exists and may receive votes, and
// returns its author so self-likes can be rejected.
func (s *voteService) checkTarget(ctx context.Context, voterID uuid.UUID, targetType string, targetID uuid.UUID) (uuid.UUID, error) {
	switch targetType {
	case entity.VoteTargetThread:
		thread, err := s.threadRepo.FindByID(ctx, targetID)
		if err != nil {
			return uuid.Nil, wrapNotFound(err, "thread not found")
		}
		if !thread.Writable() {
			return uuid.Nil, fmt.Errorf("thread is locked or deleted: %w", apperror.ErrLocked)
		}
		return thread.AuthorID, nil

	case entity.VoteTargetReply:
		reply, err := s.replyRepo.FindLiveByID(ctx, targetID)
		if err != nil {
			return uuid.Nil, wrapNotFound(err, "reply not found")
		}
		thread, err := s.threadRepo.FindByID(ctx, reply.ThreadID)
		if err != nil {
			return uuid.Nil, wrapNotFound(err, "thread not found")
		}
		if !thread.Writable() {
			return uuid.Nil, fmt.Errorf("thread is locked or deleted: %w", apperror.ErrLocked)
		}
		return reply.AuthorID, nil

	default:
		return uuid.Nil, fmt.Errorf("unknown vote target type %q: %w", targetType, apperror.ErrInvalidInput)
	}
}

// wrapNotFound maps a missing row to the not-found sentinel; any other
// repository error is a storage failure and passes through untouched.
func wrapNotFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", msg, apperror.ErrNotFound)
	}
	return err
}

func (s *voteService) currentLikes(ctx context.Context, targetType string, targetID uuid.UUID) (int, error) {
	switch targetType {
	case entity.VoteTargetThread:
		thread, err := s.threadRepo.FindByID(ctx, targetID)
		if err != nil {
			return 0, err
		}
		return thread.Likes, nil
	default:
		reply, err := s.replyRepo.FindLiveByID(ctx, targetID)
		if err != nil {
			return 0, err
		}
		return reply.Likes, nil
	}
}
