package vote

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sitecraft.dev/forumservice/internal/entity"
	replyRepo "sitecraft.dev/forumservice/internal/modules/reply/repository"
	threadRepo "sitecraft.dev/forumservice/internal/modules/thread/repository"
	voteRepo "sitecraft.dev/forumservice/internal/modules/vote/repository"
	"sitecraft.dev/forumservice/internal/testutil"
	"sitecraft.dev/forumservice/pkg/apperror"
)

type voteTestEnv struct {
	db     *gorm.DB
	svc    VoteService
	votes  voteRepo.VoteRepository
	thread *entity.Thread
	reply  *entity.Reply
}

func newVoteTestEnv(t *testing.T) *voteTestEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	category := &entity.Category{Name: "General", Description: "general", IsActive: true}
	require.NoError(t, db.Create(category).Error)

	thread := &entity.Thread{
		CategoryID: category.ID,
		AuthorID:   uuid.New(),
		Title:      "Likeable",
		Content:    "Vote on me",
	}
	require.NoError(t, db.Create(thread).Error)

	reply := &entity.Reply{
		ThreadID: thread.ID,
		AuthorID: uuid.New(),
		Content:  "Vote on me too",
	}
	require.NoError(t, db.Create(reply).Error)

	votes := voteRepo.NewVoteRepository(db)
	svc := NewVoteService(votes, threadRepo.NewRepository(db), replyRepo.NewReplyRepository(db))
	return &voteTestEnv{db: db, svc: svc, votes: votes, thread: thread, reply: reply}
}

func (e *voteTestEnv) threadLikes(t *testing.T) int {
	t.Helper()
	var row entity.Thread
	require.NoError(t, e.db.First(&row, "id = ?", e.thread.ID).Error)
	return row.Likes
}

func TestToggleThreadVote(t *testing.T) {
	env := newVoteTestEnv(t)
	ctx := context.Background()
	voterID := uuid.New()

	t.Run("first toggle likes, second returns to baseline", func(t *testing.T) {
		res, err := env.svc.ToggleVote(ctx, voterID, entity.VoteTargetThread, env.thread.ID)
		require.NoError(t, err)
		assert.True(t, res.Liked)
		assert.Equal(t, 1, res.LikeCount)

		count, err := env.votes.CountFor(ctx, entity.VoteTargetThread, env.thread.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		res, err = env.svc.ToggleVote(ctx, voterID, entity.VoteTargetThread, env.thread.ID)
		require.NoError(t, err)
		assert.False(t, res.Liked)
		assert.Equal(t, 0, res.LikeCount)

		count, err = env.votes.CountFor(ctx, entity.VoteTargetThread, env.thread.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Zero(t, env.threadLikes(t))
	})

	t.Run("votes from different users accumulate", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			_, err := env.svc.ToggleVote(ctx, uuid.New(), entity.VoteTargetThread, env.thread.ID)
			require.NoError(t, err)
		}
		assert.Equal(t, 3, env.threadLikes(t))
	})

	t.Run("author cannot like their own thread", func(t *testing.T) {
		before := env.threadLikes(t)

		_, err := env.svc.ToggleVote(ctx, env.thread.AuthorID, entity.VoteTargetThread, env.thread.ID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
		assert.Equal(t, before, env.threadLikes(t), "rejected vote must leave no trace")
	})

	t.Run("unknown thread is not found", func(t *testing.T) {
		_, err := env.svc.ToggleVote(ctx, voterID, entity.VoteTargetThread, uuid.New())
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("locked thread rejects votes", func(t *testing.T) {
		require.NoError(t, env.db.Model(&entity.Thread{}).
			Where("id = ?", env.thread.ID).
			UpdateColumn("is_locked", true).Error)
		defer func() {
			require.NoError(t, env.db.Model(&entity.Thread{}).
				Where("id = ?", env.thread.ID).
				UpdateColumn("is_locked", false).Error)
		}()

		_, err := env.svc.ToggleVote(ctx, voterID, entity.VoteTargetThread, env.thread.ID)
		assert.ErrorIs(t, err, apperror.ErrLocked)
	})

	t.Run("deleted thread rejects votes", func(t *testing.T) {
		require.NoError(t, env.db.Model(&entity.Thread{}).
			Where("id = ?", env.thread.ID).
			UpdateColumn("is_deleted", true).Error)
		defer func() {
			require.NoError(t, env.db.Model(&entity.Thread{}).
				Where("id = ?", env.thread.ID).
				UpdateColumn("is_deleted", false).Error)
		}()

		_, err := env.svc.ToggleVote(ctx, voterID, entity.VoteTargetThread, env.thread.ID)
		assert.ErrorIs(t, err, apperror.ErrLocked)
	})

	t.Run("unknown target type rejected", func(t *testing.T) {
		_, err := env.svc.ToggleVote(ctx, voterID, "comment", env.thread.ID)
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})
}

func TestToggleReplyVote(t *testing.T) {
	env := newVoteTestEnv(t)
	ctx := context.Background()
	voterID := uuid.New()

	t.Run("round trip on a reply", func(t *testing.T) {
		res, err := env.svc.ToggleVote(ctx, voterID, entity.VoteTargetReply, env.reply.ID)
		require.NoError(t, err)
		assert.True(t, res.Liked)
		assert.Equal(t, 1, res.LikeCount)

		res, err = env.svc.ToggleVote(ctx, voterID, entity.VoteTargetReply, env.reply.ID)
		require.NoError(t, err)
		assert.False(t, res.Liked)
		assert.Equal(t, 0, res.LikeCount)
	})

	t.Run("author cannot like their own reply", func(t *testing.T) {
		_, err := env.svc.ToggleVote(ctx, env.reply.AuthorID, entity.VoteTargetReply, env.reply.ID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("deleted reply is not found", func(t *testing.T) {
		require.NoError(t, env.db.Model(&entity.Reply{}).
			Where("id = ?", env.reply.ID).
			UpdateColumn("is_deleted", true).Error)
		defer func() {
			require.NoError(t, env.db.Model(&entity.Reply{}).
				Where("id = ?", env.reply.ID).
				UpdateColumn("is_deleted", false).Error)
		}()

		_, err := env.svc.ToggleVote(ctx, voterID, entity.VoteTargetReply, env.reply.ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("locked parent thread blocks reply votes", func(t *testing.T) {
		require.NoError(t, env.db.Model(&entity.Thread{}).
			Where("id = ?", env.thread.ID).
			UpdateColumn("is_locked", true).Error)

		_, err := env.svc.ToggleVote(ctx, voterID, entity.VoteTargetReply, env.reply.ID)
		assert.ErrorIs(t, err, apperror.ErrLocked)
	})
}

func TestVoteIsolationBetweenTargets(t *testing.T) {
	env := newVoteTestEnv(t)
	ctx := context.Background()
	voterID := uuid.New()

	// The same user may like a thread and a reply inside it independently.
	_, err := env.svc.ToggleVote(ctx, voterID, entity.VoteTargetThread, env.thread.ID)
	require.NoError(t, err)
	res, err := env.svc.ToggleVote(ctx, voterID, entity.VoteTargetReply, env.reply.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)

	threadCount, err := env.votes.CountFor(ctx, entity.VoteTargetThread, env.thread.ID)
	require.NoError(t, err)
	replyCount, err := env.votes.CountFor(ctx, entity.VoteTargetReply, env.reply.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, threadCount)
	assert.EqualValues(t, 1, replyCount)
}

func TestStorageFailureIsNotNotFound(t *testing.T) {
	env := newVoteTestEnv(t)
	ctx := context.Background()

	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = env.svc.ToggleVote(ctx, uuid.New(), entity.VoteTargetThread, env.thread.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrNotFound, "a storage failure is not a missing target")
}
