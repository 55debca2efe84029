package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	replyDto "sitecraft.dev/forumservice/internal/modules/reply/dto"
	reply "sitecraft.dev/forumservice/internal/modules/reply/service"
	"sitecraft.dev/forumservice/pkg/apperror"
	"sitecraft.dev/forumservice/pkg/ratelimiter"
	"sitecraft.dev/forumservice/pkg/response"
	"sitecraft.dev/forumservice/pkg/validator"
)

type ReplyHandler struct {
	service reply.ReplyService
}

func NewReplyHandler(service reply.ReplyService) *ReplyHandler {
	return &ReplyHandler{service: service}
}

func (h *ReplyHandler) CreateReply(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, fmt.Errorf("invalid thread id: %w", apperror.ErrInvalidInput))
		return
	}

	var req replyDto.CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, fmt.Errorf("%s: %w", validator.FormatValidationError(err), apperror.ErrInvalidInput))
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	created, err := h.service.CreateReply(c.Request.Context(), userID, threadID, req)
	if err != nil {
		if rateLimitErr, ok := err.(*ratelimiter.RateLimitError); ok {
			c.Header("Retry-After", fmt.Sprintf("%.0f", rateLimitErr.RetryAfter.Seconds()))
			c.JSON(http.StatusTooManyRequests, response.Envelope{Success: false, Error: rateLimitErr.Message})
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, created)
}

func (h *ReplyHandler) UpdateReply(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, fmt.Errorf("invalid reply id: %w", apperror.ErrInvalidInput))
		return
	}

	var req replyDto.UpdateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, fmt.Errorf("%s: %w", validator.FormatValidationError(err), apperror.ErrInvalidInput))
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	updated, err := h.service.UpdateReply(c.Request.Context(), userID, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, updated)
}

func (h *ReplyHandler) DeleteReply(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, fmt.Errorf("invalid reply id: %w", apperror.ErrInvalidInput))
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.DeleteReply(c.Request.Context(), userID, response.IsAdmin(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"message": "reply deleted successfully"})
}

func (h *ReplyHandler) ListReplies(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, fmt.Errorf("invalid thread id: %w", apperror.ErrInvalidInput))
		return
	}

	var filter replyDto.ReplyFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, fmt.Errorf("%s: %w", validator.FormatValidationError(err), apperror.ErrInvalidInput))
		return
	}

	replies, err := h.service.ListReplies(c.Request.Context(), threadID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, replies)
}
