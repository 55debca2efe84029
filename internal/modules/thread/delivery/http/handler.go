package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	threadDto "sitecraft.dev/forumservice/internal/modules/thread/dto"
	thread "sitecraft.dev/forumservice/internal/modules/thread/service"
	"sitecraft.dev/forumservice/pkg/apperror"
	"sitecraft.dev/forumservice/pkg/ratelimiter"
	"sitecraft.dev/forumservice/pkg/response"
	"sitecraft.dev/forumservice/pkg/validator"
)

type ThreadHandler struct {
	service thread.Service
}

func NewThreadHandler(service thread.Service) *ThreadHandler {
	return &ThreadHandler{service: service}
}

func (h *ThreadHandler) CreateThread(c *gin.Context) {
	var req threadDto.CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, fmt.Errorf("%s: %w", validator.FormatValidationError(err), apperror.ErrInvalidInput))
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	created, err := h.service.CreateThread(c.Request.Context(), userID, req)
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

func (h *ThreadHandler) GetThread(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, fmt.Errorf("invalid thread id: %w", apperror.ErrInvalidInput))
		return
	}

	incrementView, _ := strconv.ParseBool(c.Query("incrementView"))

	found, err := h.service.GetThread(c.Request.Context(), id, incrementView)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, found)
}

func (h *ThreadHandler) ListThreads(c *gin.Context) {
	var filter threadDto.ThreadFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, fmt.Errorf("%s: %w", validator.FormatValidationError(err), apperror.ErrInvalidInput))
		return
	}

	threads, err := h.service.ListThreads(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, threads)
}

func (h *ThreadHandler) UpdateThread(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, fmt.Errorf("invalid thread id: %w", apperror.ErrInvalidInput))
		return
	}

	var req threadDto.UpdateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, fmt.Errorf("%s: %w", validator.FormatValidationError(err), apperror.ErrInvalidInput))
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	updated, err := h.service.UpdateThread(c.Request.Context(), userID, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, updated)
}

func (h *ThreadHandler) DeleteThread(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, fmt.Errorf("invalid thread id: %w", apperror.ErrInvalidInput))
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.DeleteThread(c.Request.Context(), userID, response.IsAdmin(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"message": "thread deleted successfully"})
}

func (h *ThreadHandler) ModerateThread(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, fmt.Errorf("invalid thread id: %w", apperror.ErrInvalidInput))
		return
	}

	var req threadDto.ModerateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, fmt.Errorf("%s: %w", validator.FormatValidationError(err), apperror.ErrInvalidInput))
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	moderated, err := h.service.Moderate(c.Request.Context(), userID, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, moderated)
}

func (h *ThreadHandler) SearchThreads(c *gin.Context) {
	var filter threadDto.SearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, fmt.Errorf("%s: %w", validator.FormatValidationError(err), apperror.ErrInvalidInput))
		return
	}

	threads, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, threads)
}
