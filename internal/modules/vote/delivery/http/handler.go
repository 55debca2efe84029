package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sitecraft.dev/forumservice/internal/entity"
	vote "sitecraft.dev/forumservice/internal/modules/vote/service"
	"sitecraft.dev/forumservice/pkg/apperror"
	"sitecraft.dev/forumservice/pkg/response"
)

type VoteHandler struct {
	service vote.VoteService
}

func NewVoteHandler(service vote.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

func (h *VoteHandler) ToggleThreadVote(c *gin.Context) {
	h.toggle(c, entity.VoteTargetThread)
}

func (h *VoteHandler) ToggleReplyVote(c *gin.Context) {
	h.toggle(c, entity.VoteTargetReply)
}

func (h *VoteHandler) toggle(c *gin.Context, targetType string) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, fmt.Errorf("invalid %s id: %w", targetType, apperror.ErrInvalidInput))
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.ToggleVote(c.Request.Context(), userID, targetType, targetID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, result)
}
