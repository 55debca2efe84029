package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	stat "sitecraft.dev/forumservice/internal/modules/stat/service"
	"sitecraft.dev/forumservice/pkg/response"
)

type StatHandler struct {
	service stat.StatService
}

func NewStatHandler(service stat.StatService) *StatHandler {
	return &StatHandler{service: service}
}

func (h *StatHandler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusOK, stats)
}
