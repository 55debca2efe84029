package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateReplyRequest struct {
	Content string `json:"content" binding:"required"`
}

type UpdateReplyRequest struct {
	Content string `json:"content" binding:"required"`
}

type ReplyFilter struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type ReplyResponse struct {
	ID        uuid.UUID `json:"id"`
	ThreadID  uuid.UUID `json:"thread_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PaginatedReplyResponse struct {
	Replies    []ReplyResponse `json:"replies"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}
