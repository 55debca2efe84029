package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateThreadRequest struct {
	CategoryID string   `json:"category_id" binding:"required,uuid"`
	Title      string   `json:"title" binding:"required,max=255"`
	Content    string   `json:"content" binding:"required"`
	Tags       []string `json:"tags"`
}

type UpdateThreadRequest struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	CategoryID *string   `json:"category_id"`
	Tags       *[]string `json:"tags"`
}

type ModerateThreadRequest struct {
	Action string `json:"action" binding:"required,oneof=pin unpin lock unlock delete"`
	Reason string `json:"reason"`
}

type ThreadFilter struct {
	CategoryID string `form:"categoryId"`
	AuthorID   string `form:"authorId"`
	Pinned     *bool  `form:"pinned"`
	SortBy     string `form:"sortBy"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

type SearchFilter struct {
	Query string `form:"q"`
	Limit int    `form:"limit"`
}

type ThreadResponse struct {
	ID           uuid.UUID `json:"id"`
	CategoryID   uuid.UUID `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	AuthorID     uuid.UUID `json:"author_id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Tags         []string  `json:"tags"`
	Views        int       `json:"views"`
	Replies      int       `json:"replies"`
	Likes        int       `json:"likes"`
	IsPinned     bool      `json:"is_pinned"`
	IsLocked     bool      `json:"is_locked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type PaginatedThreadResponse struct {
	Threads    []ThreadResponse `json:"threads"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}
