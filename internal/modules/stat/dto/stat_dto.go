package dto

type StatsResponse struct {
	TotalCategories         int64  `json:"total_categories"`
	TotalThreads            int64  `json:"total_threads"`
	TotalReplies            int64  `json:"total_replies"`
	TotalViews              int64  `json:"total_views"`
	TotalLikes              int64  `json:"total_likes"`
	AverageRepliesPerThread string `json:"average_replies_per_thread"`
}
