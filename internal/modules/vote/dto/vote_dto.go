package dto

type ToggleVoteResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}
