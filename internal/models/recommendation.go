package models

import "time"

// Recommendation is a scored book for a user under one mood.
// There is at most one row per (user, book, mood).
type Recommendation struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user"`
	BookID    int       `json:"book"`
	Book      *Book     `json:"book_details,omitempty"`
	Score     float64   `json:"score"`
	Reason    string    `json:"reason"`
	Mood      Mood      `json:"current_mood"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SuggestRequest is the body of the suggestion endpoint. A missing mood is
// rejected by the ranker, not by struct validation. A nil Intensity means
// the default; an explicit value must lie in [1,10].
type SuggestRequest struct {
	Mood      Mood `json:"mood" validate:"omitempty,mood"`
	Intensity *int `json:"intensity" validate:"omitempty,min=1,max=10"`
}

// SetReadRequest is the body for marking a recommendation read or unread.
type SetReadRequest struct {
	IsRead *bool `json:"is_read" validate:"required"`
}

// RecommendationListResponse wraps an ordered recommendation list.
type RecommendationListResponse struct {
	UserID          int              `json:"user_id"`
	Mood            Mood             `json:"mood,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
	GeneratedAt     string           `json:"generated_at"`
}
