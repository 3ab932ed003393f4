package models

import "time"

// InteractionType is the kind of action a user took on a book.
type InteractionType string

const (
	InteractionView    InteractionType = "view"
	InteractionSave    InteractionType = "save"
	InteractionRead    InteractionType = "read"
	InteractionLike    InteractionType = "like"
	InteractionDislike InteractionType = "dislike"
	InteractionRate    InteractionType = "rate"
)

var InteractionTypes = []InteractionType{
	InteractionView, InteractionSave, InteractionRead,
	InteractionLike, InteractionDislike, InteractionRate,
}

func (t InteractionType) Valid() bool {
	for _, v := range InteractionTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Preferences is the per-user reading profile.
type Preferences struct {
	ID                  int         `json:"id"`
	UserID              int         `json:"user"`
	FavoriteGenreIDs    []int       `json:"favorite_genres"`
	FavoriteGenreNames  []string    `json:"favorite_genres_names"`
	PreferredComplexity Complexity  `json:"preferred_complexity"`
	PersonalityTrait    Personality `json:"personality_traits"`
	PreferFiction       bool        `json:"prefer_fiction"`
	PreferSeries        bool        `json:"prefer_series"`
	PreferRecentBooks   bool        `json:"prefer_recent_books"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// DefaultPreferences returns the profile created on first access.
func DefaultPreferences(userID int) Preferences {
	return Preferences{
		UserID:              userID,
		FavoriteGenreIDs:    []int{},
		FavoriteGenreNames:  []string{},
		PreferredComplexity: ComplexityMedium,
		PersonalityTrait:    PersonalityCreative,
		PreferFiction:       true,
		PreferSeries:        false,
		PreferRecentBooks:   true,
	}
}

// UpdatePreferencesRequest is the body for updating preferences.
// Nil fields are left unchanged.
type UpdatePreferencesRequest struct {
	FavoriteGenres      *[]int       `json:"favorite_genres" validate:"omitempty,dive,gt=0"`
	PreferredComplexity *Complexity  `json:"preferred_complexity" validate:"omitempty,complexity"`
	PersonalityTrait    *Personality `json:"personality_traits" validate:"omitempty,personality"`
	PreferFiction       *bool        `json:"prefer_fiction"`
	PreferSeries        *bool        `json:"prefer_series"`
	PreferRecentBooks   *bool        `json:"prefer_recent_books"`
}

// Apply merges the non-nil fields of r into p.
func (r UpdatePreferencesRequest) Apply(p *Preferences) {
	if r.FavoriteGenres != nil {
		p.FavoriteGenreIDs = append([]int{}, (*r.FavoriteGenres)...)
	}
	if r.PreferredComplexity != nil {
		p.PreferredComplexity = *r.PreferredComplexity
	}
	if r.PersonalityTrait != nil {
		p.PersonalityTrait = *r.PersonalityTrait
	}
	if r.PreferFiction != nil {
		p.PreferFiction = *r.PreferFiction
	}
	if r.PreferSeries != nil {
		p.PreferSeries = *r.PreferSeries
	}
	if r.PreferRecentBooks != nil {
		p.PreferRecentBooks = *r.PreferRecentBooks
	}
}

// PersonalityQuizRequest carries the trait chosen for each quiz question.
type PersonalityQuizRequest struct {
	Answers []Personality `json:"answers" validate:"required,min=1,dive,personality"`
}

// PersonalityQuizResponse reports the trait derived from a quiz.
type PersonalityQuizResponse struct {
	DominantTrait Personality  `json:"dominant_trait"`
	Preferences   *Preferences `json:"preferences"`
}

// MoodEntry is one observation in a user's mood history.
type MoodEntry struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user"`
	Mood      Mood      `json:"mood"`
	Intensity int       `json:"intensity"`
	Timestamp time.Time `json:"timestamp"`
}

// CreateMoodRequest is the body for recording a mood.
type CreateMoodRequest struct {
	Mood      Mood `json:"mood" validate:"required,mood"`
	Intensity int  `json:"intensity" validate:"omitempty,min=1,max=10"`
}

// Interaction records a user's action on a book.
type Interaction struct {
	ID        int             `json:"id"`
	UserID    int             `json:"user"`
	BookID    int             `json:"book"`
	BookTitle string          `json:"book_title,omitempty"`
	Type      InteractionType `json:"interaction_type"`
	Rating    *int            `json:"rating"`
	Timestamp time.Time       `json:"timestamp"`
}

// CreateInteractionRequest is the body for recording an interaction.
type CreateInteractionRequest struct {
	BookID          int             `json:"book" validate:"required,gt=0"`
	InteractionType InteractionType `json:"interaction_type" validate:"required,interaction"`
	Rating          *int            `json:"rating" validate:"omitempty,min=1,max=5"`
}
