package models

import "time"

// Mood is the emotional state a reader declares and a book is tagged with.
type Mood string

const (
	MoodHappy      Mood = "happy"
	MoodSad        Mood = "sad"
	MoodThoughtful Mood = "thoughtful"
	MoodExcited    Mood = "excited"
	MoodRelaxed    Mood = "relaxed"
	MoodTense      Mood = "tense"
	MoodCurious    Mood = "curious"
	MoodInspired   Mood = "inspired"
)

// Moods lists every supported mood in display order.
var Moods = []Mood{
	MoodHappy, MoodSad, MoodThoughtful, MoodExcited,
	MoodRelaxed, MoodTense, MoodCurious, MoodInspired,
}

// Valid reports whether m is one of the supported moods.
func (m Mood) Valid() bool {
	for _, v := range Moods {
		if m == v {
			return true
		}
	}
	return false
}

// Complexity is the reading difficulty of a book.
type Complexity string

const (
	ComplexityEasy        Complexity = "easy"
	ComplexityMedium      Complexity = "medium"
	ComplexityChallenging Complexity = "challenging"
)

var Complexities = []Complexity{ComplexityEasy, ComplexityMedium, ComplexityChallenging}

func (c Complexity) Valid() bool {
	for _, v := range Complexities {
		if c == v {
			return true
		}
	}
	return false
}

// Personality is a reader disposition used for soft matching against books.
type Personality string

const (
	PersonalityIntrovert   Personality = "introvert"
	PersonalityExtrovert   Personality = "extrovert"
	PersonalityAnalytical  Personality = "analytical"
	PersonalityCreative    Personality = "creative"
	PersonalityPractical   Personality = "practical"
	PersonalityAdventurous Personality = "adventurous"
)

var Personalities = []Personality{
	PersonalityIntrovert, PersonalityExtrovert, PersonalityAnalytical,
	PersonalityCreative, PersonalityPractical, PersonalityAdventurous,
}

func (p Personality) Valid() bool {
	for _, v := range Personalities {
		if p == v {
			return true
		}
	}
	return false
}

// Genre is a catalog genre.
type Genre struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Author is a catalog author.
type Author struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

// Book is a catalog entry with the attributes the recommender matches on.
type Book struct {
	ID               int         `json:"id"`
	Title            string      `json:"title"`
	AuthorID         int         `json:"author"`
	AuthorName       string      `json:"author_name"`
	GenreIDs         []int       `json:"genre_ids"`
	Genres           []string    `json:"genres_list"`
	Description      string      `json:"description"`
	CoverURL         string      `json:"cover_image"`
	PublishedDate    string      `json:"published_date"`
	Mood             Mood        `json:"suitable_moods"`
	Themes           string      `json:"themes"`
	Complexity       Complexity  `json:"complexity"`
	PersonalityMatch Personality `json:"personality_match"`
	PageCount        int         `json:"page_count"`
	ISBN             string      `json:"isbn"`
	Language         string      `json:"language"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// HasGenre reports whether the book is tagged with genreID.
func (b Book) HasGenre(genreID int) bool {
	for _, id := range b.GenreIDs {
		if id == genreID {
			return true
		}
	}
	return false
}

// BookListParams holds query parameters for book listing.
type BookListParams struct {
	Page        int         `query:"page"`
	PageSize    int         `query:"page_size"`
	Mood        Mood        `query:"mood"`
	Personality Personality `query:"personality"`
	Complexity  Complexity  `query:"complexity"`
	Genre       string      `query:"genre"`
	Search      string      `query:"search"`
	SortBy      string      `query:"sort_by"`
	Order       string      `query:"order"`
}

// Validate sets defaults and drops unsupported values.
func (p *BookListParams) Validate() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 20
	}
	validSorts := map[string]bool{"title": true, "published_date": true, "created_at": true}
	if !validSorts[p.SortBy] {
		p.SortBy = "created_at"
	}
	if p.Order != "asc" && p.Order != "desc" {
		p.Order = "desc"
	}
	if p.Mood != "" && !p.Mood.Valid() {
		p.Mood = ""
	}
	if p.Personality != "" && !p.Personality.Valid() {
		p.Personality = ""
	}
	if p.Complexity != "" && !p.Complexity.Valid() {
		p.Complexity = ""
	}
}

// BookListResponse is the paginated book listing response.
type BookListResponse struct {
	Page         int    `json:"page"`
	PageSize     int    `json:"page_size"`
	TotalPages   int    `json:"total_pages"`
	TotalResults int    `json:"total_results"`
	Data         []Book `json:"data"`
}

// CatalogFile is the on-disk format used to import genres, authors and books.
type CatalogFile struct {
	Genres  []Genre       `json:"genres"`
	Authors []Author      `json:"authors"`
	Books   []CatalogBook `json:"books"`
}

// CatalogBook references its author and genres by name.
type CatalogBook struct {
	Title            string      `json:"title"`
	Author           string      `json:"author"`
	Genres           []string    `json:"genres"`
	Description      string      `json:"description"`
	CoverURL         string      `json:"cover_image"`
	PublishedDate    string      `json:"published_date"`
	Mood             Mood        `json:"suitable_moods"`
	Themes           string      `json:"themes"`
	Complexity       Complexity  `json:"complexity"`
	PersonalityMatch Personality `json:"personality_match"`
	PageCount        int         `json:"page_count"`
	ISBN             string      `json:"isbn"`
	Language         string      `json:"language"`
}

// ImportResult summarizes a catalog import.
type ImportResult struct {
	Genres  int `json:"genres"`
	Authors int `json:"authors"`
	Books   int `json:"books"`
}
