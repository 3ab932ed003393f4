package recommend

import (
	"fmt"

	"book-discovery-recommendation-service/internal/models"
)

// Score components. The total is capped at MaxScore.
const (
	BaseScore             = 50.0
	MoodMatchBonus        = 20.0
	PersonalityMatchBonus = 15.0
	ComplexityMatchBonus  = 10.0
	LikedBonus            = 5.0
	MaxScore              = 100.0
)

// Score computes the recommendation score and its explanation for one book.
// interactions may contain records for other books; only those for book
// count. Only the personality match contributes to the reason text.
func Score(book models.Book, mood models.Mood, prefs *models.Preferences, interactions []models.Interaction) (float64, string) {
	score := BaseScore

	if book.Mood == mood {
		score += MoodMatchBonus
	}

	personalityMatch := prefs != nil && book.PersonalityMatch == prefs.PersonalityTrait
	if personalityMatch {
		score += PersonalityMatchBonus
	}

	if prefs != nil && book.Complexity == prefs.PreferredComplexity {
		score += ComplexityMatchBonus
	}

	if liked(book.ID, interactions) {
		score += LikedBonus
	}

	score = min(score, MaxScore)

	reason := fmt.Sprintf("This book matches your current %s mood", mood)
	if personalityMatch {
		reason += fmt.Sprintf(" and your %s personality", prefs.PersonalityTrait)
	}

	return score, reason
}

func liked(bookID int, interactions []models.Interaction) bool {
	for _, in := range interactions {
		if in.BookID == bookID && in.Type == models.InteractionLike {
			return true
		}
	}
	return false
}
