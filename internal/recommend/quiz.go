package recommend

import (
	"fmt"

	"book-discovery-recommendation-service/internal/models"
)

// DominantTrait returns the trait chosen most often across quiz answers. On a
// tie the trait that was answered first wins.
func DominantTrait(answers []models.Personality) (models.Personality, error) {
	if len(answers) == 0 {
		return "", &ValidationError{Field: "answers", Err: ErrNoAnswers}
	}

	counts := make(map[models.Personality]int, len(models.Personalities))
	var order []models.Personality
	for _, a := range answers {
		if !a.Valid() {
			return "", &ValidationError{Field: "answers", Err: fmt.Errorf("unknown personality trait %q", a)}
		}
		if counts[a] == 0 {
			order = append(order, a)
		}
		counts[a]++
	}

	best := order[0]
	for _, trait := range order[1:] {
		if counts[trait] > counts[best] {
			best = trait
		}
	}
	return best, nil
}
