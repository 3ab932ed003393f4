// Package recommend implements the mood-driven book recommendation engine.
//
// A suggestion runs in three stages:
//
//   - Selection: CandidateQuery builds a Predicate from the mood and the
//     user's preferences, and a CatalogProvider returns matching books,
//     capped at DefaultCandidateLimit and ordered by id.
//   - Scoring: Score adds fixed bonuses for mood, personality and complexity
//     matches and for a previous like, capped at MaxScore, and explains the
//     mood and personality matches in a reason string.
//   - Ranking: Ranker records the mood observation, upserts one
//     Recommendation per (user, book, mood) with is_read reset, and returns
//     the results by score descending with book id as the tie-break.
//
// The package has no storage of its own; collaborators are injected through
// the CatalogProvider, UserContextProvider and RecommendationStore interfaces.
package recommend
