package musicbrainz

import "fermata/internal/match"

// Confidence blends local name similarity with the server's relevance
// score on a 0-100 scale. The weights favor the local comparison for
// artists, where search queries are a single field, and shift weight to an
// artist-agreement bonus for release groups and recordings.
const (
	acceptThreshold = 70.0

	artistSimilarityWeight = 0.6
	artistScoreWeight      = 0.4

	childSimilarityWeight = 0.5
	childScoreWeight      = 0.3
	artistAgreementBonus  = 20.0
)

func artistConfidence(query, candidate string, serverScore int) float64 {
	return artistSimilarityWeight*match.Similarity(query, candidate)*100 +
		artistScoreWeight*float64(serverScore)
}

func childConfidence(title, candidate string, serverScore int, artistAgrees bool) float64 {
	confidence := childSimilarityWeight*match.Similarity(title, candidate)*100 +
		childScoreWeight*float64(serverScore)
	if artistAgrees {
		confidence += artistAgreementBonus
	}
	return confidence
}

// acceptable reports whether a candidate clears the confidence bar. An
// exact normalized name equality short-circuits the blend.
func acceptable(query, candidate string, confidence float64) bool {
	if match.Normalize(query) == match.Normalize(candidate) {
		return true
	}
	return confidence >= acceptThreshold
}
