package vision

import (
	"math"

	"github.com/facegate/backend/models"
)

// Score computes the bounded similarity between two signatures: cosine
// similarity clamped to [0,1]. Signature intensities are non-negative, so a
// pair of real signatures already lands in that range; the clamp guards
// against floating point drift. Identical signatures score exactly 1.0 and
// mismatched shapes score 0.
func Score(a, b models.Signature) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	if a.Equal(b) {
		return 1.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// IdentityScore scores a probe signature against an identity. An identity
// enrolled from multiple shots matches if the probe resembles any of its
// signatures, so the identity-level score is the maximum, not the average.
func IdentityScore(probe models.Signature, identity *models.Identity) float64 {
	best := 0.0
	for _, sig := range identity.Signatures {
		if s := Score(probe, sig); s > best {
			best = s
		}
	}
	return best
}

// Match pairs an identity name with its identity-level score
type Match struct {
	Name  string
	Score float64
}

// RankIdentities scores the probe against every identity and returns the
// best and runner-up matches. Zero-value matches are returned for missing
// ranks (fewer than one or two identities enrolled).
func RankIdentities(probe models.Signature, identities []models.Identity) (best, second Match) {
	for i := range identities {
		m := Match{Name: identities[i].Name, Score: IdentityScore(probe, &identities[i])}
		if m.Score > best.Score {
			second = best
			best = m
		} else if m.Score > second.Score {
			second = m
		}
	}
	return best, second
}
