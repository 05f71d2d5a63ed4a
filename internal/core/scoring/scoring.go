// Package scoring normalizes backend scores onto a common [0,1] range and
// fuses the semantic and keyword signals into a single ranking.
//
// Normalization:
//   - cosine distance -> similarity: 1 - distance/2, maps [0,2] to [1,0]
//   - BM25 max-scaling: divide by the batch maximum so the top result is 1.0
//
// Fusion: score = alpha*semantic + (1-alpha)*keyword.
package scoring

import (
	"math"
	"sort"
)

// minScoreFloor is the epsilon used to avoid division by zero when every
// keyword score in a batch is zero.
const minScoreFloor = 0.001

// Config controls the weighted fusion of the two signals.
type Config struct {
	// Alpha weights the semantic signal: 0.0 is pure keyword, 1.0 is pure
	// semantic.
	Alpha float64
	// MinScore drops fused candidates at or below this score. Results that
	// only one signal surfaced with negligible relevance fall under it.
	MinScore float64
}

// NewConfig returns a Config with the given alpha and the default MinScore.
func NewConfig(alpha float64) Config {
	return Config{Alpha: alpha, MinScore: minScoreFloor}
}

// Scored pairs a document id with a score.
type Scored struct {
	ID    string
	Score float64
}

// ToSimilarity converts a cosine distance in [0,2] to a similarity in [0,1],
// where distance 0 maps to 1.0 and distance 2 maps to 0.0. Unlike keyword
// normalization this is a pure affine map with no batch dependency.
func ToSimilarity(distance float64) float64 {
	return 1.0 - distance/2.0
}

// NormalizeMaxScaled scales a batch of keyword scores by the batch maximum,
// so the top result gets exactly 1.0 and relative spacing is preserved. The
// maximum is floored at a small epsilon to handle all-zero batches, and every
// output is clamped to 1.0. An empty batch yields an empty map.
func NormalizeMaxScaled(scores []Scored) map[string]float64 {
	normalized := make(map[string]float64, len(scores))
	if len(scores) == 0 {
		return normalized
	}

	maxScore := math.Inf(-1)
	for _, s := range scores {
		maxScore = math.Max(maxScore, s.Score)
	}
	maxScore = math.Max(maxScore, minScoreFloor)

	for _, s := range scores {
		normalized[s.ID] = math.Min(s.Score/maxScore, 1.0)
	}
	return normalized
}

// Fuse combines the semantic and keyword score maps into a single ranking.
// Every id present in either map is considered; an id absent from one signal
// contributes 0 for that signal, so single-signal noise is suppressed by the
// MinScore floor rather than excluded outright. The result is ordered by
// fused score descending with a total order: NaN sorts last, equal scores
// break ties by ascending id.
func Fuse(semantic, keyword map[string]float64, cfg Config) []Scored {
	fused := make([]Scored, 0, len(semantic)+len(keyword))
	seen := make(map[string]bool, len(semantic)+len(keyword))

	addID := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		score := cfg.Alpha*semantic[id] + (1.0-cfg.Alpha)*keyword[id]
		if !math.IsNaN(score) && score <= cfg.MinScore {
			return
		}
		fused = append(fused, Scored{ID: id, Score: score})
	}
	for id := range semantic {
		addID(id)
	}
	for id := range keyword {
		addID(id)
	}

	sort.Slice(fused, func(i, j int) bool {
		return scoredLess(fused[i], fused[j])
	})
	return fused
}

// scoredLess orders by score descending, NaN last, ties by ascending id.
func scoredLess(a, b Scored) bool {
	aNaN, bNaN := math.IsNaN(a.Score), math.IsNaN(b.Score)
	switch {
	case aNaN && bNaN:
		return a.ID < b.ID
	case aNaN:
		return false
	case bNaN:
		return true
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.ID < b.ID
}
