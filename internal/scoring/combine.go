package scoring

// Combiner blends technical and sentiment scores into one decision
// score. Pure, stateless, deterministic.
type Combiner struct {
	TechWeight      float64
	SentimentWeight float64
}

// DefaultCombiner returns the standard 0.6/0.4 blend.
func DefaultCombiner() Combiner {
	return Combiner{TechWeight: 0.6, SentimentWeight: 0.4}
}

// Combine returns the weighted blend, clamped to [0,100] and rounded
// to two decimals.
func (c Combiner) Combine(techScore, sentimentScore float64) float64 {
	combined := c.TechWeight*techScore + c.SentimentWeight*sentimentScore
	return round2(clamp(combined, 0, 100))
}
