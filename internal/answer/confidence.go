package answer

import "github.com/ziadkadry99/deepdoc/internal/vectordb"

// Confidence estimates how well-grounded an answer is: the mean similarity of
// the chunks it was built from, plus a small boost for having more supporting
// chunks (0.1 per chunk, at most 0.3), capped at 1.0.
func Confidence(results []vectordb.SearchResult) float64 {
	if len(results) == 0 {
		return 0
	}

	var sum float64
	for _, res := range results {
		sum += float64(res.Similarity)
	}
	mean := sum / float64(len(results))

	boost := 0.1 * float64(len(results))
	if boost > 0.3 {
		boost = 0.3
	}

	conf := mean + boost
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}
