package prediction

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ScoreStats describes the score distribution of a collection. Statistics
// cover in-range scores only; OutOfRange counts the rest.
type ScoreStats struct {
	Count      int     `json:"count"`
	OutOfRange int     `json:"out_of_range"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"stddev"`
	P50        float64 `json:"p50"`
	P90        float64 `json:"p90"`
}

// Summary aggregates a collection for inspection and reports.
type Summary struct {
	Total           int
	Contexts        int
	Frames          int
	MaxPerFrame     int
	FramesOverLimit int
	ByType          map[ObjectType]int
	Score           ScoreStats
}

// Summarize computes counts and score statistics. limit is the soft
// per-frame limit; 0 means DefaultMaxObjectsPerFrame.
func Summarize(objs *Objects, limit int) Summary {
	if limit == 0 {
		limit = DefaultMaxObjectsPerFrame
	}
	s := Summary{
		Total:  objs.Len(),
		ByType: make(map[ObjectType]int),
	}
	if s.Total == 0 {
		return s
	}

	contexts := make(map[string]struct{})
	for i := range objs.Objects {
		o := &objs.Objects[i]
		s.ByType[o.ObjectType]++
		contexts[o.ContextName] = struct{}{}
	}
	s.Contexts = len(contexts)

	frames := objs.ByFrame()
	s.Frames = len(frames)
	for _, idx := range frames {
		if len(idx) > s.MaxPerFrame {
			s.MaxPerFrame = len(idx)
		}
		if limit > 0 && len(idx) > limit {
			s.FramesOverLimit++
		}
	}

	s.Score = scoreStats(objs)
	return s
}

// Scores returns the in-range scores in ascending order.
func Scores(objs *Objects) []float64 {
	scores := make([]float64, 0, objs.Len())
	for i := 0; i < objs.Len(); i++ {
		v := float64(objs.Objects[i].Score)
		if v >= 0 && v <= 1 {
			scores = append(scores, v)
		}
	}
	sort.Float64s(scores)
	return scores
}

func scoreStats(objs *Objects) ScoreStats {
	scores := Scores(objs)
	st := ScoreStats{
		Count:      len(scores),
		OutOfRange: objs.Len() - len(scores),
	}
	if len(scores) == 0 {
		return st
	}
	st.Min = floats.Min(scores)
	st.Max = floats.Max(scores)
	if len(scores) > 1 {
		st.Mean, st.StdDev = stat.MeanStdDev(scores, nil)
	} else {
		st.Mean = scores[0]
	}
	st.P50 = stat.Quantile(0.5, stat.Empirical, scores, nil)
	st.P90 = stat.Quantile(0.9, stat.Empirical, scores, nil)
	return st
}

// ScoreHistogram buckets in-range scores into bins equal-width bins over
// [0, 1]. A score of exactly 1 lands in the last bin.
func ScoreHistogram(objs *Objects, bins int) (dividers, counts []float64) {
	if bins <= 0 {
		bins = 10
	}
	dividers = make([]float64, bins+1)
	floats.Span(dividers, 0, 1)
	scores := Scores(objs)
	if len(scores) == 0 {
		return dividers, make([]float64, bins)
	}
	upper := make([]float64, len(dividers))
	copy(upper, dividers)
	upper[bins] = math.Nextafter(1, 2)
	counts = stat.Histogram(nil, upper, scores, nil)
	return dividers, counts
}
