package recall

import (
	"slices"

	"github.com/eastboundjoe/aviation-study-guide/internal/content"
)

// GradeKeywords grades transcript without a model: a key point is covered
// when any of its keywords appears.
func GradeKeywords(points []content.KeyPoint, transcript string) Result {
	covered := content.MatchKeywords(points, transcript)
	if covered == nil {
		covered = []string{}
	}
	res := Result{CoveredPointIDs: covered, Source: SourceKeywords}
	switch {
	case len(covered) == len(points):
		res.Feedback = "You covered every key point."
	case len(covered) > 0:
		res.Feedback = "Good start. Some key points are still missing."
		res.Clue = "Think about what else this chapter emphasizes."
	default:
		res.Feedback = "I didn't hear any of the key points yet."
		res.Clue = "Start with the main idea of the chapter."
	}
	return res
}

// MergeCovered unions id sets from several attempts, keeping only ids of
// points, in point order.
func MergeCovered(points []content.KeyPoint, sets ...[]string) []string {
	out := make([]string, 0, len(points))
	for _, kp := range points {
		if slices.ContainsFunc(sets, func(s []string) bool { return slices.Contains(s, kp.ID) }) {
			out = append(out, kp.ID)
		}
	}
	return out
}
