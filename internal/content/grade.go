package content

import (
	"slices"
	"strings"
)

// A quiz passes at 70% correct or better. Kept as a ratio so the
// comparison stays in integers.
const (
	passNumerator   = 7
	passDenominator = 10
)

// PassThreshold is the pass mark as a fraction.
const PassThreshold = float64(passNumerator) / passDenominator

// Unanswered marks a question the learner skipped.
const Unanswered = -1

// Score grades answers against the quiz. answers[i] is the chosen option
// index for question i; missing or out-of-range answers count as wrong.
func (q Quiz) Score(answers []int) QuizResult {
	r := QuizResult{Total: len(q.Questions)}
	for i, qu := range q.Questions {
		if i < len(answers) && answers[i] == qu.CorrectAnswer {
			r.Correct++
		}
	}
	r.Passed = r.Total > 0 && r.Correct*passDenominator >= r.Total*passNumerator
	return r
}

// MatchKeywords returns the ids of key points with at least one keyword in
// transcript, compared case-insensitively. Order follows points.
func MatchKeywords(points []KeyPoint, transcript string) []string {
	text := strings.ToLower(transcript)
	var covered []string
	for _, kp := range points {
		if slices.ContainsFunc(kp.Keywords, func(w string) bool {
			w = strings.ToLower(strings.TrimSpace(w))
			return w != "" && strings.Contains(text, w)
		}) {
			covered = append(covered, kp.ID)
		}
	}
	return covered
}

// CheckpointPassed reports whether every key point was covered.
func CheckpointPassed(points []KeyPoint, covered []string) bool {
	for _, kp := range points {
		if !slices.Contains(covered, kp.ID) {
			return false
		}
	}
	return true
}
