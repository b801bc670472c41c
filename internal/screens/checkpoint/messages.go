package checkpoint

import "github.com/eastboundjoe/aviation-study-guide/internal/recall"

// gradedMsg carries the grader's verdict for one attempt.
type gradedMsg struct {
	Result recall.Result
}
