package recall

import "github.com/eastboundjoe/aviation-study-guide/internal/llm"

// GradingSchema is the structured output of a recall grading call.
var GradingSchema = &llm.Schema{
	Name:        "recall-grading",
	Description: "Which key points a learner explained, with feedback and a Socratic clue",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"coveredPointIds": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "IDs of the key points the learner explained",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "One short sentence praising what the learner got right",
			},
			"clue": map[string]any{
				"type":        "string",
				"description": "A leading question about the most important missing point",
			},
		},
		"required":             []any{"coveredPointIds", "feedback", "clue"},
		"additionalProperties": false,
	},
}
