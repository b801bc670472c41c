package llm

var gradeSchema = &Schema{
	Name: "test-grade",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"covered": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"feedback": map[string]any{"type": "string"},
		},
		"required":             []any{"covered", "feedback"},
		"additionalProperties": false,
	},
}

const gradeJSON = `{"covered":["a","b"],"feedback":"good"}`
