package recall

import (
	"bytes"
	"text/template"
)

const systemPrompt = `You are an expert FAA Flight Instructor and study partner. A student has just summarized a handbook chapter out loud and you are grading their recall.

Instructions:
- Identify which target key points (by ID) the student explained. Paraphrase counts; mentioning a word without the idea does not.
- Only use IDs from the list provided.
- Give one short sentence of feedback praising what they got right.
- Give a friendly Socratic clue for the most important missing point. Do NOT give the answer; ask a leading question.
- If every point was covered, the clue should invite them to go deeper on one of them.`

var userTemplate = template.Must(template.New("recall").Parse(`The student is studying the chapter "{{.ChapterTitle}}" from the book "{{.BookTitle}}".

Target key points:
{{range .KeyPoints}}- [ID: {{.ID}}] {{.Text}}
{{end}}
The student's verbal summary (transcribed):
"{{.Transcript}}"`))

func buildUserMessage(req Request) (string, error) {
	var buf bytes.Buffer
	if err := userTemplate.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
