package persist

import (
	"strings"
	"testing"
	"time"

	"github.com/eastboundjoe/aviation-study-guide/internal/progress"
)

func TestEncodeDecode_Document(t *testing.T) {
	now := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)
	p := progress.New()
	key := progress.Key{Book: "Risk-Management Handbook", Chapter: 2}
	p.Records[key] = progress.MasteryRecord{Completed: true, Level: 3, NextReview: now.AddDate(0, 0, 7)}
	p.QuizScores[key] = 90
	p.History = []progress.StudySession{{Date: now, Book: key.Book, Chapter: 2, Success: true}}

	b, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for _, want := range []string{
		`"completedChapters":{"Risk-Management Handbook-2":true}`,
		`"reviewDates":{"Risk-Management Handbook-2":"2025-06-17T14:00:00.000Z"}`,
		`"reviewLevels":{"Risk-Management Handbook-2":3}`,
		`"quizScores":{"Risk-Management Handbook-2":90}`,
		`"studyHistory":[{"date":"2025-06-10T14:00:00.000Z","bookTitle":"Risk-Management Handbook","chapterId":2,"success":true}]`,
	} {
		if !strings.Contains(string(b), want) {
			t.Errorf("encoded document missing %s\n got: %s", want, b)
		}
	}

	got, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	rec := got.Record(key)
	if !rec.Completed || rec.Level != 3 || !rec.NextReview.Equal(now.AddDate(0, 0, 7)) {
		t.Errorf("decoded record = %+v", rec)
	}
	if got.QuizScores[key] != 90 {
		t.Errorf("QuizScores = %v", got.QuizScores)
	}
	if len(got.History) != 1 || !got.History[0].Date.Equal(now) {
		t.Errorf("History = %+v", got.History)
	}
}

func TestDecode_EmptyEncodesEmptyCollections(t *testing.T) {
	b, err := Encode(progress.New())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"completedChapters":{},"reviewDates":{},"reviewLevels":{},"quizScores":{},"studyHistory":[]}`
	if string(b) != want {
		t.Errorf("Encode(empty) = %s, want %s", b, want)
	}
}

func TestDecode_Lenient(t *testing.T) {
	raw := `{
		"completedChapters": {"A-1": true, "garbage": true},
		"reviewDates": {"A-1": "not a date"},
		"reviewLevels": {"A-1": 9, "B-2": -4}
	}`
	p, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	a := p.Record(progress.Key{Book: "A", Chapter: 1})
	if !a.Completed || a.Level != 5 || !a.NextReview.IsZero() {
		t.Errorf("A-1 = %+v, want completed, level 5, zero date", a)
	}
	if b := p.Record(progress.Key{Book: "B", Chapter: 2}); b.Level != 0 || b.Completed {
		t.Errorf("B-2 = %+v, want level 0, not completed", b)
	}
	if len(p.Records) != 2 {
		t.Errorf("len(Records) = %d, want 2", len(p.Records))
	}
}

func TestDecode_StructurallyInvalid(t *testing.T) {
	for _, raw := range []string{"{", "[]", `{"reviewLevels": "x"}`, "not json"} {
		if _, err := Decode([]byte(raw)); err == nil {
			t.Errorf("Decode(%q) succeeded, want error", raw)
		}
	}
}
