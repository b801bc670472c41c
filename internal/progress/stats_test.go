package progress

import (
	"testing"
	"time"
)

func sampleProgress() *LearnerProgress {
	p := New()
	yesterday := testNow.AddDate(0, 0, -1)
	p.Records[Key{Book: "B", Chapter: 2}] = MasteryRecord{Completed: true, Level: 1, NextReview: testNow}
	p.Records[Key{Book: "A", Chapter: 7}] = MasteryRecord{Completed: true, Level: 1, NextReview: yesterday}
	p.Records[Key{Book: "A", Chapter: 3}] = MasteryRecord{Completed: true, Level: 1, NextReview: testNow.Add(2 * time.Hour)}
	p.Records[Key{Book: "A", Chapter: 4}] = MasteryRecord{Completed: true, Level: 3, NextReview: testNow.AddDate(0, 0, 3)}
	p.Records[Key{Book: "A", Chapter: 5}] = MasteryRecord{Completed: true, Level: 5, NextReview: testNow.AddDate(0, 0, 60)}
	p.Records[Key{Book: "C", Chapter: 1}] = MasteryRecord{Completed: true, Level: 4, NextReview: yesterday}
	return p
}

func TestCounts(t *testing.T) {
	p := sampleProgress()
	if got := p.CountCompleted(); got != 6 {
		t.Errorf("CountCompleted() = %d, want 6", got)
	}
	if got := p.CountDueToday(testNow); got != 4 {
		t.Errorf("CountDueToday() = %d, want 4", got)
	}
	if got := p.CountMastered(); got != 1 {
		t.Errorf("CountMastered() = %d, want 1", got)
	}
}

func TestDueAtLevel_Sorted(t *testing.T) {
	p := sampleProgress()
	got := p.DueAtLevel(1, testNow)
	want := []Key{{Book: "A", Chapter: 3}, {Book: "A", Chapter: 7}, {Book: "B", Chapter: 2}}
	if len(got) != len(want) {
		t.Fatalf("DueAtLevel(1) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DueAtLevel(1)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if got := p.DueAtLevel(3, testNow); len(got) != 0 {
		t.Errorf("DueAtLevel(3) = %v, want none (not yet due)", got)
	}
}

func TestDueKeys(t *testing.T) {
	p := sampleProgress()
	got := p.DueKeys(testNow)
	want := []Key{{Book: "A", Chapter: 3}, {Book: "A", Chapter: 7}, {Book: "B", Chapter: 2}, {Book: "C", Chapter: 1}}
	if len(got) != len(want) {
		t.Fatalf("DueKeys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DueKeys()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if len(got) != p.CountDueToday(testNow) {
		t.Errorf("len(DueKeys) = %d, CountDueToday = %d", len(got), p.CountDueToday(testNow))
	}
}

func TestSchedule_FourColumns(t *testing.T) {
	cols := sampleProgress().Schedule(testNow)
	if len(cols) != 4 {
		t.Fatalf("len(Schedule) = %d, want 4", len(cols))
	}
	wantDue := []int{3, 0, 0, 1}
	for i, c := range cols {
		if c.Level != i+1 {
			t.Errorf("column %d level = %d, want %d", i, c.Level, i+1)
		}
		if len(c.Due) != wantDue[i] {
			t.Errorf("column %q due = %d, want %d", c.Title, len(c.Due), wantDue[i])
		}
	}
}

func TestBookCompletion(t *testing.T) {
	p := sampleProgress()
	if got := p.BookCompletion("A", []int{3, 4, 5, 6}); got != 0.75 {
		t.Errorf("BookCompletion(A) = %v, want 0.75", got)
	}
	if got := p.BookCompletion("A", nil); got != 0 {
		t.Errorf("BookCompletion(empty) = %v, want 0", got)
	}
}

func TestSummarize(t *testing.T) {
	p := sampleProgress()
	p.History = []StudySession{
		{Date: testNow, Book: "A", Chapter: 3, Success: true},
		{Date: testNow.Add(-time.Hour), Book: "A", Chapter: 4, Success: true},
		{Date: testNow.AddDate(0, 0, -2), Book: "B", Chapter: 2, Success: false},
	}
	s := p.Summarize(testNow)
	if s.Sessions != 3 || s.DaysActive != 2 || s.Mastered != 1 {
		t.Errorf("Summarize() = %+v", s)
	}
}
