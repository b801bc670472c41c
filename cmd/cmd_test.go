package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eastboundjoe/aviation-study-guide/internal/content"
	"github.com/eastboundjoe/aviation-study-guide/internal/store"
)

func TestParseChapter(t *testing.T) {
	catalog, err := content.Default()
	require.NoError(t, err)

	b, ch, err := parseChapter(catalog, "pilots handbook of aeronautical knowledge", "2")
	require.NoError(t, err)
	assert.Equal(t, "Pilots Handbook of Aeronautical Knowledge", b.Title)
	assert.Equal(t, 2, ch.ID)
	assert.Equal(t, "Aeronautical Decision-Making", ch.Title)

	_, _, err = parseChapter(catalog, "FAA-Pilots Handbook of Aeronautical Knowledge.txt", "1")
	assert.NoError(t, err, "filenames match too")

	_, _, err = parseChapter(catalog, "Unknown Handbook", "1")
	assert.Error(t, err)
	_, _, err = parseChapter(catalog, "Pilots Handbook of Aeronautical Knowledge", "x")
	assert.Error(t, err)
	_, _, err = parseChapter(catalog, "Pilots Handbook of Aeronautical Knowledge", "999")
	assert.Error(t, err)
}

func TestRelativeDays(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		next time.Time
		want string
	}{
		{now.Add(-48 * time.Hour), "today"},
		{time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC), "today"},
		{time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), "tomorrow"},
		{time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC), "in 7 days"},
	}
	for _, tt := range tests {
		if got := relativeDays(tt.next, now); got != tt.want {
			t.Errorf("relativeDays(%v) = %q, want %q", tt.next, got, tt.want)
		}
	}
}

func TestAggregateUsage(t *testing.T) {
	ev := func(purpose, model string, in, out int, ms int64, ok bool) store.LLMRequestEvent {
		return store.LLMRequestEvent{LLMRequestEventData: store.LLMRequestEventData{
			Purpose: purpose, Model: model, InputTokens: in, OutputTokens: out, LatencyMs: ms, Success: ok,
		}}
	}
	events := []store.LLMRequestEvent{
		ev("recall-grading", "gemini-2.5-flash", 100, 20, 300, true),
		ev("recall-grading", "gpt-4o-mini", 80, 10, 100, false),
		ev("speech", "gemini-2.5-flash", 5, 0, 50, true),
	}

	byPurpose := aggregateUsage(events, func(e store.LLMRequestEvent) string { return e.Purpose })
	require.Len(t, byPurpose, 2)
	assert.Equal(t, usage{name: "recall-grading", calls: 2, failures: 1, inputTokens: 180, outputTokens: 30, latencyMs: 400}, byPurpose[0])
	assert.Equal(t, "speech", byPurpose[1].name)

	byModel := aggregateUsage(events, func(e store.LLMRequestEvent) string { return e.Model })
	require.Len(t, byModel, 2)
	assert.Equal(t, "gemini-2.5-flash", byModel[0].name)
	assert.Equal(t, 2, byModel[0].calls)
}

func TestTruncate(t *testing.T) {
	if got := truncate("gemini-2.5-flash", 6); got != "gemini" {
		t.Errorf("truncate = %q, want %q", got, "gemini")
	}
	if got := truncate("gpt", 6); got != "gpt" {
		t.Errorf("truncate = %q, want %q", got, "gpt")
	}
}

func TestFormatCost(t *testing.T) {
	tests := []struct {
		usd  float64
		want string
	}{
		{0.0042, "$0.0042"},
		{0.5, "$0.50"},
		{12.5, "$12.50"},
	}
	for _, tt := range tests {
		if got := formatCost(tt.usd); got != tt.want {
			t.Errorf("formatCost(%v) = %q, want %q", tt.usd, got, tt.want)
		}
	}
}
