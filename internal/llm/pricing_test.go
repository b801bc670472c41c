package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	c := LookupCost("gemini-2.5-flash")
	if c == nil {
		t.Fatal("gemini-2.5-flash should be priced")
	}
	if got := c.Cost(1_000_000, 100_000); math.Abs(got-0.55) > 1e-9 {
		t.Errorf("Cost = %v, want 0.55", got)
	}

	if LookupCost("openai/gpt-4o-mini") == nil {
		t.Error("gateway model IDs should match on the model part")
	}
	if LookupCost("mock") != nil {
		t.Error("unknown models should have no price")
	}
}

func TestAliasesArePriced(t *testing.T) {
	for _, aliases := range []map[string]string{geminiAliases, anthropicAliases} {
		for alias, id := range aliases {
			if LookupCost(id) == nil {
				t.Errorf("alias %s resolves to unpriced model %s", alias, id)
			}
		}
	}
	if LookupCost(DefaultConfig().OpenAI.Model) == nil {
		t.Error("default OpenAI model should be priced")
	}
}
