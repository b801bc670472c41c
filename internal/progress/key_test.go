package progress

import (
	"errors"
	"testing"
)

func TestKey_String(t *testing.T) {
	k := Key{Book: "Airplane Flying Handbook", Chapter: 3}
	if got := k.String(); got != "Airplane Flying Handbook-3" {
		t.Errorf("String() = %q", got)
	}
}

func TestParseKey_RoundTrip(t *testing.T) {
	keys := []Key{
		{Book: "Pilots Handbook of Aeronautical Knowledge", Chapter: 1},
		{Book: "Risk-Management Handbook", Chapter: 12},
		{Book: "A-B-C", Chapter: 0},
	}
	for _, k := range keys {
		got, err := ParseKey(k.String())
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseKey(%q) = %+v, want %+v", k.String(), got, k)
		}
	}
}

func TestParseKey_Invalid(t *testing.T) {
	for _, s := range []string{"", "NoChapter", "-3", "Book-", "Book-x", "Book-+2"} {
		if _, err := ParseKey(s); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("ParseKey(%q) error = %v, want ErrInvalidKey", s, err)
		}
	}
}

func TestKey_Valid(t *testing.T) {
	if (Key{Book: "", Chapter: 1}).Valid() {
		t.Error("empty book should be invalid")
	}
	if (Key{Book: "B", Chapter: -1}).Valid() {
		t.Error("negative chapter should be invalid")
	}
	if !(Key{Book: "B", Chapter: 0}).Valid() {
		t.Error("chapter 0 should be valid")
	}
}
