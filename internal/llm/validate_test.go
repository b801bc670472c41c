package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}\n", `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"```json {\"a\":1}```", `{"a":1}`},
		{"```JSON\n[1,2]\n```\n", `[1,2]`},
	}
	for _, tt := range tests {
		if got := StripFences(tt.in); got != tt.want {
			t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", gradeJSON, false},
		{"empty list", `{"covered":[],"feedback":""}`, false},
		{"missing field", `{"covered":[]}`, true},
		{"wrong type", `{"covered":"a","feedback":"x"}`, true},
		{"extra field", `{"covered":[],"feedback":"x","clue":1}`, true},
		{"not json", `covered: a`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(gradeSchema, json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var invalid *ErrInvalidResponse
				if !errors.As(err, &invalid) {
					t.Fatalf("err = %T, want *ErrInvalidResponse", err)
				}
				if string(invalid.Content) != tt.raw {
					t.Errorf("Content = %s, want raw output", invalid.Content)
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`not json`)); err != nil {
		t.Fatalf("nil schema: %v", err)
	}
}

func TestCompileSchema_Cached(t *testing.T) {
	a, err := compileSchema(gradeSchema)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	b, err := compileSchema(gradeSchema)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if a != b {
		t.Error("second compile did not hit the cache")
	}
}

func TestContentFromText(t *testing.T) {
	got, err := contentFromText(gradeSchema, "```json\n"+gradeJSON+"\n```")
	if err != nil {
		t.Fatalf("contentFromText: %v", err)
	}
	if string(got) != gradeJSON {
		t.Errorf("content = %s, want %s", got, gradeJSON)
	}

	plain, err := contentFromText(nil, "```hello```")
	if err != nil {
		t.Fatalf("contentFromText(nil): %v", err)
	}
	if string(plain) != "```hello```" {
		t.Errorf("free text was altered: %s", plain)
	}
}
