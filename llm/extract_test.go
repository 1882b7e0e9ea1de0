package llm

import (
	"encoding/json"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantKey string // if non-empty, check this key exists in parsed JSON
		wantErr bool
	}{
		{
			name:    "plain JSON",
			input:   `{"name": "Sunset Wash"}`,
			wantKey: "name",
		},
		{
			name:    "markdown code block",
			input:   "```json\n{\"name\": \"Sunset Wash\"}\n```",
			wantKey: "name",
		},
		{
			name:    "prose before and after object",
			input:   "Here is the scene you asked for:\n\n{\"fixtureValues\": []}\n\nLet me know if you want changes.",
			wantKey: "fixtureValues",
		},
		{
			name:    "code block with trailing commentary",
			input:   "```json\n{\"cues\": []}\n```\n\n**Design notes:** slow builds throughout act one.",
			wantKey: "cues",
		},
		{
			name:    "comments and trailing commas",
			input:   "{\n  \"channelValues\": [\n    255,  // full intensity\n    128,\n  ]\n}",
			wantKey: "channelValues",
		},
		{
			name:    "URL value not mangled by comment stripping",
			input:   `{"source": "http://example.com/script"}`,
			wantKey: "source",
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "no JSON at all",
			input:   "I could not produce a lighting design for that request.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractJSON(tt.input)

			if tt.wantErr {
				if result != "" {
					t.Errorf("expected empty result, got: %s", result)
				}
				return
			}

			if result == "" {
				t.Fatal("expected JSON result, got empty string")
			}

			var parsed map[string]any
			if err := json.Unmarshal([]byte(result), &parsed); err != nil {
				t.Fatalf("result is not valid JSON: %v\nresult: %s", err, result)
			}

			if tt.wantKey != "" {
				if _, ok := parsed[tt.wantKey]; !ok {
					t.Errorf("expected key %q in parsed JSON", tt.wantKey)
				}
			}
		})
	}
}

func TestStripLineComment(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no comment", input: `"name": "wash"`, want: `"name": "wash"`},
		{name: "trailing comment", input: `"fadeIn": 3, // seconds`, want: `"fadeIn": 3,`},
		{name: "url untouched", input: `"url": "https://a.example/b"`, want: `"url": "https://a.example/b"`},
		{name: "comment after url", input: `"url": "https://a.example/b" // src`, want: `"url": "https://a.example/b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripLineComment(tt.input); got != tt.want {
				t.Errorf("stripLineComment(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
