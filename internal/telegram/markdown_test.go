package telegram

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		max   int
		parts int
	}{
		{"short", "hello", 10, 1},
		{"exact", "hello", 5, 1},
		{"hard split", strings.Repeat("a", 25), 10, 3},
		{"newline split", strings.Repeat("a", 8) + "\n" + strings.Repeat("b", 8), 10, 2},
		{"multibyte", strings.Repeat("ж", 15), 10, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := SplitMessage(tt.text, tt.max)
			if len(parts) != tt.parts {
				t.Fatalf("got %d parts, want %d: %q", len(parts), tt.parts, parts)
			}
			if strings.Join(parts, "") != tt.text {
				t.Error("parts do not rejoin to the input")
			}
			for _, p := range parts {
				if utf8.RuneCountInString(p) > tt.max {
					t.Errorf("part %q longer than %d runes", p, tt.max)
				}
			}
		})
	}
}

func TestFixMarkdown(t *testing.T) {
	tests := map[string]string{
		"plain":         "plain",
		"```go\ncode":   "```go\ncode\n```",
		"open `inline":  "open `inline`",
		"`ok` and `ok`": "`ok` and `ok`",
	}
	for in, want := range tests {
		if got := FixMarkdown(in); got != want {
			t.Errorf("FixMarkdown(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSendLongMessageFallsBackToPlain(t *testing.T) {
	api := &fakeAPI{failMarkdown: true}
	if err := SendLongMessage(context.Background(), api, 1, "Hi *there", nil); err != nil {
		t.Fatalf("SendLongMessage failed: %v", err)
	}
	calls := api.sent()
	if len(calls) != 1 || calls[0].parse != "" {
		t.Errorf("calls = %+v", calls)
	}
}
