package sanitizer

import (
	"strings"
	"testing"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  client no show  ",
			want:  "client no show",
		},
		{
			name:  "multiple spaces between words",
			input: "client    no    show",
			want:  "client no show",
		},
		{
			name:  "tabs and newlines",
			input: "client\t\nno show",
			want:  "client no show",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "preserve special characters",
			input: " Café & Spa™ ",
			want:  "Café & Spa™",
		},
		{
			name:  "hebrew characters",
			input: " תספורת יוסי ",
			want:  "תספורת יוסי",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := TrimAndNormalize(got); again != got {
				t.Errorf("TrimAndNormalize is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeNotes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "running late", "running late"},
		{"control characters dropped", "late\x00\x07 again", "late again"},
		{"whitespace only becomes empty", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeNotes(tt.input); got != tt.want {
				t.Errorf("NormalizeNotes(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeActor(t *testing.T) {
	if got := NormalizeActor("  Front   Desk "); got != "Front Desk" {
		t.Errorf("NormalizeActor() = %q", got)
	}

	long := strings.Repeat("a", maxActorLength+20)
	if got := NormalizeActor(long); len([]rune(got)) != maxActorLength {
		t.Errorf("expected actor truncated to %d runes, got %d", maxActorLength, len([]rune(got)))
	}
}
