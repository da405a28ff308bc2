package markdown

import (
	"errors"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     []string
		banned   []string
	}{
		{
			name:  "basic formatting",
			input: "# Title\n\nSome **bold** text",
			want:  []string{"<h1>", "<strong>bold</strong>"},
		},
		{
			name:   "script stripped",
			input:  "hello<script>alert(1)</script>",
			want:   []string{"hello"},
			banned: []string{"<script>", "alert(1)"},
		},
		{
			name:   "event handlers stripped",
			input:  `[link](https://example.com)<img src=x onerror="alert(1)">`,
			want:   []string{`<a href="https://example.com"`},
			banned: []string{"onerror"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.input)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output %q missing %q", got, w)
				}
			}
			for _, b := range tt.banned {
				if strings.Contains(got, b) {
					t.Errorf("output %q contains banned %q", got, b)
				}
			}
		})
	}
}

func TestRenderEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		if _, err := Render(input); !errors.Is(err, ErrEmptyContent) {
			t.Errorf("Render(%q) err = %v, want ErrEmptyContent", input, err)
		}
	}
}

func TestSanitizePlain(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain title", "plain title"},
		{"<b>bold</b> title", "bold title"},
		{"  padded  ", "padded"},
		{`<script>alert(1)</script>safe`, "safe"},
	}
	for _, tt := range tests {
		if got := SanitizePlain(tt.input); got != tt.want {
			t.Errorf("SanitizePlain(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
