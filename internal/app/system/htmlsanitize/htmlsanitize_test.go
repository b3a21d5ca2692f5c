package htmlsanitize_test

import (
	"html/template"
	"strings"
	"testing"

	"github.com/dalemusser/ecahub/internal/app/system/htmlsanitize"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "Hello, World!", "Hello, World!"},
		{"safe html", "<p><strong>Bold</strong> and <em>italic</em></p>", "<p><strong>Bold</strong> and <em>italic</em></p>"},
		{"script removed", "<p>Hello</p><script>alert('xss')</script>", "<p>Hello</p>"},
		{"lists", "<ul><li>Item 1</li><li>Item 2</li></ul>", "<ul><li>Item 1</li><li>Item 2</li></ul>"},
		{"formatting", "<u>underline</u> <s>strike</s> <mark>mark</mark>", "<u>underline</u> <s>strike</s> <mark>mark</mark>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitize_RemovesDangerousAttributes(t *testing.T) {
	for _, input := range []string{
		`<button onclick="alert('xss')">Click</button>`,
		`<a href="javascript:alert('xss')">Click</a>`,
		`<p>Content</p><iframe src="https://evil.com"></iframe>`,
	} {
		got := htmlsanitize.Sanitize(input)
		if strings.Contains(got, "onclick") || strings.Contains(got, "javascript:") || strings.Contains(got, "iframe") {
			t.Errorf("Sanitize(%q) kept dangerous content: %q", input, got)
		}
	}
}

func TestSanitizeToHTML(t *testing.T) {
	got := htmlsanitize.SanitizeToHTML("<p>Hello</p><script>x</script>")
	if got != template.HTML("<p>Hello</p>") {
		t.Errorf("got %q", got)
	}
}

func TestMarkdown_RendersAndSanitizes(t *testing.T) {
	got := htmlsanitize.Markdown("**Reminder**: forms due\n\n<script>alert(1)</script>")
	if !strings.Contains(got, "<strong>Reminder</strong>") {
		t.Errorf("expected bold markup, got %q", got)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("expected script to be escaped or removed, got %q", got)
	}
}

func TestMarkdown_Empty(t *testing.T) {
	if got := htmlsanitize.Markdown("   "); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestIsPlainText(t *testing.T) {
	if !htmlsanitize.IsPlainText("Hello") {
		t.Error("expected plain text")
	}
	if htmlsanitize.IsPlainText("<p>Hello</p>") {
		t.Error("expected markup to be detected")
	}
}
