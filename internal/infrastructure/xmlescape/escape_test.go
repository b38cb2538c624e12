package xmlescape

import (
	"strings"
	"testing"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "ampersand", input: "Müller & Söhne", expected: "Müller &amp; Söhne"},
		{name: "angle brackets", input: "<script>", expected: "&lt;script&gt;"},
		{name: "double quote", input: `Firma "Nord"`, expected: "Firma &quot;Nord&quot;"},
		{name: "single quote", input: "O'Brien", expected: "O&apos;Brien"},
		{name: "all five metacharacters", input: `<&>"'`, expected: "&lt;&amp;&gt;&quot;&apos;"},
		{name: "plain text untouched", input: "Beratung März 2024", expected: "Beratung März 2024"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Escape(tt.input); got != tt.expected {
				t.Errorf("Escape(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEscape_NoRawMetacharactersRemain(t *testing.T) {
	out := Escape(`a<b>c&d"e'f`)
	for _, raw := range []string{"<", ">", `"`, "'"} {
		if strings.Contains(out, raw) {
			t.Errorf("raw %q survived escaping: %q", raw, out)
		}
	}
	// Every remaining ampersand must start an entity.
	for i := 0; i < len(out); i++ {
		if out[i] == '&' {
			rest := out[i:]
			if !strings.HasPrefix(rest, "&amp;") && !strings.HasPrefix(rest, "&lt;") &&
				!strings.HasPrefix(rest, "&gt;") && !strings.HasPrefix(rest, "&quot;") &&
				!strings.HasPrefix(rest, "&apos;") {
				t.Errorf("bare ampersand at %d in %q", i, out)
			}
		}
	}
}
