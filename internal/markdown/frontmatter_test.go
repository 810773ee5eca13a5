package markdown

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseDocument(t *testing.T) {
	doc := "---\ntitle: My Unit\nstatus: pending\n---\n\n# Body\n\ntext\n"

	fm, body, ok := ParseDocument(doc)
	if !ok {
		t.Fatal("expected a frontmatter block")
	}
	if got, _ := fm.Get("title"); got != "My Unit" {
		t.Errorf("title = %q", got)
	}
	if got, _ := fm.Get("status"); got != "pending" {
		t.Errorf("status = %q", got)
	}
	if body != "\n# Body\n\ntext\n" {
		t.Errorf("body = %q", body)
	}
}

func TestParseDocumentNoHeader(t *testing.T) {
	for _, doc := range []string{"# Just markdown\n", "", "--- not a header\n"} {
		if _, _, ok := ParseDocument(doc); ok {
			t.Errorf("ParseDocument(%q) should not find a header", doc)
		}
	}
}

func TestSetReplacesInPlace(t *testing.T) {
	doc := "---\ntitle: X\nstatus: pending\nestimated_duration: 2h\n---\nbody"
	fm, body, ok := ParseDocument(doc)
	if !ok {
		t.Fatal("no header")
	}

	fm.Set("status", "completed")
	fm.Set("completed_date", "2026-01-02T15:04:05Z")
	out := fm.Marshal() + "\n" + body

	if strings.Count(out, "status:") != 1 {
		t.Errorf("status duplicated:\n%s", out)
	}
	if !strings.Contains(out, "status: completed") {
		t.Errorf("status not rewritten:\n%s", out)
	}
	// Untouched fields keep their original bytes, order preserved
	lines := strings.Split(out, "\n")
	if lines[1] != "title: X" || lines[3] != "estimated_duration: 2h" {
		t.Errorf("field order or formatting changed:\n%s", out)
	}
	if !strings.HasSuffix(out, "\nbody") {
		t.Errorf("body not preserved:\n%s", out)
	}
}

func TestSetTwiceNoDuplicate(t *testing.T) {
	doc := "---\nstatus: pending\n---\nbody"
	for i := 0; i < 2; i++ {
		fm, body, ok := ParseDocument(doc)
		if !ok {
			t.Fatal("no header")
		}
		fm.Set("status", "completed")
		fm.Set("completed_date", "2026-01-02T00:00:00Z")
		doc = fm.Marshal() + "\n" + body
	}
	if n := strings.Count(doc, "completed_date:"); n != 1 {
		t.Fatalf("completed_date appears %d times, want 1:\n%s", n, doc)
	}
}

func TestQuoteScalar(t *testing.T) {
	tests := []struct {
		in     string
		quoted bool
	}{
		{"plain text", false},
		{"Advanced Go", false},
		{"Rust: The Basics", true},
		{"true", true},
		{"no", true},
		{"null", true},
		{"42", true},
		{"3.14", true},
		{" leading space", true},
		{"trailing space ", true},
		{"it's quoted", true},
		{"#1 resource", true},
		{"- dash start", true},
		{"", true},
	}

	for _, tt := range tests {
		out := QuoteScalar(tt.in)
		if quoted := strings.HasPrefix(out, "'"); quoted != tt.quoted {
			t.Errorf("QuoteScalar(%q) = %q, quoted = %v, want %v", tt.in, out, quoted, tt.quoted)
		}
	}
}

// Every header this package writes must stay parseable as YAML.
func TestHeaderStaysYAMLParseable(t *testing.T) {
	values := []string{
		"Rust: The Basics",
		"true",
		"42",
		"it's got 'quotes'",
		"  padded  ",
		"#comment-looking",
	}

	fm := &Frontmatter{}
	for i, v := range values {
		fm.Set("key"+string(rune('a'+i)), v)
	}
	block := fm.Marshal()
	inner := strings.TrimSuffix(strings.TrimPrefix(block, Delimiter+"\n"), Delimiter)

	var parsed map[string]string
	if err := yaml.Unmarshal([]byte(inner), &parsed); err != nil {
		t.Fatalf("header is not valid YAML: %v\n%s", err, block)
	}
	for i, v := range values {
		key := "key" + string(rune('a'+i))
		if parsed[key] != v {
			t.Errorf("%s: yaml round-trip = %q, want %q", key, parsed[key], v)
		}
	}
}
