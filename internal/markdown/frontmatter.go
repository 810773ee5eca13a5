// Package markdown renders project documents and keeps their metadata
// headers reconciled with the progress ledger.
package markdown

import (
	"strconv"
	"strings"
)

// Delimiter bounds the metadata header block at the top of a document
const Delimiter = "---"

// field is one line of a frontmatter block. Lines that parse as "key: value"
// keep their key; anything else (comments, continuation lines) is carried
// verbatim with an empty key. raw holds the original line so untouched
// fields survive a patch byte-for-byte.
type field struct {
	key   string
	value string
	raw   string
	dirty bool
}

// Frontmatter is an order-preserving model of a delimiter-bounded metadata
// header. Mutating by key replaces the existing field in place when present
// and appends otherwise, which guarantees a patch applied twice never
// duplicates a field.
type Frontmatter struct {
	fields []field
}

// ParseDocument splits a document into its frontmatter block and body.
// The body (everything after the closing delimiter, including its leading
// newline) is returned verbatim. ok is false when the document does not
// start with a frontmatter block.
func ParseDocument(content string) (fm *Frontmatter, body string, ok bool) {
	rest, found := strings.CutPrefix(content, Delimiter+"\n")
	if !found {
		return nil, content, false
	}

	fm = &Frontmatter{}
	for {
		line, tail, more := strings.Cut(rest, "\n")
		if line == Delimiter {
			return fm, tail, true
		}
		if !more {
			// Unterminated block
			return nil, content, false
		}
		fm.fields = append(fm.fields, parseLine(line))
		rest = tail
	}
}

func parseLine(line string) field {
	key, value, found := strings.Cut(line, ":")
	if !found || key == "" || strings.ContainsAny(key, " \t") {
		return field{raw: line}
	}
	return field{key: key, value: unquoteScalar(strings.TrimSpace(value)), raw: line}
}

// Get returns the value of the named field
func (f *Frontmatter) Get(key string) (string, bool) {
	for i := range f.fields {
		if f.fields[i].key == key {
			return f.fields[i].value, true
		}
	}
	return "", false
}

// Set replaces the named field in place, or appends it if absent
func (f *Frontmatter) Set(key, value string) {
	for i := range f.fields {
		if f.fields[i].key == key {
			f.fields[i].value = value
			f.fields[i].dirty = true
			return
		}
	}
	f.fields = append(f.fields, field{key: key, value: value, dirty: true})
}

// Marshal re-serializes the block including both delimiters. Fields that
// were never mutated are emitted exactly as they were read.
func (f *Frontmatter) Marshal() string {
	var b strings.Builder
	b.WriteString(Delimiter)
	b.WriteByte('\n')
	for _, fl := range f.fields {
		if fl.dirty || fl.raw == "" {
			b.WriteString(fl.key)
			b.WriteString(": ")
			b.WriteString(QuoteScalar(fl.value))
		} else {
			b.WriteString(fl.raw)
		}
		b.WriteByte('\n')
	}
	b.WriteString(Delimiter)
	return b.String()
}

// reservedScalars are literals YAML would parse as something other than a
// string
var reservedScalars = map[string]bool{
	"true": true, "false": true, "null": true, "yes": true, "no": true,
	"on": true, "off": true, "~": true, "": true,
}

// QuoteScalar returns the value quoted per YAML single-quote convention when
// writing it bare would break the header's machine-parseability: structural
// characters, reserved literals, number-shaped strings, or surrounding
// whitespace all force quoting.
func QuoteScalar(value string) string {
	if needsQuote(value) {
		return "'" + strings.ReplaceAll(value, "'", "''") + "'"
	}
	return value
}

func needsQuote(value string) bool {
	if reservedScalars[strings.ToLower(value)] {
		return true
	}
	if strings.TrimSpace(value) != value {
		return true
	}
	if strings.ContainsAny(value, ":#'\"\n") {
		return true
	}
	if strings.HasPrefix(value, "-") || strings.HasPrefix(value, "[") ||
		strings.HasPrefix(value, "{") || strings.HasPrefix(value, "&") ||
		strings.HasPrefix(value, "*") || strings.HasPrefix(value, "|") ||
		strings.HasPrefix(value, ">") {
		return true
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return true
	}
	return false
}

func unquoteScalar(value string) string {
	if len(value) >= 2 {
		if value[0] == '\'' && value[len(value)-1] == '\'' {
			return strings.ReplaceAll(value[1:len(value)-1], "''", "'")
		}
		if value[0] == '"' && value[len(value)-1] == '"' {
			if s, err := strconv.Unquote(value); err == nil {
				return s
			}
		}
	}
	return value
}
