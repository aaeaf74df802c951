// Package typeans implements the typed-answer sub-protocol: finding the
// expected answer referenced by a question, rendering the input affordance,
// and grading what the user typed against it.
package typeans

import (
	"fmt"
	"regexp"
	"strings"
)

var markerPattern = regexp.MustCompile(`\[\[type:(.+?)\]\]`)

const clozePrefix = "cloze:"

// Field is a resolved note field as the content store sees it.
type Field struct {
	Name  string
	Value string
	Font  string
	Size  int
}

// FieldLookup resolves a field of the current card's note by name.
type FieldLookup func(name string) (Field, bool)

// Spec describes what, if anything, the user is expected to type for a card.
// An empty Expected means no typed answer is expected. Expected and Warning
// are never both set.
type Spec struct {
	Field      string
	Expected   string
	ClozeIndex int
	FieldFont  string
	FieldSize  int
	Warning    string
}

// Expects reports whether the card has a typed answer to grade.
func (s Spec) Expects() bool {
	return s.Expected != ""
}

// HasMarker reports whether content contains a typed-answer marker.
func HasMarker(content string) bool {
	return markerPattern.MatchString(content)
}

// Extract scans a rendered question for a typed-answer marker and resolves
// the expected text. ord is the card's template index; cloze markers narrow
// the field to the deletions numbered ord+1.
func Extract(question string, ord int, lookup FieldLookup) Spec {
	m := markerPattern.FindStringSubmatch(question)
	if m == nil {
		return Spec{}
	}

	var spec Spec
	name := m[1]
	if strings.HasPrefix(name, clozePrefix) {
		spec.ClozeIndex = ord + 1
		name = strings.TrimPrefix(name, clozePrefix)
	}
	spec.Field = name

	var (
		f  Field
		ok bool
	)
	if lookup != nil {
		f, ok = lookup(name)
	}
	if !ok {
		spec.Warning = fmt.Sprintf("Type answer: unknown field %s", name)
		return spec
	}
	spec.FieldFont = f.Font
	spec.FieldSize = f.Size

	if spec.ClozeIndex > 0 {
		text, found := ClozeContent(f.Value, spec.ClozeIndex)
		if !found {
			spec.Warning = fmt.Sprintf("Empty card: field %s has no cloze deletion c%d", name, spec.ClozeIndex)
			return spec
		}
		spec.Expected = text
	} else {
		spec.Expected = f.Value
	}
	return spec
}

// ClozeContent collects the bodies of every cloze deletion with the given
// index. Identical bodies are kept once in first-seen order, hints are
// dropped, and the survivors are joined with ", ". found is false when the
// text has no deletion with that index.
func ClozeContent(text string, index int) (content string, found bool) {
	re := regexp.MustCompile(fmt.Sprintf(`\{\{c%d::(.+?)\}\}`, index))
	matches := re.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return "", false
	}

	seen := make(map[string]bool, len(matches))
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		body := m[1]
		if i := strings.Index(body, "::"); i >= 0 {
			body = body[:i]
		}
		if seen[body] {
			continue
		}
		seen[body] = true
		parts = append(parts, body)
	}
	return strings.Join(parts, ", "), true
}

// RenderQuestion replaces the typed-answer marker in a question. A warning
// takes the marker's place when the field could not be resolved. Otherwise
// the marker becomes the input prompt, masked when typing is disabled.
func RenderQuestion(buf string, spec Spec, enabled bool) string {
	if !HasMarker(buf) {
		return buf
	}
	if spec.Warning != "" {
		return replaceMarker(buf, `<span class="typeWarning">`+escape(spec.Warning)+`</span>`)
	}
	if !spec.Expects() {
		return replaceMarker(buf, "")
	}

	var b strings.Builder
	b.WriteString(`<span id=typeans class="typePrompt`)
	if !enabled {
		b.WriteString(` typeOff`)
	}
	b.WriteString(`"`)
	if enabled && (spec.FieldFont != "" || spec.FieldSize > 0) {
		b.WriteString(` style="`)
		if spec.FieldFont != "" {
			fmt.Fprintf(&b, "font-family: '%s';", spec.FieldFont)
		}
		if spec.FieldSize > 0 {
			if spec.FieldFont != "" {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "font-size: %dpx;", spec.FieldSize)
		}
		b.WriteString(`"`)
	}
	b.WriteString(`>........</span>`)
	return replaceMarker(buf, b.String())
}

// RenderAnswer replaces the typed-answer marker in an answer with the graded
// comparison of typed against the expected text. Cards that expect nothing
// simply lose the marker.
func RenderAnswer(buf string, spec Spec, typed string, enabled bool) string {
	if !HasMarker(buf) {
		return buf
	}
	if !spec.Expects() {
		return replaceMarker(buf, "")
	}

	var b strings.Builder
	b.WriteString("<div")
	if !enabled {
		b.WriteString(` class="typeOff"`)
	}
	b.WriteString("><code id=typeans>")
	b.WriteString(Grade(spec.Expected, typed, enabled))
	b.WriteString("</code></div>")
	return replaceMarker(buf, b.String())
}

func replaceMarker(buf, with string) string {
	return markerPattern.ReplaceAllLiteralString(buf, with)
}

// StripMarker removes any typed-answer markers from content.
func StripMarker(content string) string {
	return replaceMarker(content, "")
}
