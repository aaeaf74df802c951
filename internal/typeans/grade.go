package typeans

import (
	"html"
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/cubicdaiya/gonp"
	"golang.org/x/text/unicode/norm"

	"github.com/abhisek/reviewz/internal/markup"
)

var (
	spanPattern  = regexp.MustCompile(`(?i)</?span[^>]*>`)
	soundPattern = regexp.MustCompile(`\[sound:[^\[\]]*\]`)
)

// Span classes used to annotate a graded answer.
const (
	ClassGood   = "typeGood"
	ClassBad    = "typeBad"
	ClassMissed = "typeMissed"
)

const (
	checkmark = "✔"
	downArrow = "<br>&darr;<br>"
)

// CleanCorrect normalizes an expected answer taken from a note field. Markup,
// media references and spans are removed, line breaks become newlines, and
// the result is NFC normalized.
func CleanCorrect(s string) string {
	s = strings.TrimSpace(s)
	s = markup.BreaksToNewlines(s)
	s = spanPattern.ReplaceAllString(s, "")
	s = markup.StripHTMLMedia(s)
	s = soundPattern.ReplaceAllString(s, "")
	return norm.NFC.String(strings.TrimSpace(s))
}

// CleanTyped normalizes what the user typed. Case is preserved.
func CleanTyped(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Grade compares the typed text against the expected answer and returns the
// annotated markup. It is a pure function of its arguments.
//
// An exact, case-sensitive match renders the answer as good followed by a
// checkmark. An empty input renders the answer as missed when the field was
// shown, or bare when it was hidden. Anything else renders the expected line
// and the typed line annotated with a character diff, separated by an arrow.
func Grade(correct, typed string, fieldShown bool) string {
	correct = CleanCorrect(correct)
	typed = CleanTyped(typed)

	if typed == "" {
		if fieldShown {
			return wrap(ClassMissed, correct)
		}
		return escape(correct)
	}
	if correct == typed {
		return wrap(ClassGood, correct) + checkmark
	}

	expectedLine, typedLine := diffLines(correct, typed)
	return expectedLine + downArrow + typedLine
}

// Similarity scores how close typed is to correct, from 0 to 1. It feeds the
// review log only and never decides a match.
func Similarity(correct, typed string) float64 {
	c, t := CleanCorrect(correct), CleanTyped(typed)
	if c == "" && t == "" {
		return 1
	}
	if c == "" || t == "" {
		return 0
	}
	return matchr.JaroWinkler(c, t, false)
}

type run struct {
	class string
	text  strings.Builder
}

// line accumulates consecutive runes of the same class into one span.
type line struct {
	runs []*run
}

func (l *line) add(class string, r rune) {
	if n := len(l.runs); n > 0 && l.runs[n-1].class == class {
		l.runs[n-1].text.WriteRune(r)
		return
	}
	nr := &run{class: class}
	nr.text.WriteRune(r)
	l.runs = append(l.runs, nr)
}

func (l *line) String() string {
	var b strings.Builder
	for _, r := range l.runs {
		b.WriteString(wrap(r.class, r.text.String()))
	}
	return b.String()
}

func diffLines(correct, typed string) (string, string) {
	d := gonp.New([]rune(correct), []rune(typed))
	d.Compose()

	var expected, got line
	for _, e := range d.Ses() {
		switch e.GetType() {
		case gonp.SesCommon:
			expected.add(ClassGood, e.GetElem())
			got.add(ClassGood, e.GetElem())
		case gonp.SesDelete:
			expected.add(ClassMissed, e.GetElem())
		case gonp.SesAdd:
			got.add(ClassBad, e.GetElem())
		}
	}
	return expected.String(), got.String()
}

func wrap(class, s string) string {
	return "<span class=" + class + ">" + escape(s) + "</span>"
}

func escape(s string) string {
	return markup.EscapeBackslash(html.EscapeString(s))
}
