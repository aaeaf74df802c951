// Package render composes displayable card markup and presents it on a
// double-buffered pair of surfaces.
package render

import (
	"fmt"
	"strings"

	"github.com/abhisek/reviewz/internal/markup"
)

// DefaultTemplate is the page every card is rendered into.
const DefaultTemplate = `<!doctype html>
<html>
<head><meta charset="utf-8"><style>::style::</style></head>
<body class="::class::">
<div id="qa">::content::</div>
</body>
</html>`

// Font size bounds for the cold-start heuristic.
const (
	MinFontSize = 3
	MaxFontSize = 14
)

// Style carries the style overrides injected into every card.
type Style struct {
	// CardZoom and ImageZoom are percentages; 100 means unchanged.
	CardZoom  int
	ImageZoom int
	// ExtraCSS holds rules contributed by extensions.
	ExtraCSS []string
}

// Flags describe the display state a card is rendered for.
type Flags struct {
	Answer           bool
	Ord              int
	NightMode        bool
	CenterVertically bool
}

// Renderer fills the page template.
type Renderer struct {
	template string
	fontSize int
}

// NewRenderer creates a renderer for template, or DefaultTemplate when
// template is empty.
func NewRenderer(template string) *Renderer {
	if template == "" {
		template = DefaultTemplate
	}
	return &Renderer{template: template}
}

// Render returns the final markup for content.
//
// The base font size is computed from the first content rendered and kept
// for the rest of the session.
func (r *Renderer) Render(content string, style Style, flags Flags) string {
	if r.fontSize == 0 {
		r.fontSize = DynamicFontSize(content)
	}

	if flags.NightMode && !HasNightModeRule(content) {
		content = InvertColors(content)
	}
	content = EscapeSMP(content)

	return strings.NewReplacer(
		"::content::", content,
		"::style::", r.styleBlock(style),
		"::class::", ClassString(flags),
	).Replace(r.template)
}

// FontSize returns the base font size, or 0 before the first render.
func (r *Renderer) FontSize() int {
	return r.fontSize
}

func (r *Renderer) styleBlock(style Style) string {
	var b strings.Builder
	if r.fontSize > 0 {
		fmt.Fprintf(&b, "html { font-size: %dpx; }\n", r.fontSize)
	}
	if style.CardZoom > 0 && style.CardZoom != 100 {
		fmt.Fprintf(&b, "body { zoom: %.2f }\n", float64(style.CardZoom)/100)
	}
	if style.ImageZoom > 0 && style.ImageZoom != 100 {
		fmt.Fprintf(&b, "img { zoom: %.2f }\n", float64(style.ImageZoom)/100)
	}
	for _, css := range style.ExtraCSS {
		b.WriteString(css)
		b.WriteString("\n")
	}
	return b.String()
}

// ClassString returns the body classes for a card.
func ClassString(flags Flags) string {
	side := "question"
	if flags.Answer {
		side = "answer"
	}
	s := fmt.Sprintf("card card%d %s", flags.Ord+1, side)
	if flags.CenterVertically {
		s += " vertically_centered"
	}
	if flags.NightMode {
		s += " night_mode"
	}
	return s
}

// DynamicFontSize picks a base font size that shrinks as the visible text
// grows.
func DynamicFontSize(content string) int {
	n := len([]rune(strings.TrimSpace(markup.VisibleText(content))))
	size := MaxFontSize - n/5
	if size < MinFontSize {
		return MinFontSize
	}
	return size
}

// EscapeSMP replaces characters outside the Basic Multilingual Plane with
// numeric character references.
func EscapeSMP(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r > 0xFFFF {
			fmt.Fprintf(&b, "&#x%x;", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
