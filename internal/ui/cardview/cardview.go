// Package cardview draws card markup in a terminal. A Surface parses the
// page the renderer produces into styled lines once, on Load, and lays them
// out for whatever size the screen gives it.
package cardview

import (
	"errors"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"golang.org/x/net/html"

	"github.com/abhisek/reviewz/internal/render"
	"github.com/abhisek/reviewz/internal/ui/theme"
)

// ErrReleased is returned when content is loaded into a released surface.
var ErrReleased = errors.New("surface released")

// Surface is a render.Surface backed by terminal text.
type Surface struct {
	markup   string
	visible  bool
	released bool
	page     page
}

var _ render.Surface = (*Surface)(nil)

// New creates a hidden, empty surface.
func New() *Surface {
	return &Surface{}
}

// Factory allocates surfaces for a render.Buffer.
func Factory() render.Surface {
	return New()
}

func (s *Surface) Load(markup string) error {
	if s.released {
		return ErrReleased
	}
	s.markup = markup
	s.page = parse(markup)
	return nil
}

func (s *Surface) SetVisible(visible bool) { s.visible = visible }
func (s *Surface) Visible() bool           { return s.visible }
func (s *Surface) Markup() string          { return s.markup }

func (s *Surface) Release() {
	s.released = true
	s.visible = false
	s.markup = ""
	s.page = page{}
}

// Released reports whether the surface has been released.
func (s *Surface) Released() bool {
	return s.released
}

// Text returns the laid-out card without styling, one line per block.
func (s *Surface) Text() string {
	lines := make([]string, 0, len(s.page.lines))
	for _, l := range s.page.lines {
		lines = append(lines, l.plain())
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// View renders the card into a width x height box. Hidden surfaces render
// as blank space.
func (s *Surface) View(width, height int) string {
	box := lipgloss.NewStyle().Width(width).Height(height)
	if !s.visible || width <= 0 || height <= 0 {
		return box.Render("")
	}

	fg, bg := theme.Ink, theme.Paper
	if s.page.night {
		fg, bg = theme.Text, theme.BgDark
	}
	base := lipgloss.NewStyle().Foreground(fg).Background(bg)

	inner := max(width-4, 1)
	lines := trimBlank(s.page.lines)
	rendered := make([]string, 0, len(lines))
	for _, l := range lines {
		rendered = append(rendered, l.render(base, inner))
	}

	vertical := lipgloss.Top
	if s.page.centered {
		vertical = lipgloss.Center
	}
	return base.
		Padding(0, 2).
		Width(width).
		Height(height).
		AlignVertical(vertical).
		Render(strings.Join(rendered, "\n"))
}

type attrs struct {
	bold, italic, underline, strike bool
	fg                              color.Color
	hidden                          bool
}

type span struct {
	text string
	attrs
}

type line struct {
	spans []span
	rule  bool
}

func (l line) plain() string {
	if l.rule {
		return "---"
	}
	var b strings.Builder
	for _, sp := range l.spans {
		if !sp.hidden {
			b.WriteString(sp.text)
		}
	}
	return strings.TrimSpace(b.String())
}

func (l line) render(base lipgloss.Style, width int) string {
	if l.rule {
		return base.Foreground(theme.Border).Render(strings.Repeat("─", width))
	}
	var b strings.Builder
	for _, sp := range l.spans {
		if sp.hidden {
			continue
		}
		st := base.
			Bold(sp.bold).
			Italic(sp.italic).
			Underline(sp.underline).
			Strikethrough(sp.strike)
		if sp.fg != nil {
			st = st.Foreground(sp.fg)
		}
		b.WriteString(st.Render(sp.text))
	}
	return base.Width(width).Align(lipgloss.Center).Render(strings.TrimSpace(b.String()))
}

type page struct {
	lines    []line
	night    bool
	centered bool
}

type frame struct {
	tag string
	attrs
}

// parse tokenizes page markup. Head, style and script contents are dropped;
// block elements start new lines and known card classes pick a theme color.
func parse(markup string) page {
	var p page
	var cur line
	stack := []frame{{}}
	skip := 0

	top := func() attrs { return stack[len(stack)-1].attrs }
	breakLine := func() {
		if len(cur.spans) > 0 || cur.rule {
			p.lines = append(p.lines, cur)
		}
		cur = line{}
	}
	blankLine := func() {
		breakLine()
		p.lines = append(p.lines, line{})
	}

	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			breakLine()
			return p

		case html.TextToken:
			if skip > 0 {
				continue
			}
			text := collapseSpace(string(z.Text()))
			if text == "" {
				continue
			}
			if len(cur.spans) == 0 {
				text = strings.TrimLeft(text, " ")
				if text == "" {
					continue
				}
			}
			cur.spans = append(cur.spans, span{text: text, attrs: top()})

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			attr := readAttrs(z, hasAttr)

			switch tag {
			case "head", "style", "script", "title":
				if tt == html.StartTagToken {
					skip++
				}
				continue
			case "body":
				p.night = hasClass(attr["class"], "night_mode") || hasClass(attr["class"], "nightMode")
				p.centered = hasClass(attr["class"], "vertically_centered")
				continue
			case "br":
				breakLine()
				continue
			case "hr":
				breakLine()
				p.lines = append(p.lines, line{rule: true})
				continue
			case "img":
				a := top()
				a.fg = theme.Secondary
				a.italic = true
				cur.spans = append(cur.spans, span{text: "[image: " + attr["src"] + "]", attrs: a})
				continue
			case "meta", "link", "input", "wbr":
				continue
			}
			if isBlock(tag) {
				breakLine()
			}
			if tag == "p" {
				blankLine()
			}
			if tt == html.SelfClosingTagToken {
				continue
			}
			stack = append(stack, frame{tag: tag, attrs: styleFor(tag, attr, top())})

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch tag {
			case "head", "style", "script", "title":
				if skip > 0 {
					skip--
				}
				continue
			}
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].tag == tag {
					stack = stack[:i]
					break
				}
			}
			if isBlock(tag) {
				breakLine()
			}
		}
	}
}

func readAttrs(z *html.Tokenizer, more bool) map[string]string {
	attr := make(map[string]string)
	for more {
		var k, v []byte
		k, v, more = z.TagAttr()
		attr[string(k)] = string(v)
	}
	return attr
}

func styleFor(tag string, attr map[string]string, parent attrs) attrs {
	a := parent
	switch tag {
	case "b", "strong", "h1", "h2", "h3":
		a.bold = true
	case "i", "em":
		a.italic = true
	case "u":
		a.underline = true
	case "s", "del", "strike":
		a.strike = true
	}

	class := attr["class"]
	switch {
	case hasClass(class, "typeOff"):
		a.hidden = true
	case hasClass(class, "typeGood"):
		a.fg = theme.TypeGood.GetForeground()
	case hasClass(class, "typeBad"):
		a.fg = theme.TypeBad.GetForeground()
		a.strike = true
	case hasClass(class, "typeMissed"):
		a.fg = theme.TypeMissed.GetForeground()
		a.underline = true
	case hasClass(class, "typePrompt"):
		a.fg = theme.TypePrompt.GetForeground()
		a.italic = true
	case hasClass(class, "cloze"):
		a.fg = theme.Cloze.GetForeground()
		a.bold = true
	case hasClass(class, "cardError"), hasClass(class, "typeWarning"):
		a.fg = theme.CardError.GetForeground()
		a.bold = true
	}
	return a
}

func isBlock(tag string) bool {
	switch tag {
	case "div", "p", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6",
		"center", "blockquote", "pre", "ul", "ol", "table":
		return true
	}
	return false
}

func hasClass(class, name string) bool {
	for _, c := range strings.Fields(class) {
		if c == name {
			return true
		}
	}
	return false
}

func collapseSpace(s string) string {
	if s == "" {
		return ""
	}
	lead := isSpace(s[0])
	trail := isSpace(s[len(s)-1])
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return " "
	}
	if lead {
		s = " " + s
	}
	if trail {
		s += " "
	}
	return s
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r'
}

func trimBlank(lines []line) []line {
	blank := func(l line) bool { return !l.rule && l.plain() == "" }
	for len(lines) > 0 && blank(lines[0]) {
		lines = lines[1:]
	}
	for len(lines) > 0 && blank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	return lines
}
