package deck

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/abhisek/reviewz/internal/markup"
)

var (
	tagPattern   = regexp.MustCompile(`\{\{([#^/]?)([^{}]+?)\}\}`)
	clozePattern = regexp.MustCompile(`(?s)\{\{c(\d+)::(.*?)(?:::(.*?))?\}\}`)
)

// renderContext is what a template is rendered against.
type renderContext struct {
	fields    map[string]string
	frontSide string
	tags      []string
	deck      string
	card      string
	ord       int
	answer    bool
}

// renderTemplate expands a card template. Supported tags are plain fields,
// FrontSide, Tags, Deck, Card, the text, cloze and type filters, and
// {{#Field}}/{{^Field}} sections closed by {{/Field}}.
func renderTemplate(tmpl string, ctx *renderContext) (string, error) {
	var b strings.Builder
	for len(tmpl) > 0 {
		loc := tagPattern.FindStringSubmatchIndex(tmpl)
		if loc == nil {
			b.WriteString(tmpl)
			break
		}
		b.WriteString(tmpl[:loc[0]])
		sigil := tmpl[loc[2]:loc[3]]
		name := strings.TrimSpace(tmpl[loc[4]:loc[5]])
		rest := tmpl[loc[1]:]

		switch sigil {
		case "#", "^":
			body, after, err := splitSection(rest, name)
			if err != nil {
				return "", err
			}
			present := strings.TrimSpace(ctx.fields[name]) != ""
			if (sigil == "#") == present {
				out, err := renderTemplate(body, ctx)
				if err != nil {
					return "", err
				}
				b.WriteString(out)
			}
			tmpl = after
			continue
		case "/":
			return "", fmt.Errorf("template: unexpected {{/%s}}", name)
		}

		b.WriteString(ctx.replace(name))
		tmpl = rest
	}
	return b.String(), nil
}

// splitSection finds the {{/name}} closing a section that has just been
// opened, allowing nested sections of the same name.
func splitSection(s, name string) (body, after string, err error) {
	depth := 1
	offset := 0
	for {
		loc := tagPattern.FindStringSubmatchIndex(s[offset:])
		if loc == nil {
			return "", "", fmt.Errorf("template: section {{#%s}} is not closed", name)
		}
		sigil := s[offset+loc[2] : offset+loc[3]]
		tag := strings.TrimSpace(s[offset+loc[4] : offset+loc[5]])
		if tag == name {
			switch sigil {
			case "#", "^":
				depth++
			case "/":
				depth--
				if depth == 0 {
					return s[:offset+loc[0]], s[offset+loc[1]:], nil
				}
			}
		}
		offset += loc[1]
	}
}

func (ctx *renderContext) replace(name string) string {
	switch name {
	case "FrontSide":
		return ctx.frontSide
	case "Tags":
		return strings.Join(ctx.tags, " ")
	case "Deck":
		return ctx.deck
	case "Card":
		return ctx.card
	}

	if strings.HasPrefix(name, "type:") {
		return "[[" + name + "]]"
	}

	filter, field := "", name
	if i := strings.LastIndex(name, ":"); i >= 0 {
		filter, field = name[:i], name[i+1:]
	}
	value, ok := ctx.fields[field]
	if !ok {
		return fmt.Sprintf("{unknown field %s}", field)
	}
	switch filter {
	case "text":
		return markup.StripHTML(value)
	case "cloze":
		return renderCloze(value, ctx.ord+1, ctx.answer)
	}
	return value
}

// renderCloze hides the deletions numbered index on the question side and
// highlights them on the answer side. Other deletions show their text.
func renderCloze(text string, index int, answer bool) string {
	return clozePattern.ReplaceAllStringFunc(text, func(m string) string {
		g := clozePattern.FindStringSubmatch(m)
		idx, _ := strconv.Atoi(g[1])
		body, hint := g[2], g[3]
		if idx != index {
			return body
		}
		if answer {
			return "<span class=cloze>" + body + "</span>"
		}
		if hint != "" {
			return "<span class=cloze>[" + hint + "]</span>"
		}
		return "<span class=cloze>[...]</span>"
	})
}
