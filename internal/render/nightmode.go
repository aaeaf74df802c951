package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Night mode fallback. Cards that ship their own .night_mode rules are left
// alone. For the rest, colors found in style blocks, style attributes and
// legacy color attributes are inverted. This is a heuristic: it also inverts
// colors that were never meant as foreground/background (borders, gradients),
// which is accepted.

var (
	hexColorPattern  = regexp.MustCompile(`#([0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)
	namedDeclPattern = regexp.MustCompile(`(?i)((?:^|[;{\s"'])(?:background-color|background|border-color|color)\s*:\s*)([a-z]+)\b`)
	styleBlockRe     = regexp.MustCompile(`(?is)(<style[^>]*>)(.*?)(</style>)`)
	styleAttrRe      = regexp.MustCompile(`(?i)(\sstyle\s*=\s*)("[^"]*"|'[^']*')`)
	colorAttrRe      = regexp.MustCompile(`(?i)(\s(?:bg)?color\s*=\s*)("[^"]*"|'[^']*'|[^\s>]+)`)
)

var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"maroon":  "#800000",
	"purple":  "#800080",
	"fuchsia": "#ff00ff",
	"lime":    "#00ff00",
	"olive":   "#808000",
	"navy":    "#000080",
	"teal":    "#008080",
	"aqua":    "#00ffff",
	"orange":  "#ffa500",
}

// HasNightModeRule reports whether content declares its own night mode
// styling.
func HasNightModeRule(content string) bool {
	lower := strings.ToLower(content)
	return strings.Contains(lower, ".night_mode") || strings.Contains(lower, ".nightmode")
}

// InvertColors inverts the colors declared in content's styling.
func InvertColors(content string) string {
	content = styleBlockRe.ReplaceAllStringFunc(content, func(m string) string {
		g := styleBlockRe.FindStringSubmatch(m)
		return g[1] + invertCSS(g[2]) + g[3]
	})
	content = styleAttrRe.ReplaceAllStringFunc(content, func(m string) string {
		g := styleAttrRe.FindStringSubmatch(m)
		return g[1] + invertCSS(g[2])
	})
	content = colorAttrRe.ReplaceAllStringFunc(content, func(m string) string {
		g := colorAttrRe.FindStringSubmatch(m)
		return g[1] + invertAttrValue(g[2])
	})
	return content
}

func invertCSS(css string) string {
	css = hexColorPattern.ReplaceAllStringFunc(css, invertHex)
	return namedDeclPattern.ReplaceAllStringFunc(css, func(m string) string {
		g := namedDeclPattern.FindStringSubmatch(m)
		hex, ok := namedColors[strings.ToLower(g[2])]
		if !ok {
			return m
		}
		return g[1] + invertHex(hex)
	})
}

func invertAttrValue(v string) string {
	quote := ""
	inner := v
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') {
		quote = v[:1]
		inner = v[1 : len(v)-1]
	}
	if hex, ok := namedColors[strings.ToLower(strings.TrimSpace(inner))]; ok {
		inner = hex
	}
	inner = hexColorPattern.ReplaceAllStringFunc(inner, invertHex)
	return quote + inner + quote
}

// invertHex inverts a #rgb or #rrggbb color.
func invertHex(hex string) string {
	h := strings.TrimPrefix(hex, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil || len(h) != 6 {
		return hex
	}
	return fmt.Sprintf("#%06x", 0xFFFFFF^v)
}
