// Package markup holds the small HTML helpers shared by answer grading,
// speech and rendering.
package markup

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	imgSrcPattern = regexp.MustCompile(`(?i)<img[^>]*?src=["']?([^"'>\s]+)["']?[^>]*>`)
	brPattern     = regexp.MustCompile(`(?i)<br\s*/?>`)
	breakPattern  = regexp.MustCompile(`(?i)<(br|hr)[^>]*>`)
)

// Text returns the text content of s with tags removed and entities decoded.
// The bodies of script and style elements are dropped.
func Text(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			if rawTextTag(z) {
				skip++
			}
		case html.EndTagToken:
			if rawTextTag(z) && skip > 0 {
				skip--
			}
		}
	}
}

func rawTextTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}

// StripHTML removes all markup from s and trims the result.
func StripHTML(s string) string {
	return strings.TrimSpace(Text(s))
}

// StripHTMLMedia is StripHTML, but image tags are replaced by their source
// file name first so that image-only answers still have text.
func StripHTMLMedia(s string) string {
	return StripHTML(imgSrcPattern.ReplaceAllString(s, " $1 "))
}

// BreaksToNewlines turns <br> tags into newline characters.
func BreaksToNewlines(s string) string {
	return brPattern.ReplaceAllString(s, "\n")
}

// VisibleText approximates the text a reader sees: line and rule breaks
// count as spaces and non-breaking spaces are plain spaces.
func VisibleText(s string) string {
	s = breakPattern.ReplaceAllString(s, " ")
	return strings.ReplaceAll(Text(s), "\u00a0", " ")
}

// EscapeBackslash protects backslashes from being read as escapes by the
// display surface.
func EscapeBackslash(s string) string {
	return strings.ReplaceAll(s, `\`, "&#x5c;")
}
