// Package richtext renders report stories written in markdown.
package richtext

import (
	"strings"

	"github.com/gomarkdown/markdown"
	md_html "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const extensions = parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock

// ToHTML renders a markdown story. Raw HTML in the source is dropped and
// links are limited to safe schemes.
func ToHTML(story string) string {
	if strings.TrimSpace(story) == "" {
		return ""
	}
	md := markdown.NormalizeNewlines([]byte(story))

	opts := md_html.RendererOptions{
		Flags: md_html.CommonFlags | md_html.SkipHTML | md_html.Safelink | md_html.HrefTargetBlank | md_html.NofollowLinks,
	}
	doc := parser.NewWithExtensions(extensions).Parse(md)
	return string(markdown.Render(doc, md_html.NewRenderer(opts)))
}

// Excerpt returns the first paragraph of story as plain text, cut to at most
// max runes on a word boundary.
func Excerpt(story string, max int) string {
	para := strings.TrimSpace(story)
	if i := strings.Index(para, "\n\n"); i >= 0 {
		para = para[:i]
	}
	para = strings.Join(strings.Fields(stripMarkup(para)), " ")

	runes := []rune(para)
	if max <= 0 || len(runes) <= max {
		return para
	}
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, ",.;: ") + "…"
}

var markupReplacer = strings.NewReplacer("**", "", "__", "", "*", "", "_", "", "`", "", "#", "")

func stripMarkup(s string) string {
	return markupReplacer.Replace(s)
}
