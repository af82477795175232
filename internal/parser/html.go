package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	inlineSpaceRegex = regexp.MustCompile(`[^\S\n]+`)
	newlineRunRegex  = regexp.MustCompile(`\n{3,}`)
)

// HTMLToText converts newsletter HTML into readable plain text: scripts,
// styles and head content are dropped, block elements become line breaks, and
// whitespace is normalized. Unparseable input falls back to a crude tag strip
// so document building never fails on bad markup.
func HTMLToText(html string) string {
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return stripTags(html)
	}

	doc.Find("script, style, head, meta, link").Remove()

	doc.Find("p, div, br, h1, h2, h3, h4, h5, h6, li, tr").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("\n")
	})

	text := inlineSpaceRegex.ReplaceAllString(doc.Text(), " ")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	text = strings.Join(lines, "\n")
	text = newlineRunRegex.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

var tagRegex = regexp.MustCompile(`<[^>]*>`)

func stripTags(html string) string {
	text := tagRegex.ReplaceAllString(html, " ")
	return strings.TrimSpace(inlineSpaceRegex.ReplaceAllString(text, " "))
}
