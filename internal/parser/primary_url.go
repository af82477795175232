package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// primarySkipDomains extends skipDomains with campaign-archive and asset hosts
// that frequently show up first in newsletter bodies but never point at the
// article itself.
var primarySkipDomains = append([]string{
	"mailchi.mp",
	"constantcontact.com",
	"campaign-archive.com",
	"us-east-1.amazonaws.com",
}, skipDomains...)

// socialDomains are excluded from the fallback stage of the cascade.
var socialDomains = []string{
	"twitter.com",
	"facebook.com",
	"linkedin.com",
	"instagram.com",
}

// platformPattern maps a sender domain to the URL shape that platform uses
// for hosted posts. Order matters: first matching sender domain wins.
type platformPattern struct {
	domain  string
	pattern *regexp.Regexp
}

var senderPlatformPatterns = []platformPattern{
	{"substack.com", regexp.MustCompile(`https://[^/]+\.substack\.com/p/[^?\s<>"]+`)},
	{"medium.com", regexp.MustCompile(`https://[^/]*medium\.com/[^?\s<>"]+`)},
	// Substack sometimes references its CDN domain in the sender address.
	{"substackcdn.com", regexp.MustCompile(`https://[^/]+\.substack\.com/p/[^?\s<>"]+`)},
	{"beehiiv.com", regexp.MustCompile(`https://[^/]+\.beehiiv\.com/p/[^?\s<>"]+`)},
	{"convertkit.com", regexp.MustCompile(`https://[^/]+\.ck\.page/[^?\s<>"]+`)},
	{"ghost.org", regexp.MustCompile(`https://[^/]+/[^?\s<>"]+`)},
	{"mailerlite.com", regexp.MustCompile(`https://[^/]+\.mailerlite\.com/[^?\s<>"]+`)},
}

// genericPlatformPatterns cover the common newsletter hosts regardless of
// which address the email was sent from.
var genericPlatformPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https://[^/]+\.substack\.com/p/[^?\s<>"]+`),
	regexp.MustCompile(`https://[^/]*medium\.com/@[^/]+/[^?\s<>"]+`),
	regexp.MustCompile(`https://[^/]*medium\.com/[^/]+/[^?\s<>"]+`),
	regexp.MustCompile(`https://[^/]+\.beehiiv\.com/p/[^?\s<>"]+`),
	regexp.MustCompile(`https://[^/]+\.ghost\.io/[^?\s<>"]+`),
	regexp.MustCompile(`https://[^/]+\.ck\.page/[^?\s<>"]+`),
}

// browserAnchorText matches "view in browser" style anchor labels.
var browserAnchorText = regexp.MustCompile(`(?is)view.*?browser|read.*?online|view.*?web|open.*?browser`)

// ExtractPrimaryURL determines the canonical web-hosted version of a
// newsletter. The cascade runs in order, first match wins:
//
//  1. HTML <link rel="canonical"> tag.
//  2. Platform URL pattern selected by the sender's domain.
//  3. Generic newsletter platform URL patterns.
//  4. "View in browser" / "read online" anchors in the HTML.
//  5. First extracted URL that is neither a tracking nor a social link.
//
// Returns "" when no stage yields a candidate.
func ExtractPrimaryURL(contentHTML, contentPlain, senderEmail string) string {
	content := contentHTML
	if content == "" {
		content = contentPlain
	}
	if content == "" {
		return ""
	}

	if contentHTML != "" {
		if canonical := canonicalLink(contentHTML); canonical != "" {
			return canonical
		}
	}

	sender := strings.ToLower(senderEmail)
	for _, pp := range senderPlatformPatterns {
		if !strings.Contains(sender, pp.domain) {
			continue
		}
		if match := pp.pattern.FindString(content); match != "" {
			return match
		}
	}

	for _, pattern := range genericPlatformPatterns {
		if match := pattern.FindString(content); match != "" {
			return match
		}
	}

	if contentHTML != "" {
		if url := browserLink(contentHTML); url != "" {
			return url
		}
	}

	for _, url := range urlPattern.FindAllString(content, -1) {
		lower := strings.ToLower(url)
		if containsAny(lower, primarySkipDomains) || containsAny(lower, socialDomains) {
			continue
		}
		return url
	}

	return ""
}

// canonicalLink pulls the href of a <link rel="canonical"> tag, if present.
func canonicalLink(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	href, _ := doc.Find(`link[rel="canonical"]`).First().Attr("href")
	return strings.TrimSpace(href)
}

// browserLink finds an anchor whose text reads like "view in browser" and
// returns its href, skipping tracking links.
func browserLink(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !browserAnchorText.MatchString(s.Text()) {
			return true
		}
		href, _ := s.Attr("href")
		if href == "" || containsAny(strings.ToLower(href), primarySkipDomains) {
			return true
		}
		found = href
		return false
	})

	return found
}
