package parser

import (
	"regexp"
	"strings"
)

// maxArticleURLs caps how many links are kept per newsletter.
const maxArticleURLs = 10

// urlPattern matches http/https links in either plain text or raw HTML.
var urlPattern = regexp.MustCompile(`https?://[^\s<>"{|}\\^` + "`" + `\[\]]+`)

// skipDomains marks tracking and utility links that are never article content.
var skipDomains = []string{
	"unsubscribe",
	"tracking",
	"pixel",
	"open.substack.com",
}

// ExtractURLs finds article links in email content, drops tracking and
// unsubscribe links, deduplicates, and returns at most maxArticleURLs in
// first-seen order.
func ExtractURLs(content string) []string {
	if content == "" {
		return []string{}
	}

	seen := make(map[string]bool)
	urls := []string{}

	for _, url := range urlPattern.FindAllString(content, -1) {
		if seen[url] {
			continue
		}
		seen[url] = true

		if containsAny(strings.ToLower(url), skipDomains) {
			continue
		}

		urls = append(urls, url)
		if len(urls) == maxArticleURLs {
			break
		}
	}

	return urls
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
