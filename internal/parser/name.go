package parser

import "strings"

// knownNewsletter maps a sender domain to a display name. Checked in order so
// resolution stays deterministic.
type knownNewsletter struct {
	domain string
	name   string
}

var knownNewsletters = []knownNewsletter{
	{"substack.com", "Substack Newsletter"},
	{"medium.com", "Medium"},
	{"techcrunch.com", "TechCrunch"},
	{"hackernewsletter.com", "Hacker News"},
	{"morningbrew.com", "Morning Brew"},
	{"thehustle.co", "The Hustle"},
}

// DetermineNewsletterName resolves a display name for the newsletter. Known
// sender domains win; otherwise a subject containing "newsletter" contributes
// the text before that word; otherwise the name is derived from the sender's
// domain. Falls back to the raw sender address when the domain can't be split
// out.
func DetermineNewsletterName(senderEmail, subject string) string {
	sender := strings.ToLower(senderEmail)
	for _, known := range knownNewsletters {
		if strings.Contains(sender, known.domain) {
			return known.name
		}
	}

	if idx := strings.Index(strings.ToLower(subject), "newsletter"); idx >= 0 {
		return strings.TrimSpace(subject[:idx])
	}

	parts := strings.SplitN(senderEmail, "@", 2)
	if len(parts) != 2 || parts[1] == "" {
		return senderEmail
	}

	domain := strings.ReplaceAll(parts[1], ".com", "")
	domain = strings.ReplaceAll(domain, ".", " ")
	return titleCase(domain)
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
