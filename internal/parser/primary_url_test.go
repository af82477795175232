package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPrimaryURLCanonicalTag(t *testing.T) {
	html := `<html><head>
		<link rel="canonical" href="https://blog.example.com/posts/hello-world">
	</head><body>
		<a href="https://other.example.com/x">something else</a>
	</body></html>`

	url := ExtractPrimaryURL(html, "", "writer@example.com")

	assert.Equal(t, "https://blog.example.com/posts/hello-world", url)
}

func TestExtractPrimaryURLSenderPlatform(t *testing.T) {
	tests := []struct {
		name     string
		sender   string
		content  string
		expected string
	}{
		{
			name:     "Substack sender matches substack post URL",
			sender:   "news@techdigest.substack.com",
			content:  "intro https://techdigest.substack.com/p/ai-in-july more text",
			expected: "https://techdigest.substack.com/p/ai-in-july",
		},
		{
			name:     "Medium sender matches medium URL",
			sender:   "noreply@medium.com",
			content:  "https://medium.com/@author/some-story-1a2b3c",
			expected: "https://medium.com/@author/some-story-1a2b3c",
		},
		{
			name:     "Beehiiv sender matches beehiiv post URL",
			sender:   "hello@mail.beehiiv.com",
			content:  "https://creators.beehiiv.com/p/launch-week",
			expected: "https://creators.beehiiv.com/p/launch-week",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractPrimaryURL("", tt.content, tt.sender))
		})
	}
}

func TestExtractPrimaryURLGenericPlatform(t *testing.T) {
	// Sender domain is unknown but the body links a hosted substack post.
	content := "check out https://somebody.substack.com/p/the-latest-issue today"

	url := ExtractPrimaryURL("", content, "news@randomsender.io")

	assert.Equal(t, "https://somebody.substack.com/p/the-latest-issue", url)
}

func TestExtractPrimaryURLViewInBrowser(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "View in browser anchor",
			html:     `<p><a href="https://archive.example.com/issue/42">View in browser</a></p>`,
			expected: "https://archive.example.com/issue/42",
		},
		{
			name:     "Read online anchor",
			html:     `<a href="https://example.com/online/7">Read this issue online</a>`,
			expected: "https://example.com/online/7",
		},
		{
			name: "Tracking href on browser anchor is skipped",
			html: `<a href="https://click.tracking.example.com/abc">View in browser</a>
			       <a href="https://example.com/fallback-article">story</a>`,
			expected: "https://example.com/fallback-article",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractPrimaryURL(tt.html, "", "news@randomsender.io"))
		})
	}
}

func TestExtractPrimaryURLFallback(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "First non-tracking URL wins",
			content:  "https://news.example.com/unsubscribe https://example.com/the-article",
			expected: "https://example.com/the-article",
		},
		{
			name:     "Social links skipped",
			content:  "https://twitter.com/someone https://facebook.com/page https://example.com/story",
			expected: "https://example.com/story",
		},
		{
			name:     "Campaign archive hosts skipped",
			content:  "https://mailchi.mp/abc/issue https://example.com/story",
			expected: "https://example.com/story",
		},
		{
			name:     "Only tracking URLs yields empty",
			content:  "https://a.example.com/unsubscribe https://twitter.com/x",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractPrimaryURL("", tt.content, "news@randomsender.io"))
		})
	}
}

func TestExtractPrimaryURLEmptyContent(t *testing.T) {
	assert.Equal(t, "", ExtractPrimaryURL("", "", "news@example.com"))
	assert.Equal(t, []string{}, ExtractURLs(""))
}

func TestExtractPrimaryURLDrawnFromCandidateSet(t *testing.T) {
	// Without a canonical tag, the primary URL must come from the same
	// candidate set the general extractor produces.
	content := "https://somebody.substack.com/p/issue-12 https://example.com/other"

	primary := ExtractPrimaryURL("", content, "news@somebody.substack.com")
	urls := ExtractURLs(content)

	assert.NotEmpty(t, primary)
	assert.Contains(t, urls, primary)
}
