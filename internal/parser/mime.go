package parser

import (
	"bytes"
	"encoding/base64"
	"io"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"google.golang.org/api/gmail/v1"
)

// ParseRawMessage converts a Gmail API message fetched with format=raw into a
// NewsletterEmail by decoding and walking the underlying RFC 822 payload.
// Like ParseMessage it degrades to a placeholder record instead of failing.
func ParseRawMessage(msg *gmail.Message) *NewsletterEmail {
	if msg == nil {
		return placeholderNewsletter("unknown", "")
	}

	raw, err := base64.URLEncoding.DecodeString(msg.Raw)
	if err != nil {
		if raw, err = base64.RawURLEncoding.DecodeString(msg.Raw); err != nil {
			return placeholderNewsletter(msg.Id, msg.Snippet)
		}
	}

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return placeholderNewsletter(msg.Id, msg.Snippet)
	}

	subject := "No Subject"
	if s, err := mr.Header.Subject(); err == nil && s != "" {
		subject = s
	}

	sender := "Unknown"
	if from := mr.Header.Get("From"); from != "" {
		sender = from
	}

	recipient := "Unknown"
	if to := mr.Header.Get("To"); to != "" {
		recipient = to
	}

	contentPlain, contentHTML := extractMIMEContent(mr)

	senderName, senderEmail := ParseSender(sender)

	content := contentHTML
	if content == "" {
		content = contentPlain
	}

	return &NewsletterEmail{
		MessageID:      msg.Id,
		ThreadID:       msg.ThreadId,
		Subject:        subject,
		Sender:         senderEmail,
		SenderName:     senderName,
		Recipient:      recipient,
		Date:           mr.Header.Get("Date"),
		Timestamp:      msg.InternalDate / 1000,
		ContentPlain:   contentPlain,
		ContentHTML:    contentHTML,
		NewsletterName: DetermineNewsletterName(senderEmail, subject),
		ArticleURLs:    ExtractURLs(content),
		PrimaryURL:     ExtractPrimaryURL(contentHTML, contentPlain, senderEmail),
		Labels:         filterLabels(msg.LabelIds),
		Snippet:        msg.Snippet,
	}
}

// extractMIMEContent accumulates all inline text/plain and text/html parts.
// The mail reader handles transfer-encoding and charset conversion; parts it
// chokes on are skipped.
func extractMIMEContent(mr *mail.Reader) (contentPlain, contentHTML string) {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return contentPlain, contentHTML
		}
		if err != nil {
			// Keep whatever decoded cleanly so far.
			return contentPlain, contentHTML
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := header.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			contentPlain += string(body)
		case strings.HasPrefix(contentType, "text/html"):
			contentHTML += string(body)
		}
	}
}
