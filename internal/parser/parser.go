package parser

import (
	"strings"

	"google.golang.org/api/gmail/v1"
)

// ParseMessage converts a Gmail API message (format=full) into a
// NewsletterEmail. It never fails: a message with no usable payload still
// produces a minimal placeholder record so the pipeline can continue.
func ParseMessage(msg *gmail.Message) *NewsletterEmail {
	if msg == nil {
		return placeholderNewsletter("unknown", "")
	}
	if msg.Payload == nil {
		return placeholderNewsletter(msg.Id, msg.Snippet)
	}

	subject := "No Subject"
	sender := "Unknown"
	recipient := "Unknown"
	date := ""

	for _, header := range msg.Payload.Headers {
		switch strings.ToLower(header.Name) {
		case "subject":
			subject = header.Value
		case "from":
			sender = header.Value
		case "to":
			recipient = header.Value
		case "date":
			date = header.Value
		}
	}

	senderName, senderEmail := ParseSender(sender)
	contentPlain, contentHTML := ExtractContent(msg.Payload)

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
		Date:           date,
		Timestamp:      msg.InternalDate / 1000, // internalDate is milliseconds
		ContentPlain:   contentPlain,
		ContentHTML:    contentHTML,
		NewsletterName: DetermineNewsletterName(senderEmail, subject),
		ArticleURLs:    ExtractURLs(content),
		PrimaryURL:     ExtractPrimaryURL(contentHTML, contentPlain, senderEmail),
		Labels:         filterLabels(msg.LabelIds),
		Snippet:        msg.Snippet,
	}
}

// filterLabels keeps Gmail system labels and drops user-defined ones, which
// carry opaque Label_* identifiers.
func filterLabels(labelIDs []string) []string {
	labels := []string{}
	for _, id := range labelIDs {
		if !strings.HasPrefix(id, "Label_") {
			labels = append(labels, id)
		}
	}
	return labels
}

// placeholderNewsletter is returned for messages the parser cannot make sense
// of. The pipeline logs and moves on rather than aborting the whole run.
func placeholderNewsletter(messageID, snippet string) *NewsletterEmail {
	return &NewsletterEmail{
		MessageID:      messageID,
		Subject:        "Parse Error",
		Sender:         "unknown",
		SenderName:     "unknown",
		Recipient:      "unknown",
		NewsletterName: "Unknown",
		ArticleURLs:    []string{},
		Labels:         []string{},
		Snippet:        snippet,
	}
}
