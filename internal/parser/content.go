package parser

import (
	"encoding/base64"

	"google.golang.org/api/gmail/v1"
)

// ExtractContent walks a Gmail message part tree and accumulates all
// text/plain segments into one string and all text/html segments into
// another. Segments that fail to decode are skipped; missing bodies yield
// empty strings, never errors.
func ExtractContent(payload *gmail.MessagePart) (contentPlain, contentHTML string) {
	if payload == nil {
		return "", ""
	}

	if payload.Body != nil && payload.Body.Data != "" {
		switch payload.MimeType {
		case "text/plain":
			contentPlain += decodeBody(payload.Body.Data)
		case "text/html":
			contentHTML += decodeBody(payload.Body.Data)
		}
	}

	for _, part := range payload.Parts {
		plain, html := ExtractContent(part)
		contentPlain += plain
		contentHTML += html
	}

	return contentPlain, contentHTML
}

// decodeBody decodes the base64url payload Gmail returns for message bodies.
// Gmail pads its output, but unpadded data shows up in the wild, so try both.
func decodeBody(data string) string {
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	return ""
}
