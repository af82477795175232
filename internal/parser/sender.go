package parser

import "strings"

// ParseSender splits a raw From header into display name and email address.
// For "Name <addr@example.com>" it returns ("Name", "addr@example.com") with
// whitespace and surrounding quotes stripped from the name. Anything without
// angle brackets is returned unchanged as both name and address. No address
// validation is performed; malformed input passes through as-is.
func ParseSender(sender string) (name, email string) {
	if strings.Contains(sender, "<") && strings.Contains(sender, ">") {
		lt := strings.Index(sender, "<")
		name = strings.Trim(strings.TrimSpace(sender[:lt]), `"`)

		rest := sender[lt+1:]
		if gt := strings.Index(rest, ">"); gt >= 0 {
			rest = rest[:gt]
		}
		email = strings.TrimSpace(rest)

		return name, email
	}

	return sender, sender
}
