package domain

import (
	"fmt"
	"net/mail"
	"strings"
)

// ParseRecipients turns a comma-separated email list into Recipient values.
// Every address must parse; invalid ones are reported together so the caller
// can surface them in a single validation message.
func ParseRecipients(raw string) ([]Recipient, error) {
	parts := strings.Split(raw, ",")
	recipients := make([]Recipient, 0, len(parts))
	var invalid []string

	for _, part := range parts {
		email := strings.TrimSpace(part)
		if email == "" {
			continue
		}
		parsed, err := mail.ParseAddress(email)
		if err != nil || parsed.Address != email {
			invalid = append(invalid, email)
			continue
		}
		recipients = append(recipients, Recipient{Email: email})
	}

	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid recipient emails: %s", strings.Join(invalid, ", "))
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("at least one recipient email is required")
	}
	return recipients, nil
}
