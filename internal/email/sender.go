package email

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

// Sender delivers transactional email through Resend. When no API key is
// configured it logs the send and reports success, so local development
// works without credentials.
type Sender struct {
	client *resend.Client
	from   string
}

// NewSender creates a Sender. apiKey may be empty for mock mode.
func NewSender(apiKey, from string) *Sender {
	s := &Sender{from: from}
	if apiKey != "" {
		s.client = resend.NewClient(apiKey)
	}
	return s
}

// Send delivers one HTML email.
func (s *Sender) Send(ctx context.Context, to, subject, html string) error {
	if s.client == nil {
		log.Printf("email: mock send to %s subject %q", to, subject)
		return nil
	}

	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
