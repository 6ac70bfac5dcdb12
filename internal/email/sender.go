package email

import "context"

// EmailSender delivers one plain text email. *SESClient is the production
// implementation; tests swap in fakes.
type EmailSender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}
