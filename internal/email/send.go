package email

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const digestEmailTimeout = 10 * time.Second

// SendWeeklyDigest delivers a digest and waits for the result.
func SendWeeklyDigest(ctx context.Context, sender EmailSender, recipient string, message Message) error {
	if sender == nil {
		return nil
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" || message.Subject == "" || message.Body == "" {
		return nil
	}
	sendCtx, cancel := context.WithTimeout(ctx, digestEmailTimeout)
	defer cancel()
	return sender.Send(sendCtx, recipient, message.Subject, message.Body)
}

// SendWeeklyDigestAsync sends a digest in the background, keeping ctx's values
// but not its cancellation.
func SendWeeklyDigestAsync(ctx context.Context, sender EmailSender, recipient string, message Message, logger *zerolog.Logger) {
	if sender == nil {
		return
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" || message.Subject == "" || message.Body == "" {
		return
	}

	go func() {
		// The send outlives the request that queued it.
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), digestEmailTimeout)
		defer cancel()
		if err := sender.Send(sendCtx, recipient, message.Subject, message.Body); err != nil {
			if logger != nil {
				logger.Error().Err(err).Str("recipient", recipient).Msg("Failed to send weekly digest")
			}
			return
		}
		if logger != nil {
			logger.Info().Str("recipient", recipient).Msg("Weekly digest sent")
		}
	}()
}
