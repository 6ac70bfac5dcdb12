package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog/log"

	"github.com/ottawafunsports/ofsl/internal/config"
)

const digestCharset = "UTF-8"

// sesAPI is the part of the SES v2 client digests need.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESClient sends plain text schedule emails through Amazon SES v2.
type SESClient struct {
	api    sesAPI
	sender string
}

// NewSESClient builds a client from static credentials.
func NewSESClient(accessKeyID, secretAccessKey, region, sender string) (*SESClient, error) {
	if accessKeyID == "" || secretAccessKey == "" || region == "" {
		return nil, errors.New("ses credentials and region are required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(
		context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newSESClient(sesv2.NewFromConfig(awsCfg), sender)
}

func newSESClient(api sesAPI, sender string) (*SESClient, error) {
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return nil, errors.New("ses sender is required")
	}
	return &SESClient{api: api, sender: sender}, nil
}

// NewSESClientFromConfig returns nil without error when email is disabled.
func NewSESClientFromConfig(cfg *config.Config) (*SESClient, error) {
	if cfg == nil || !cfg.Email.Enabled {
		return nil, nil
	}
	return NewSESClient(
		cfg.Secrets.AWSAccessKeyID,
		cfg.Secrets.AWSSecretAccessKey,
		cfg.Email.Region,
		cfg.Email.Sender,
	)
}

// Send delivers one plain text message.
func (c *SESClient) Send(ctx context.Context, recipient, subject, body string) error {
	if c == nil || c.api == nil {
		return errors.New("ses client is not initialized")
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return errors.New("recipient is required")
	}

	_, err := c.api.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(c.sender),
		Destination:      &types.Destination{ToAddresses: []string{recipient}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String(digestCharset)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body), Charset: aws.String(digestCharset)},
				},
			},
		},
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("recipient", recipient).Str("subject", subject).Msg("SES rejected email")
		return fmt.Errorf("send ses email: %w", err)
	}
	log.Ctx(ctx).Debug().Str("recipient", recipient).Str("subject", subject).Msg("Email sent")
	return nil
}
