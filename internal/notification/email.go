// internal/notification/email.go

package notifications

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/imadgeboyega/kiekky-kinship/internal/logging"
)

// SendGridEmailService implements email notifications using SendGrid
type SendGridEmailService struct {
	client   *sendgrid.Client
	from     string
	fromName string
	logger   zerolog.Logger
}

// NewSendGridEmailService creates a new SendGrid email service
func NewSendGridEmailService(apiKey, from, fromName string) (EmailService, error) {
	if apiKey == "" || from == "" {
		return nil, fmt.Errorf("%w: sendgrid api key and sender are required", ErrIncompleteConfig)
	}
	if fromName == "" {
		fromName = "Kinship"
	}

	return &SendGridEmailService{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
		logger:   logging.With().Str("component", "sendgrid").Logger(),
	}, nil
}

// SendEmail sends a single email via SendGrid
func (s *SendGridEmailService) SendEmail(ctx context.Context, notification *EmailNotification) error {
	message := mail.NewSingleEmail(
		mail.NewEmail(s.fromName, s.from),
		notification.Subject,
		mail.NewEmail("", notification.To),
		notification.Body,
		notification.HTML,
	)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error().Err(err).Str("to", notification.To).Msg("Failed to send email")
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected email to %s: status %d", notification.To, resp.StatusCode)
	}

	s.logger.Info().Str("to", notification.To).Int("status", resp.StatusCode).Msg("Successfully sent email")
	return nil
}

// MockEmailService is a mock implementation for testing
type MockEmailService struct {
	mu         sync.Mutex
	SentEmails []*EmailNotification
}

func NewMockEmailService() *MockEmailService {
	return &MockEmailService{
		SentEmails: make([]*EmailNotification, 0),
	}
}

func (m *MockEmailService) SendEmail(ctx context.Context, notification *EmailNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentEmails = append(m.SentEmails, notification)
	return nil
}
