package notifications

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/imadgeboyega/kiekky-kinship/internal/logging"
)

// TwilioSMSService implements SMS notifications using Twilio
type TwilioSMSService struct {
	client *twilio.RestClient
	from   string
	logger zerolog.Logger
}

// NewTwilioSMSService creates a new Twilio SMS service
func NewTwilioSMSService(accountSID, authToken, from string) (SMSService, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("%w: twilio account, token and sender are required", ErrIncompleteConfig)
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioSMSService{
		client: client,
		from:   from,
		logger: logging.With().Str("component", "twilio").Logger(),
	}, nil
}

// SendSMS sends a single SMS
func (s *TwilioSMSService) SendSMS(ctx context.Context, notification *SMSNotification) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(notification.To)
	params.SetFrom(s.from)
	params.SetBody(notification.Message)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		s.logger.Error().Err(err).Str("to", notification.To).Msg("Failed to send SMS")
		return err
	}

	if resp.Sid != nil {
		s.logger.Info().Str("to", notification.To).Str("sid", *resp.Sid).Msg("Successfully sent SMS")
	}
	return nil
}

// MockSMSService records messages instead of sending them
type MockSMSService struct {
	mu   sync.Mutex
	Sent []*SMSNotification
}

func NewMockSMSService() *MockSMSService {
	return &MockSMSService{Sent: make([]*SMSNotification, 0)}
}

func (m *MockSMSService) SendSMS(ctx context.Context, notification *SMSNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, notification)
	return nil
}
