// internal/notification/models.go

package notifications

import (
	"context"
	"errors"
)

var ErrIncompleteConfig = errors.New("incomplete notification provider configuration")

// DeliveryChannel represents notification delivery channels
type DeliveryChannel string

const (
	ChannelEmail DeliveryChannel = "email"
	ChannelSMS   DeliveryChannel = "sms"
	ChannelLog   DeliveryChannel = "log"
)

// EmailNotification is one outgoing email
type EmailNotification struct {
	To      string
	Subject string
	Body    string
	HTML    string
}

// SMSNotification is one outgoing text message
type SMSNotification struct {
	To      string
	Message string
}

// EmailService delivers email
type EmailService interface {
	SendEmail(ctx context.Context, notification *EmailNotification) error
}

// SMSService delivers text messages
type SMSService interface {
	SendSMS(ctx context.Context, notification *SMSNotification) error
}

// DraftReview is the rendered content of a draft-review alert
type DraftReview struct {
	Subject string
	Body    string
	HTML    string
	Short   string
}
