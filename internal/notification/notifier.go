package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/imadgeboyega/kiekky-kinship/internal/learning"
	"github.com/imadgeboyega/kiekky-kinship/internal/logging"
	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
)

var (
	_ learning.DraftNotifier = (*ReviewNotifier)(nil)
	_ learning.DraftNotifier = (*LogNotifier)(nil)
)

// ReviewNotifier alerts model reviewers that a draft is waiting.
// Every recipient is attempted; failures are joined.
type ReviewNotifier struct {
	email   EmailService
	sms     SMSService
	emailTo []string
	smsTo   []string
	logger  zerolog.Logger
}

func NewReviewNotifier(email EmailService, sms SMSService, emailTo, smsTo []string) *ReviewNotifier {
	return &ReviewNotifier{
		email:   email,
		sms:     sms,
		emailTo: compact(emailTo),
		smsTo:   compact(smsTo),
		logger:  logging.With().Str("component", "review_notifier").Logger(),
	}
}

// Channels lists the channels this notifier will actually use
func (n *ReviewNotifier) Channels() []DeliveryChannel {
	var out []DeliveryChannel
	if n.email != nil && len(n.emailTo) > 0 {
		out = append(out, ChannelEmail)
	}
	if n.sms != nil && len(n.smsTo) > 0 {
		out = append(out, ChannelSMS)
	}
	return out
}

func (n *ReviewNotifier) NotifyDraft(ctx context.Context, draft *matching.CompatibilityModel, triggers []string) error {
	review, err := RenderDraftReview(draft, triggers)
	if err != nil {
		return err
	}

	var errs []error
	if n.email != nil {
		for _, to := range n.emailTo {
			err := n.email.SendEmail(ctx, &EmailNotification{
				To:      to,
				Subject: review.Subject,
				Body:    review.Body,
				HTML:    review.HTML,
			})
			if err != nil {
				errs = append(errs, fmt.Errorf("email %s: %w", to, err))
			}
		}
	}
	if n.sms != nil {
		for _, to := range n.smsTo {
			if err := n.sms.SendSMS(ctx, &SMSNotification{To: to, Message: review.Short}); err != nil {
				errs = append(errs, fmt.Errorf("sms %s: %w", to, err))
			}
		}
	}

	n.logger.Info().
		Str("draft", draft.Version).
		Strs("triggers", triggers).
		Int("failures", len(errs)).
		Msg("Draft review notifications dispatched")

	return errors.Join(errs...)
}

// LogNotifier only writes the review to the log. Used when no
// provider credentials are configured.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: logging.With().Str("component", "review_notifier").Logger()}
}

func (n *LogNotifier) NotifyDraft(_ context.Context, draft *matching.CompatibilityModel, triggers []string) error {
	review, err := RenderDraftReview(draft, triggers)
	if err != nil {
		return err
	}
	n.logger.Warn().
		Str("channel", string(ChannelLog)).
		Str("draft", draft.Version).
		Msg(review.Short)
	return nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
