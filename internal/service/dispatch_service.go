package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-notify/internal/gateway"
	"github.com/noah-isme/lms-notify/internal/models"
)

// ContentFunc builds the per-recipient payloads for one fan-out.
type ContentFunc func(recipient models.Recipient) (models.PushMessage, models.EmailMessage)

// DispatchService performs the fan-out: every recipient concurrently, push
// and email per recipient independently, join when every attempt has settled.
// A failed attempt is logged and recorded; it never stops the other channel
// or any other recipient.
type DispatchService struct {
	push    gateway.PushGateway
	email   gateway.EmailGateway
	metrics *MetricsService
	logger  *zap.Logger
}

// NewDispatchService constructs the dispatcher with injected gateways.
func NewDispatchService(push gateway.PushGateway, email gateway.EmailGateway, metrics *MetricsService, logger *zap.Logger) *DispatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DispatchService{push: push, email: email, metrics: metrics, logger: logger}
}

// Dispatch delivers to every recipient and reports per-recipient outcomes.
// It returns only after all attempts have settled.
func (s *DispatchService) Dispatch(ctx context.Context, kind models.NotificationKind, recipients []models.Recipient, build ContentFunc) models.DispatchReport {
	report := models.DispatchReport{
		Kind:       kind,
		Recipients: make([]models.RecipientOutcome, len(recipients)),
	}

	var wg sync.WaitGroup
	for i, recipient := range recipients {
		report.Recipients[i].UserID = recipient.ID
		wg.Add(1)
		go func(i int, recipient models.Recipient) {
			defer wg.Done()
			push, email := build(recipient)

			var channels sync.WaitGroup
			channels.Add(2)
			go func() {
				defer channels.Done()
				report.Recipients[i].PushOutcome = s.attemptPush(ctx, kind, recipient, push)
			}()
			go func() {
				defer channels.Done()
				report.Recipients[i].EmailOutcome = s.attemptEmail(ctx, kind, recipient, email)
			}()
			channels.Wait()
		}(i, recipient)
	}
	wg.Wait()

	s.metrics.ObserveDispatch(kind, len(recipients))
	return report
}

func (s *DispatchService) attemptPush(ctx context.Context, kind models.NotificationKind, recipient models.Recipient, msg models.PushMessage) (outcome models.ChannelOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = models.OutcomeFailed
			s.logger.Error("push delivery panicked",
				zap.String("kind", string(kind)),
				zap.String("user_id", recipient.ID),
				zap.Any("panic", r),
			)
		}
		s.metrics.ObserveDelivery(kind, "push", outcome)
	}()

	if err := s.push.SendPush(ctx, recipient.ID, msg); err != nil {
		s.logger.Warn("push delivery failed",
			zap.String("kind", string(kind)),
			zap.String("user_id", recipient.ID),
			zap.Error(err),
		)
		return models.OutcomeFailed
	}
	return models.OutcomeSent
}

func (s *DispatchService) attemptEmail(ctx context.Context, kind models.NotificationKind, recipient models.Recipient, msg models.EmailMessage) (outcome models.ChannelOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = models.OutcomeFailed
			s.logger.Error("email delivery panicked",
				zap.String("kind", string(kind)),
				zap.String("user_id", recipient.ID),
				zap.Any("panic", r),
			)
		}
		s.metrics.ObserveDelivery(kind, "email", outcome)
	}()

	if recipient.Email == nil || *recipient.Email == "" {
		return models.OutcomeSkipped
	}

	if err := s.email.SendEmail(ctx, *recipient.Email, msg); err != nil {
		s.logger.Warn("email delivery failed",
			zap.String("kind", string(kind)),
			zap.String("user_id", recipient.ID),
			zap.Error(err),
		)
		return models.OutcomeFailed
	}
	return models.OutcomeSent
}
