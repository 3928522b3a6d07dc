package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/api/metrics"
	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

type eventService struct {
	eventRepo ports.EventRepository
	log       zerolog.Logger
}

// NewEventService returns an EventService that persists audit events.
func NewEventService(eventRepo ports.EventRepository, log zerolog.Logger) ports.EventService {
	return &eventService{
		eventRepo: eventRepo,
		log:       log,
	}
}

// Record validates and stores a single audit event.
func (s *eventService) Record(ctx context.Context, event domain.UserEvent) error {
	if event.UserID == "" || event.Type == "" {
		metrics.AuditEventsTotal.WithLabelValues(string(event.Type), "failed").Inc()
		return fmt.Errorf("record event: %w: userId and type are required", domain.ErrValidation)
	}

	if err := s.eventRepo.InsertEvent(ctx, &event); err != nil {
		metrics.AuditEventsTotal.WithLabelValues(string(event.Type), "failed").Inc()
		return fmt.Errorf("record event: %w", err)
	}

	metrics.AuditEventsTotal.WithLabelValues(string(event.Type), "recorded").Inc()
	s.log.Debug().
		Str("user_id", event.UserID).
		Str("type", string(event.Type)).
		Msg("audit event recorded")

	return nil
}
