package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/api/metrics"
	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

type ContactService struct {
	repo ports.ContactRepository
	log  zerolog.Logger
}

func NewContactService(repo ports.ContactRepository, log zerolog.Logger) *ContactService {
	return &ContactService{repo: repo, log: log}
}

// Send stores a contact form message.
func (s *ContactService) Send(ctx context.Context, in ports.ContactInput) error {
	msg := &domain.ContactMessage{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		Website:   strings.TrimSpace(in.Website),
		Message:   strings.TrimSpace(in.Message),
		EntryDate: time.Now().UTC(),
	}
	if msg.Email == "" || msg.Website == "" || msg.Message == "" {
		metrics.ContactMessagesTotal.WithLabelValues("invalid").Inc()
		return fmt.Errorf("%w: email, website and message are required", domain.ErrValidation)
	}

	if err := s.repo.Insert(ctx, msg); err != nil {
		metrics.ContactMessagesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("send contact message: %w", err)
	}

	metrics.ContactMessagesTotal.WithLabelValues("stored").Inc()
	s.log.Info().Str("email", msg.Email).Msg("contact message stored")
	return nil
}
