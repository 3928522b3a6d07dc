package ports

import (
	"context"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// EventRepository persists the user audit trail.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.UserEvent) error
}
