package ports

import (
	"context"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// EventService records directory audit events taken off the dispatcher queue.
type EventService interface {
	Record(ctx context.Context, event domain.UserEvent) error
}
