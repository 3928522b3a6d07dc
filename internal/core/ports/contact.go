package ports

import (
	"context"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// ContactInput is a message submitted through the contact form.
type ContactInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Website string
	Message string
}

type ContactRepository interface {
	Insert(ctx context.Context, msg *domain.ContactMessage) error
}

type ContactService interface {
	Send(ctx context.Context, input ContactInput) error
}
