package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/identity-service/internal/core/domain"
)

const contactCollection = "contact_form"

type ContactRepository struct {
	coll *mongo.Collection
}

func NewContactRepository(db *mongo.Database) *ContactRepository {
	return &ContactRepository{coll: db.Collection(contactCollection)}
}

type mongoContact struct {
	Name      string    `bson:"name,omitempty"`
	Email     string    `bson:"email"`
	Phone     string    `bson:"phone,omitempty"`
	Address   string    `bson:"address,omitempty"`
	Website   string    `bson:"website"`
	Message   string    `bson:"message"`
	EntryDate time.Time `bson:"entryDate"`
}

func (r *ContactRepository) Insert(ctx context.Context, msg *domain.ContactMessage) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, mongoContact{
		Name:      msg.Name,
		Email:     msg.Email,
		Phone:     msg.Phone,
		Address:   msg.Address,
		Website:   msg.Website,
		Message:   msg.Message,
		EntryDate: msg.EntryDate.UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	return nil
}
