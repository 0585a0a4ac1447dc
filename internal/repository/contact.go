package repository

import (
	"context"

	"github.com/mtlprog/contacts/internal/domain"
)

// ContactRepository persists contacts. Implementations return
// domain.ErrContactNotFound for missing ids and domain.ErrContactExists
// when the email is already taken.
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	GetByID(ctx context.Context, id string) (*domain.Contact, error)
	List(ctx context.Context, filter domain.ContactFilter) ([]*domain.Contact, int, error)
	Update(ctx context.Context, contact *domain.Contact) error
	Delete(ctx context.Context, id string) error
}

var (
	_ ContactRepository = (*MongoContactRepository)(nil)
	_ ContactRepository = (*PostgresContactRepository)(nil)
)
