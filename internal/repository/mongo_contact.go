package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mtlprog/contacts/internal/domain"
)

const contactsCollection = "contacts"

// contactSort orders listings by name with the id as a tiebreaker.
var contactSort = bson.D{
	{Key: "last_name", Value: 1},
	{Key: "first_name", Value: 1},
	{Key: "_id", Value: 1},
}

// MongoContactRepository stores contacts in a MongoDB collection.
type MongoContactRepository struct {
	collection *mongo.Collection
}

// NewMongoContactRepository creates a repository over the contacts collection of db.
func NewMongoContactRepository(db *mongo.Database) *MongoContactRepository {
	return &MongoContactRepository{collection: db.Collection(contactsCollection)}
}

// EnsureIndexes creates the unique email index and the listing index.
func (r *MongoContactRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("contacts_email_key"),
		},
		{
			Keys:    contactSort,
			Options: options.Index().SetName("contacts_name_idx"),
		},
	})
	if err != nil {
		return fmt.Errorf("create contact indexes: %w", err)
	}
	return nil
}

// Create inserts a new contact.
func (r *MongoContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	if _, err := r.collection.InsertOne(ctx, contact); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", domain.ErrContactExists, contact.Email)
		}
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// GetByID retrieves a contact by ID.
func (r *MongoContactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	var contact domain.Contact
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&contact)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrContactNotFound
		}
		return nil, fmt.Errorf("find contact %s: %w", id, err)
	}
	return &contact, nil
}

// List returns one page of contacts matching filter and the total match count.
func (r *MongoContactRepository) List(ctx context.Context, filter domain.ContactFilter) ([]*domain.Contact, int, error) {
	filter = filter.Normalize()
	query := searchFilter(filter.Search)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	opts := options.Find().
		SetSort(contactSort).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find contacts: %w", err)
	}
	defer cursor.Close(ctx)

	contacts := make([]*domain.Contact, 0, filter.Limit)
	if err := cursor.All(ctx, &contacts); err != nil {
		return nil, 0, fmt.Errorf("decode contacts: %w", err)
	}

	return contacts, int(total), nil
}

// Update replaces the mutable fields of an existing contact.
func (r *MongoContactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	update := bson.M{
		"$set": bson.M{
			"first_name": contact.FirstName,
			"last_name":  contact.LastName,
			"email":      contact.Email,
			"phone":      contact.Phone,
			"company":    contact.Company,
			"notes":      contact.Notes,
			"updated_at": contact.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": contact.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", domain.ErrContactExists, contact.Email)
		}
		return fmt.Errorf("update contact %s: %w", contact.ID, err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}

// Delete removes a contact.
func (r *MongoContactRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete contact %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}

// searchFilter matches search case-insensitively against names, email and company.
func searchFilter(search string) bson.M {
	if search == "" {
		return bson.M{}
	}
	re := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	return bson.M{
		"$or": bson.A{
			bson.M{"first_name": re},
			bson.M{"last_name": re},
			bson.M{"email": re},
			bson.M{"company": re},
		},
	}
}
