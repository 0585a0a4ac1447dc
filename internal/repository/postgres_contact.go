package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/contacts/internal/domain"
)

const (
	pgUniqueViolation           = "23505"
	pgInvalidTextRepresentation = "22P02"
)

// contactColumns is the shared list of columns for contact queries.
var contactColumns = []string{
	"id", "first_name", "last_name", "email", "phone", "company", "notes",
	"created_at", "updated_at",
}

// PostgresContactRepository stores contacts in the relational contacts table.
type PostgresContactRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresContactRepository creates a new PostgresContactRepository.
func NewPostgresContactRepository(pool *pgxpool.Pool) *PostgresContactRepository {
	return &PostgresContactRepository{pool: pool}
}

// scanContact scans a single row into a Contact struct.
func scanContact(row pgx.Row) (*domain.Contact, error) {
	var c domain.Contact
	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.Company,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isPgError(err, pgInvalidTextRepresentation) {
			return nil, domain.ErrContactNotFound
		}
		return nil, fmt.Errorf("scan contact: %w", err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// Create inserts a new contact.
func (r *PostgresContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	query, args, err := psql.
		Insert("contacts").
		Columns(contactColumns...).
		Values(
			contact.ID, contact.FirstName, contact.LastName, contact.Email,
			contact.Phone, contact.Company, contact.Notes,
			contact.CreatedAt, contact.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Create query for contact: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		if isPgError(err, pgUniqueViolation) {
			return fmt.Errorf("%w: %s", domain.ErrContactExists, contact.Email)
		}
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// GetByID retrieves a contact by ID.
func (r *PostgresContactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	query, args, err := psql.
		Select(contactColumns...).
		From("contacts").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for contact: %w", err)
	}

	return scanContact(r.pool.QueryRow(ctx, query, args...))
}

// List returns one page of contacts matching filter and the total match count.
func (r *PostgresContactRepository) List(ctx context.Context, filter domain.ContactFilter) ([]*domain.Contact, int, error) {
	filter = filter.Normalize()

	countQuery, countArgs, err := withSearch(psql.Select("COUNT(*)").From("contacts"), filter.Search).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List count query: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	query, args, err := withSearch(psql.Select(contactColumns...).From("contacts"), filter.Search).
		OrderBy("last_name", "first_name", "id").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]*domain.Contact, 0, filter.Limit)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate rows: %w", err)
	}

	return contacts, total, nil
}

// withSearch narrows a select to contacts matching search in any text column.
func withSearch(b sq.SelectBuilder, search string) sq.SelectBuilder {
	if search == "" {
		return b
	}
	pattern := containsPattern(search)
	return b.Where(sq.Or{
		sq.ILike{"first_name": pattern},
		sq.ILike{"last_name": pattern},
		sq.ILike{"email": pattern},
		sq.ILike{"company": pattern},
	})
}

// Update replaces the mutable fields of an existing contact.
func (r *PostgresContactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	query, args, err := psql.
		Update("contacts").
		Set("first_name", contact.FirstName).
		Set("last_name", contact.LastName).
		Set("email", contact.Email).
		Set("phone", contact.Phone).
		Set("company", contact.Company).
		Set("notes", contact.Notes).
		Set("updated_at", contact.UpdatedAt).
		Where(sq.Eq{"id": contact.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Update query for contact %s: %w", contact.ID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		switch {
		case isPgError(err, pgUniqueViolation):
			return fmt.Errorf("%w: %s", domain.ErrContactExists, contact.Email)
		case isPgError(err, pgInvalidTextRepresentation):
			return domain.ErrContactNotFound
		}
		return fmt.Errorf("update contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}

// Delete removes a contact.
func (r *PostgresContactRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.
		Delete("contacts").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Delete query for contact %s: %w", id, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isPgError(err, pgInvalidTextRepresentation) {
			return domain.ErrContactNotFound
		}
		return fmt.Errorf("delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}
