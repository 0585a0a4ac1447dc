// Package repositorytest provides an in-memory ContactRepository for tests.
package repositorytest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mtlprog/contacts/internal/domain"
)

// MemoryContactRepository keeps contacts in a map. It mirrors the ordering,
// search and error semantics of the database-backed repositories.
type MemoryContactRepository struct {
	mu       sync.RWMutex
	contacts map[string]domain.Contact

	// Err, when set, is returned by every operation.
	Err error
}

// NewMemoryContactRepository creates an empty repository.
func NewMemoryContactRepository() *MemoryContactRepository {
	return &MemoryContactRepository{contacts: make(map[string]domain.Contact)}
}

func (r *MemoryContactRepository) Create(_ context.Context, contact *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	if r.emailTaken(contact.Email, contact.ID) {
		return domain.ErrContactExists
	}
	r.contacts[contact.ID] = *contact
	return nil
}

func (r *MemoryContactRepository) GetByID(_ context.Context, id string) (*domain.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.Err != nil {
		return nil, r.Err
	}
	c, ok := r.contacts[id]
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	return &c, nil
}

func (r *MemoryContactRepository) List(_ context.Context, filter domain.ContactFilter) ([]*domain.Contact, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.Err != nil {
		return nil, 0, r.Err
	}
	filter = filter.Normalize()
	search := strings.ToLower(filter.Search)

	matched := make([]*domain.Contact, 0, len(r.contacts))
	for _, c := range r.contacts {
		if search != "" && !matches(c, search) {
			continue
		}
		c := c
		matched = append(matched, &c)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.ID < b.ID
	})

	total := len(matched)
	if filter.Offset >= total {
		return []*domain.Contact{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	return matched[filter.Offset:end], total, nil
}

func (r *MemoryContactRepository) Update(_ context.Context, contact *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	existing, ok := r.contacts[contact.ID]
	if !ok {
		return domain.ErrContactNotFound
	}
	if r.emailTaken(contact.Email, contact.ID) {
		return domain.ErrContactExists
	}
	updated := *contact
	updated.CreatedAt = existing.CreatedAt
	r.contacts[contact.ID] = updated
	return nil
}

func (r *MemoryContactRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.contacts[id]; !ok {
		return domain.ErrContactNotFound
	}
	delete(r.contacts, id)
	return nil
}

// Len returns the number of stored contacts.
func (r *MemoryContactRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.contacts)
}

func (r *MemoryContactRepository) emailTaken(email, exceptID string) bool {
	for id, c := range r.contacts {
		if id != exceptID && c.Email == email {
			return true
		}
	}
	return false
}

func matches(c domain.Contact, search string) bool {
	for _, v := range []string{c.FirstName, c.LastName, c.Email, c.Company} {
		if strings.Contains(strings.ToLower(v), search) {
			return true
		}
	}
	return false
}
