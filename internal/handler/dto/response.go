package dto

import (
	"time"

	"github.com/mtlprog/contacts/internal/domain"
)

// ContactResponse represents a contact in API responses.
type ContactResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContactsListResponse represents the response for GET /contacts.
type ContactsListResponse struct {
	Contacts []ContactResponse `json:"contacts"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// ToContactResponse converts domain.Contact to ContactResponse.
func ToContactResponse(c *domain.Contact) ContactResponse {
	return ContactResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		FullName:  c.FullName(),
		Email:     c.Email,
		Phone:     c.Phone,
		Company:   c.Company,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToContactsListResponse converts a page of contacts to ContactsListResponse.
func ToContactsListResponse(contacts []*domain.Contact, total int, filter domain.ContactFilter) ContactsListResponse {
	items := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		items = append(items, ToContactResponse(c))
	}
	return ContactsListResponse{
		Contacts: items,
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}
}
