package dto

import "github.com/mtlprog/contacts/internal/service"

// ContactRequest represents the request body for POST /contacts and PUT /contacts/{id}.
type ContactRequest struct {
	FirstName string `json:"first_name" example:"Ada"`
	LastName  string `json:"last_name" example:"Lovelace"`
	Email     string `json:"email" example:"ada@example.com"`
	Phone     string `json:"phone,omitempty" example:"+44 20 7946 0000"`
	Company   string `json:"company,omitempty" example:"Analytical Engines"`
	Notes     string `json:"notes,omitempty"`
}

// ToInput converts the request body to service input.
func (r ContactRequest) ToInput() service.ContactInput {
	return service.ContactInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Company:   r.Company,
		Notes:     r.Notes,
	}
}

// ListContactsFilters represents query parameters for GET /contacts.
type ListContactsFilters struct {
	Search string // ?search=ada
	Limit  int    // ?limit=50
	Offset int    // ?offset=0
}
