package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mtlprog/contacts/internal/domain"
	"github.com/mtlprog/contacts/internal/handler/dto"
)

// maxBodyBytes bounds contact request bodies.
const maxBodyBytes = 64 << 10

// handleListContacts returns a page of contacts.
// @Summary List contacts
// @Description Lists contacts ordered by last name, first name. Optional case-insensitive search over names, email and company.
// @Tags contacts
// @Produce json
// @Param search query string false "Search text"
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.ContactsListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /contacts [get]
func (h *Handler) handleListContacts(w http.ResponseWriter, r *http.Request) {
	filters, ok := parseListFilters(w, r)
	if !ok {
		return
	}

	filter := domain.ContactFilter{
		Search: filters.Search,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}.Normalize()

	contacts, total, err := h.contacts.List(r.Context(), filter)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToContactsListResponse(contacts, total, filter))
}

// handleCreateContact creates a new contact.
// @Summary Create a contact
// @Tags contacts
// @Accept json
// @Produce json
// @Param request body dto.ContactRequest true "Contact"
// @Success 201 {object} dto.ContactResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /contacts [post]
func (h *Handler) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeContactRequest(w, r)
	if !ok {
		return
	}

	contact, err := h.contacts.Create(r.Context(), req.ToInput())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/contacts/"+contact.ID)
	respondJSON(w, http.StatusCreated, dto.ToContactResponse(contact))
}

// handleGetContact retrieves a contact.
// @Summary Get a contact
// @Tags contacts
// @Produce json
// @Param id path string true "Contact ID"
// @Success 200 {object} dto.ContactResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /contacts/{id} [get]
func (h *Handler) handleGetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := extractContactID(w, r)
	if !ok {
		return
	}

	contact, err := h.contacts.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToContactResponse(contact))
}

// handleUpdateContact replaces the editable fields of a contact.
// @Summary Update a contact
// @Tags contacts
// @Accept json
// @Produce json
// @Param id path string true "Contact ID"
// @Param request body dto.ContactRequest true "Contact"
// @Success 200 {object} dto.ContactResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /contacts/{id} [put]
func (h *Handler) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := extractContactID(w, r)
	if !ok {
		return
	}

	req, ok := decodeContactRequest(w, r)
	if !ok {
		return
	}

	contact, err := h.contacts.Update(r.Context(), id, req.ToInput())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToContactResponse(contact))
}

// handleDeleteContact removes a contact.
// @Summary Delete a contact
// @Tags contacts
// @Param id path string true "Contact ID"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /contacts/{id} [delete]
func (h *Handler) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := extractContactID(w, r)
	if !ok {
		return
	}

	if err := h.contacts.Delete(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeContactRequest parses a JSON contact body.
// Returns (req, false) after sending 400 when the body is not valid JSON.
func decodeContactRequest(w http.ResponseWriter, r *http.Request) (dto.ContactRequest, bool) {
	var req dto.ContactRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return req, false
	}
	return req, true
}

// parseListFilters reads search, limit and offset query parameters.
func parseListFilters(w http.ResponseWriter, r *http.Request) (dto.ListContactsFilters, bool) {
	q := r.URL.Query()
	filters := dto.ListContactsFilters{Search: q.Get("search")}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer")
			return filters, false
		}
		filters.Limit = limit
	}

	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "offset must be a non-negative integer")
			return filters, false
		}
		filters.Offset = offset
	}

	return filters, true
}
