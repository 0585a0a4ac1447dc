package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/mtlprog/contacts/docs" // Import generated docs
	"github.com/mtlprog/contacts/internal/handler/dto"
	"github.com/mtlprog/contacts/internal/service"
	"github.com/mtlprog/contacts/internal/static"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	contacts *service.ContactService
	store    Pinger
}

// New creates a new Handler instance with all dependencies.
func New(contacts *service.ContactService, store Pinger) *Handler {
	return &Handler{
		contacts: contacts,
		store:    store,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Landing page and health check
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Swagger UI
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler())

	// API v1 routes
	mux.HandleFunc("GET /api/v1/contacts", h.handleListContacts)
	mux.HandleFunc("POST /api/v1/contacts", h.handleCreateContact)
	mux.HandleFunc("GET /api/v1/contacts/{id}", h.handleGetContact)
	mux.HandleFunc("PUT /api/v1/contacts/{id}", h.handleUpdateContact)
	mux.HandleFunc("DELETE /api/v1/contacts/{id}", h.handleDeleteContact)
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.store.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleIndex serves the embedded landing page.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(static.IndexHTML))
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps a service error to a standard error response.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// extractContactID extracts contact ID from path parameter.
// Returns (id, true) if present, ("", false) if missing (error already sent to client).
func extractContactID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "contact id is required")
		return "", false
	}
	return id, true
}
