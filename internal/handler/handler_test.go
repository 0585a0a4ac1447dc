package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/mtlprog/contacts/internal/handler"
	"github.com/mtlprog/contacts/internal/handler/dto"
	"github.com/mtlprog/contacts/internal/repository/repositorytest"
	"github.com/mtlprog/contacts/internal/service"
)

type fakePinger struct{ err error }

func (p *fakePinger) Ping(context.Context) error { return p.err }

type HandlerTestSuite struct {
	suite.Suite
	repo   *repositorytest.MemoryContactRepository
	pinger *fakePinger
	mux    *http.ServeMux
}

func (s *HandlerTestSuite) SetupTest() {
	s.repo = repositorytest.NewMemoryContactRepository()
	s.pinger = &fakePinger{}

	h := handler.New(service.NewContactService(s.repo), s.pinger)
	s.mux = http.NewServeMux()
	h.RegisterRoutes(s.mux)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

// Helper to make a request against the registered routes
func (s *HandlerTestSuite) makeRequest(method, path string, body interface{}) *httptest.ResponseRecorder {
	var bodyReader *bytes.Reader
	switch b := body.(type) {
	case nil:
		bodyReader = bytes.NewReader([]byte{})
	case string:
		bodyReader = bytes.NewReader([]byte(b))
	default:
		bodyBytes, _ := json.Marshal(b)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) createContact(first, last, email string) dto.ContactResponse {
	w := s.makeRequest("POST", "/api/v1/contacts", dto.ContactRequest{
		FirstName: first,
		LastName:  last,
		Email:     email,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp dto.ContactResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func (s *HandlerTestSuite) decodeError(w *httptest.ResponseRecorder) dto.ErrorResponse {
	var errResp dto.ErrorResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&errResp))
	return errResp
}

func (s *HandlerTestSuite) TestCreateContact() {
	w := s.makeRequest("POST", "/api/v1/contacts", dto.ContactRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "Ada@Example.com",
		Phone:     "+44 20 7946 0000",
	})

	s.Equal(http.StatusCreated, w.Code)

	var resp dto.ContactResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.Equal("ada@example.com", resp.Email)
	s.Equal("Ada Lovelace", resp.FullName)
	s.Equal("/api/v1/contacts/"+resp.ID, w.Header().Get("Location"))
	s.Equal(1, s.repo.Len())
}

func (s *HandlerTestSuite) TestCreateContact_ValidationError() {
	w := s.makeRequest("POST", "/api/v1/contacts", dto.ContactRequest{
		FirstName: "",
		Email:     "not-an-email",
	})

	s.Equal(http.StatusUnprocessableEntity, w.Code)
	errResp := s.decodeError(w)
	s.Equal("VALIDATION_ERROR", errResp.Error.Code)
	s.Contains(errResp.Error.Message, "first_name is required")
	s.Contains(errResp.Error.Message, "email must be a valid email address")
}

func (s *HandlerTestSuite) TestCreateContact_InvalidJSON() {
	w := s.makeRequest("POST", "/api/v1/contacts", `{"first_name": `)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("INVALID_JSON", s.decodeError(w).Error.Code)
}

func (s *HandlerTestSuite) TestCreateContact_UnknownField() {
	w := s.makeRequest("POST", "/api/v1/contacts", `{"first_name":"Ada","email":"ada@example.com","age":36}`)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("INVALID_JSON", s.decodeError(w).Error.Code)
}

func (s *HandlerTestSuite) TestCreateContact_DuplicateEmail() {
	s.createContact("Ada", "Lovelace", "ada@example.com")

	w := s.makeRequest("POST", "/api/v1/contacts", dto.ContactRequest{FirstName: "Other", Email: "ada@example.com"})

	s.Equal(http.StatusConflict, w.Code)
	s.Equal("CONTACT_EXISTS", s.decodeError(w).Error.Code)
}

func (s *HandlerTestSuite) TestGetContact() {
	created := s.createContact("Grace", "Hopper", "grace@example.com")

	w := s.makeRequest("GET", "/api/v1/contacts/"+created.ID, nil)

	s.Equal(http.StatusOK, w.Code)
	var resp dto.ContactResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.Equal(created.ID, resp.ID)
	s.Equal("grace@example.com", resp.Email)
}

func (s *HandlerTestSuite) TestGetContact_NotFound() {
	w := s.makeRequest("GET", "/api/v1/contacts/"+uuid.NewString(), nil)

	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("CONTACT_NOT_FOUND", s.decodeError(w).Error.Code)
}

func (s *HandlerTestSuite) TestGetContact_InvalidID() {
	w := s.makeRequest("GET", "/api/v1/contacts/not-a-uuid", nil)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("INVALID_REQUEST", s.decodeError(w).Error.Code)
}

func (s *HandlerTestSuite) TestUpdateContact() {
	created := s.createContact("Alan", "Turing", "alan@example.com")

	w := s.makeRequest("PUT", "/api/v1/contacts/"+created.ID, dto.ContactRequest{
		FirstName: "Alan",
		LastName:  "Turing",
		Email:     "alan@example.com",
		Company:   "Bletchley Park",
	})

	s.Equal(http.StatusOK, w.Code)
	var resp dto.ContactResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.Equal("Bletchley Park", resp.Company)
	s.True(resp.CreatedAt.Equal(created.CreatedAt))
}

func (s *HandlerTestSuite) TestUpdateContact_NotFound() {
	w := s.makeRequest("PUT", "/api/v1/contacts/"+uuid.NewString(), dto.ContactRequest{
		FirstName: "Nobody",
		Email:     "nobody@example.com",
	})

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestDeleteContact() {
	created := s.createContact("Alan", "Turing", "alan@example.com")

	w := s.makeRequest("DELETE", "/api/v1/contacts/"+created.ID, nil)
	s.Equal(http.StatusNoContent, w.Code)
	s.Equal(0, s.repo.Len())

	w = s.makeRequest("DELETE", "/api/v1/contacts/"+created.ID, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestListContacts() {
	s.createContact("Zed", "Adams", "zed@example.com")
	s.createContact("Amy", "Brown", "amy@example.com")
	s.createContact("Bob", "Brown", "bob@other.org")

	w := s.makeRequest("GET", "/api/v1/contacts?search=brown&limit=1&offset=1", nil)

	s.Equal(http.StatusOK, w.Code)
	var resp dto.ContactsListResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.Equal(2, resp.Total)
	s.Equal(1, resp.Limit)
	s.Equal(1, resp.Offset)
	s.Require().Len(resp.Contacts, 1)
	s.Equal("Bob", resp.Contacts[0].FirstName)
}

func (s *HandlerTestSuite) TestListContacts_EmptyIsArray() {
	w := s.makeRequest("GET", "/api/v1/contacts", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"contacts":[]`)
	s.Contains(w.Body.String(), `"limit":50`)
}

func (s *HandlerTestSuite) TestListContacts_BadQuery() {
	for _, q := range []string{"limit=0", "limit=abc", "offset=-1"} {
		w := s.makeRequest("GET", "/api/v1/contacts?"+q, nil)
		s.Equal(http.StatusBadRequest, w.Code, q)
	}
}

func (s *HandlerTestSuite) TestListContacts_StorageFailure() {
	s.repo.Err = errors.New("connection reset")

	w := s.makeRequest("GET", "/api/v1/contacts", nil)

	s.Equal(http.StatusInternalServerError, w.Code)
	errResp := s.decodeError(w)
	s.Equal("INTERNAL_ERROR", errResp.Error.Code)
	s.NotContains(errResp.Error.Message, "connection reset")
}

func (s *HandlerTestSuite) TestHealthz() {
	w := s.makeRequest("GET", "/healthz", nil)
	s.Equal(http.StatusOK, w.Code)

	s.pinger.err = errors.New("no reachable servers")
	w = s.makeRequest("GET", "/healthz", nil)
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *HandlerTestSuite) TestIndex() {
	w := s.makeRequest("GET", "/", nil)

	s.Equal(http.StatusOK, w.Code)
	s.True(strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	s.Contains(w.Body.String(), "/api/v1/contacts")

	w = s.makeRequest("GET", "/unknown", nil)
	s.Equal(http.StatusNotFound, w.Code)
}
