package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mtlprog/contacts/internal/domain"
	"github.com/mtlprog/contacts/internal/repository"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{2,31}$`)

// ContactInput carries the user-editable fields of a contact.
type ContactInput struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Email     string `json:"email" validate:"required,max=254,email"`
	Phone     string `json:"phone" validate:"omitempty,max=32,phone"`
	Company   string `json:"company" validate:"max=200"`
	Notes     string `json:"notes" validate:"max=2000"`
}

// normalize trims whitespace and lower-cases the email.
func (in ContactInput) normalize() ContactInput {
	return ContactInput{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     strings.TrimSpace(in.Phone),
		Company:   strings.TrimSpace(in.Company),
		Notes:     strings.TrimSpace(in.Notes),
	}
}

// ContactService coordinates contact validation and persistence.
type ContactService struct {
	repo     repository.ContactRepository
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

// NewContactService creates a new ContactService.
func NewContactService(repo repository.ContactRepository) *ContactService {
	return &ContactService{
		repo:     repo,
		validate: newValidator(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// timestamp returns the current time at the precision every store keeps.
func (s *ContactService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Create validates input and stores a new contact.
func (s *ContactService) Create(ctx context.Context, in ContactInput) (*domain.Contact, error) {
	in = in.normalize()
	if err := s.check(in); err != nil {
		return nil, err
	}

	now := s.timestamp()
	contact := &domain.Contact{
		ID:        s.newID(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Company:   in.Company,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, err
	}

	slog.Info("contact created", "contact_id", contact.ID)

	return contact, nil
}

// Get returns a contact by ID.
func (s *ContactService) Get(ctx context.Context, id string) (*domain.Contact, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// List returns a page of contacts and the total number of matches.
func (s *ContactService) List(ctx context.Context, filter domain.ContactFilter) ([]*domain.Contact, int, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.List(ctx, filter.Normalize())
}

// Update replaces the editable fields of an existing contact.
func (s *ContactService) Update(ctx context.Context, id string, in ContactInput) (*domain.Contact, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	in = in.normalize()
	if err := s.check(in); err != nil {
		return nil, err
	}

	contact, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	contact.FirstName = in.FirstName
	contact.LastName = in.LastName
	contact.Email = in.Email
	contact.Phone = in.Phone
	contact.Company = in.Company
	contact.Notes = in.Notes
	contact.UpdatedAt = s.timestamp()

	if err := s.repo.Update(ctx, contact); err != nil {
		return nil, err
	}

	slog.Info("contact updated", "contact_id", contact.ID)

	return contact, nil
}

// Delete removes a contact.
func (s *ContactService) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("contact deleted", "contact_id", id)

	return nil
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q is not a valid UUID", domain.ErrInvalidID, id)
	}
	return nil
}

// check runs struct validation and folds field errors into ErrInvalidContact.
func (s *ContactService) check(in ContactInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate contact: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidContact, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return fe.Field() + " must be a valid email address"
	case "phone":
		return fe.Field() + " must contain only digits, spaces, parentheses, dashes and an optional leading +"
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
