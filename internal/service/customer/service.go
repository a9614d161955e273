package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"customer-addressbook/internal/domain"
	"customer-addressbook/internal/logger"
	custrepo "customer-addressbook/internal/repository/customer"
	"customer-addressbook/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when email/password do not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service handles customer registration and login.
type Service struct {
	repo        custrepo.Repository
	logger      *slog.Logger
	passwordMin int
	cost        int
}

// Option customizes a Service.
type Option func(*Service)

// WithBcryptCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// New creates a Service with sane defaults.
func New(repo custrepo.Repository, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.Discard()
	}
	s := &Service{
		repo:        repo,
		logger:      log,
		passwordMin: 8,
		cost:        bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput captures the account creation form.
type RegisterInput struct {
	Email     string `form:"email" validate:"required,email,max=255"`
	Password  string `form:"password" validate:"required,max=72"`
	FirstName string `form:"firstname" validate:"required,max=255"`
	LastName  string `form:"lastname" validate:"required,max=255"`
}

var registerLabels = map[string]string{
	"email":     "Email",
	"password":  "Password",
	"firstname": "First Name",
	"lastname":  "Last Name",
}

// Register creates a customer account without addresses.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.Customer, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Password = strings.TrimSpace(in.Password)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	inputErr := domain.NewInputError()
	if err := validation.Struct(in, registerLabels); err != nil {
		if !errors.As(err, &inputErr) {
			return nil, err
		}
	}
	if in.Password != "" && !hasFieldError(inputErr, "password") {
		if err := validatePassword(in.Password, s.passwordMin); err != nil {
			inputErr.Add("password", fmt.Sprintf("%q %s.", registerLabels["password"], err.Error()))
		}
	}
	if inputErr.HasErrors() {
		return nil, inputErr
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	c, err := s.repo.Create(ctx, domain.Customer{
		Email:        in.Email,
		PasswordHash: string(hashed),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "customer registered", slog.String("customer_id", c.ID))
	return c, nil
}

// Login validates credentials and returns the customer.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.Customer, error) {
	password = strings.TrimSpace(password)
	c, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return c, nil
}

// HashPassword hashes a plain password with the service cost.
func (s *Service) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

func validatePassword(p string, min int) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < min {
		return fmt.Errorf("must be at least %d characters", min)
	}
	if len(trimmed) > maxPasswordBytes {
		return fmt.Errorf("cannot be longer than %d bytes", maxPasswordBytes)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}

func hasFieldError(e *domain.InputError, field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}
