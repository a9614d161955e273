package customer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"customer-addressbook/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// memoryRepo is a lightweight in-memory customer repository for tests.
type memoryRepo struct {
	byEmail map[string]domain.Customer
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byEmail: make(map[string]domain.Customer)}
}

func (r *memoryRepo) Create(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	if _, exists := r.byEmail[c.Email]; exists {
		return nil, domain.ErrAlreadyExists
	}
	clone := c
	if clone.ID == "" {
		clone.ID = "cust-" + c.Email
	}
	r.byEmail[clone.Email] = clone
	return &clone, nil
}

func (r *memoryRepo) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	if c, ok := r.byEmail[strings.ToLower(email)]; ok {
		clone := c
		return &clone, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	for _, c := range r.byEmail {
		if c.ID == id {
			clone := c
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) Save(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	r.byEmail[c.Email] = c
	return &c, nil
}

func newTestService(repo *memoryRepo) *Service {
	return New(repo, nil, WithBcryptCost(bcrypt.MinCost))
}

func TestRegisterAndLogin_SucceedsWithTrimmedPassword(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	customer, err := svc.Register(ctx, RegisterInput{
		Email:     "User@Example.com",
		Password:  " Abcdefg1 ",
		FirstName: "T",
		LastName:  "User",
	})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if customer == nil || customer.Email != "user@example.com" {
		t.Fatalf("unexpected customer %+v", customer)
	}

	if _, err := svc.Login(ctx, "user@example.com", "Abcdefg1"); err != nil {
		t.Fatalf("login failed with trimmed password: %v", err)
	}
}

func TestRegister_ReportsEveryInvalidField(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.Register(context.Background(), RegisterInput{Email: "not-an-email", Password: "short"})

	var inputErr *domain.InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected InputError, got %v", err)
	}
	fields := map[string]bool{}
	for _, fe := range inputErr.Errors {
		fields[fe.Field] = true
	}
	for _, want := range []string{"email", "password", "firstname", "lastname"} {
		if !fields[want] {
			t.Fatalf("expected error on %s, got %+v", want, inputErr.Errors)
		}
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()
	in := RegisterInput{Email: "dup@example.com", Password: "Abcdefg1", FirstName: "D", LastName: "Up"}

	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, in); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestValidatePassword_FailsOnWeakValues(t *testing.T) {
	cases := []struct {
		name string
		pass string
	}{
		{"too short", "Abc1"},
		{"no upper", "abcdefg1"},
		{"no lower", "ABCDEFG1"},
		{"no digit", "Abcdefgh"},
	}
	for _, tc := range cases {
		if err := validatePassword(tc.pass, 8); err == nil {
			t.Fatalf("expected error for case %s", tc.name)
		}
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{
		Email:     "user@example.com",
		Password:  "Abcdefg1",
		FirstName: "T",
		LastName:  "User",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "user@example.com", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "missing@example.com", "Abcdefg1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for missing user, got %v", err)
	}
}

func TestRegister_RejectsPasswordsBcryptCannotHash(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	cases := map[string]string{
		"ascii over 72":     "Aa1" + strings.Repeat("x", 70),
		"multibyte over 72": "Aa1" + strings.Repeat("é", 40),
	}
	for name, password := range cases {
		_, err := svc.Register(context.Background(), RegisterInput{
			Email:     "long@example.com",
			Password:  password,
			FirstName: "Long",
			LastName:  "Password",
		})

		var inputErr *domain.InputError
		if !errors.As(err, &inputErr) {
			t.Fatalf("%s: expected InputError, got %v", name, err)
		}
		if len(inputErr.Errors) != 1 || inputErr.Errors[0].Field != "password" {
			t.Fatalf("%s: expected one password error, got %+v", name, inputErr.Errors)
		}
	}
}
