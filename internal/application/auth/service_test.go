package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	authpkg "github.com/medicare-ai/aidoctor-backend/internal/auth"
	"github.com/medicare-ai/aidoctor-backend/internal/domain/users"
)

type memRepo struct {
	byEmail map[string]*users.User
	byID    map[string]*users.User
	nextID  int
}

func newMemRepo() *memRepo {
	return &memRepo{byEmail: map[string]*users.User{}, byID: map[string]*users.User{}}
}

func (m *memRepo) Insert(ctx context.Context, u *users.User) (string, error) {
	m.nextID++
	id := fmt.Sprintf("user-%d", m.nextID)
	cp := *u
	cp.ID = id
	m.byEmail[cp.Email] = &cp
	m.byID[id] = &cp
	return id, nil
}

func (m *memRepo) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, users.ErrNotFound
}

func (m *memRepo) FindByID(ctx context.Context, id string) (*users.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, users.ErrNotFound
}

func TestSignupLoginRoundTrip(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, "secret")
	ctx := context.Background()

	signupToken, err := svc.Signup(ctx, "Ada", "ada@example.com", "pw123456")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	signedUpID, err := svc.VerifyToken(signupToken)
	if err != nil {
		t.Fatalf("verify signup token: %v", err)
	}

	loginToken, err := svc.Login(ctx, "ada@example.com", "pw123456")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	loggedInID, err := svc.VerifyToken(loginToken)
	if err != nil {
		t.Fatalf("verify login token: %v", err)
	}

	if signedUpID != loggedInID {
		t.Fatalf("tokens resolve to different users: %s vs %s", signedUpID, loggedInID)
	}

	u, err := svc.ResolveUser(ctx, loginToken)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Fatalf("resolved wrong user: %s", u.Email)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := NewService(newMemRepo(), "secret")
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Ada", "ada@example.com", "pw"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	_, err := svc.Signup(ctx, "Other", "ada@example.com", "pw2")
	if !errors.Is(err, users.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewService(newMemRepo(), "secret")
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Ada", "ada@example.com", "right"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Login(ctx, "ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestResolveUserDeletedAccount(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, "secret")
	ctx := context.Background()

	token, err := svc.Signup(ctx, "Ada", "ada@example.com", "pw")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	// account removed out of band
	repo.byID = map[string]*users.User{}

	if _, err := svc.ResolveUser(ctx, token); !errors.Is(err, authpkg.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for missing user, got %v", err)
	}
}
