package auth

import (
	"context"
	"testing"
	"time"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository/memory"
)

func newUseCase() *UseCase {
	return New(memory.NewUserRepository(), memory.NewSessionRepository(), "test-secret", time.Hour, nil)
}

func TestSignUpAndResolve(t *testing.T) {
	uc := newUseCase()
	ctx := context.Background()

	user, token, err := uc.SignUp(ctx, "Alice@Example.com", "Alice", "correct horse")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email=%q, want lowercased", user.Email)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	session, err := uc.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if session.UserID != user.ID {
		t.Fatalf("resolved user=%q, want %q", session.UserID, user.ID)
	}
}

func TestSignUp_Validation(t *testing.T) {
	uc := newUseCase()
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		userName string
		password string
	}{
		{"missing email", "", "Alice", "long enough"},
		{"malformed email", "not-an-email", "Alice", "long enough"},
		{"missing name", "a@b.com", "  ", "long enough"},
		{"short password", "a@b.com", "Alice", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := uc.SignUp(ctx, tc.email, tc.userName, tc.password); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
				t.Fatalf("err=%v, want validation error", err)
			}
		})
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	uc := newUseCase()
	ctx := context.Background()

	if _, _, err := uc.SignUp(ctx, "a@b.com", "Alice", "long enough"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, _, err := uc.SignUp(ctx, "A@B.com", "Other", "long enough"); !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatalf("err=%v, want conflict", err)
	}
}

func TestSignIn(t *testing.T) {
	uc := newUseCase()
	ctx := context.Background()

	if _, _, err := uc.SignUp(ctx, "a@b.com", "Alice", "correct horse"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	user, token, err := uc.SignIn(ctx, "a@b.com", "correct horse")
	if err != nil {
		t.Fatalf("signin: %v", err)
	}
	if token == "" || user == nil {
		t.Fatal("expected user and token")
	}

	// Wrong password and unknown account produce the same error.
	if _, _, err := uc.SignIn(ctx, "a@b.com", "wrong password"); !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		t.Fatalf("wrong password err=%v, want unauthorized", err)
	}
	if _, _, err := uc.SignIn(ctx, "nobody@b.com", "correct horse"); !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		t.Fatalf("unknown account err=%v, want unauthorized", err)
	}
}

func TestSignOut_RevokesSession(t *testing.T) {
	uc := newUseCase()
	ctx := context.Background()

	_, token, err := uc.SignUp(ctx, "a@b.com", "Alice", "correct horse")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	session, err := uc.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := uc.SignOut(ctx, session.ID); err != nil {
		t.Fatalf("signout: %v", err)
	}
	if _, err := uc.Resolve(ctx, token); !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		t.Fatalf("resolve after signout err=%v, want unauthorized", err)
	}
}

func TestResolve_RejectsGarbageAndForeignTokens(t *testing.T) {
	uc := newUseCase()
	ctx := context.Background()

	if _, err := uc.Resolve(ctx, "not-a-jwt"); !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		t.Fatalf("garbage err=%v, want unauthorized", err)
	}

	// A token signed with a different secret must not resolve.
	other := New(memory.NewUserRepository(), memory.NewSessionRepository(), "other-secret", time.Hour, nil)
	_, token, err := other.SignUp(ctx, "a@b.com", "Alice", "correct horse")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := uc.Resolve(ctx, token); !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		t.Fatalf("foreign token err=%v, want unauthorized", err)
	}
}

func TestRefresh_ExtendsSession(t *testing.T) {
	uc := newUseCase()
	ctx := context.Background()

	_, token, err := uc.SignUp(ctx, "a@b.com", "Alice", "correct horse")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	session, err := uc.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	refreshed, err := uc.Refresh(ctx, session.ID)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := uc.Resolve(ctx, refreshed); err != nil {
		t.Fatalf("resolve refreshed token: %v", err)
	}

	if _, err := uc.Refresh(ctx, "no-such-session"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("refresh unknown err=%v, want not found", err)
	}
}
