package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

const minPasswordLength = 8

// UseCase owns sign-up, sign-in and the per-request session lookup. Sessions
// live in Redis; the bearer token is a signed JWT carrying the session id.
type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	secret   []byte
	ttl      time.Duration
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, secret string, ttl time.Duration, logger *zap.Logger) *UseCase {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		secret:   []byte(secret),
		ttl:      ttl,
		logger:   logger,
	}
}

// SignUp registers a new user and opens a session for it.
func (uc *UseCase) SignUp(ctx context.Context, email, name, password string) (*domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)

	if email == "" || !strings.Contains(email, "@") {
		return nil, "", domain.NewError(domain.ErrCodeInvalid, "a valid email is required")
	}
	if name == "" {
		return nil, "", domain.NewError(domain.ErrCodeInvalid, "name must not be empty")
	}
	if len(password) < minPasswordLength {
		return nil, "", domain.NewError(domain.ErrCodeInvalid, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := uc.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	uc.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, token, nil
}

// SignIn verifies credentials and opens a session.
func (uc *UseCase) SignIn(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := uc.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := uc.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// SignOut revokes the caller's session.
func (uc *UseCase) SignOut(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

// Refresh extends the caller's session and returns a token with the new expiry.
func (uc *UseCase) Refresh(ctx context.Context, sessionID string) (string, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(uc.ttl.Seconds())); err != nil {
		return "", err
	}
	session.ExpiresAt = time.Now().Add(uc.ttl)
	return uc.signToken(session)
}

// Resolve implements the per-request session lookup: it parses the bearer
// token, verifies the signature and confirms the session still exists. Any
// failure resolves to no identity.
func (uc *UseCase) Resolve(ctx context.Context, tokenString string) (*domain.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrUnauthorized
		}
		return uc.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	sessionID, _ := claims["session_id"].(string)
	if sessionID == "" {
		return nil, domain.ErrUnauthorized
	}

	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

func (uc *UseCase) openSession(ctx context.Context, userID string) (string, error) {
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(uc.ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return "", err
	}
	return uc.signToken(session)
}

func (uc *UseCase) signToken(session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"session_id": session.ID,
		"user_id":    session.UserID,
		"exp":        session.ExpiresAt.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
}
