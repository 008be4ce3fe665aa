package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rohitkotecha14/sellscale-challenge/internal/apperr"
	"github.com/rohitkotecha14/sellscale-challenge/internal/models"
)

// UserStore is the slice of persistence the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService handles registration, credential checks and session tokens.
// Session tokens are short-lived signed JWTs carried in an HttpOnly cookie;
// the raw username never travels in the cookie.
type AuthService struct {
	store  UserStore
	secret []byte
	ttl    time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(store UserStore, secret string, ttl time.Duration) *AuthService {
	return &AuthService{store: store, secret: []byte(secret), ttl: ttl}
}

// SessionTTL returns the configured session lifetime.
func (s *AuthService) SessionTTL() time.Duration { return s.ttl }

// Register creates a new user with a hashed password. Duplicate username and
// email checks are left to the store's unique constraints, so two concurrent
// registrations cannot both pass a lookup.
func (s *AuthService) Register(ctx context.Context, username, email, firstName, lastName, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return nil, apperr.Validation("username cannot be empty")
	}
	if !strings.Contains(email, "@") {
		return nil, apperr.Validation("invalid email")
	}
	if firstName == "" || lastName == "" {
		return nil, apperr.Validation("first and last name are required")
	}
	if password == "" {
		return nil, apperr.Validation("password cannot be empty")
	}
	if len(password) > 72 {
		return nil, apperr.Validation("password too long (max 72 characters)")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
	}
	return s.store.CreateUser(ctx, u)
}

// Login verifies credentials and issues a session token. Any failure collapses
// to ErrInvalidCredentials so callers cannot probe which part was wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return "", apperr.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperr.ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// ParseSessionToken validates a session token and returns the username it was
// issued for. Expired or tampered tokens fail here regardless of the cookie's
// own max-age.
func (s *AuthService) ParseSessionToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", apperr.ErrNotAuthenticated
	}
	if claims.Subject == "" {
		return "", apperr.ErrNotAuthenticated
	}
	return claims.Subject, nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
