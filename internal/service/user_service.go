package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"parking-billing/internal/domain"
	"parking-billing/internal/repository"
)

// ErrInvalidCredentials indicates that provided login credentials are incorrect.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)

// UserService describes account provisioning and caller identity resolution.
type UserService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	IssueToken(ctx context.Context, email, password string) (string, time.Time, error)
	ResolveToken(ctx context.Context, token string) (*domain.User, error)
	ResolveAPIKey(ctx context.Context, apiKey string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	EnsureUser(ctx context.Context, email, apiKey, password string) (*domain.User, error)
}

type userService struct {
	users     repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	now       Clock
}

func NewUserService(users repository.UserRepository, jwtSecret string, tokenTTL time.Duration) UserService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &userService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

func (s *userService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)

	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required: %w", domain.ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters: %w", domain.ErrValidation)
	}

	return s.create(ctx, email, uuid.NewString(), password)
}

// EnsureUser returns the user with email, creating it with the given api key
// and password when it does not exist yet.
func (s *userService) EnsureUser(ctx context.Context, email, apiKey, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return sanitizeUser(user), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if strings.TrimSpace(apiKey) == "" {
		apiKey = uuid.NewString()
	}
	return s.create(ctx, email, apiKey, password)
}

func (s *userService) create(ctx context.Context, email, apiKey, password string) (*domain.User, error) {
	var hash string
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = string(h)
	}

	user := &domain.User{
		Email:        email,
		APIKey:       apiKey,
		PasswordHash: hash,
		Balance:      domain.DefaultBalance,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) IssueToken(ctx context.Context, email, password string) (string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}
	if user.PasswordHash == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *userService) ResolveToken(ctx context.Context, token string) (*domain.User, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid token: %w", domain.ErrUnauthorized)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid token subject: %w", domain.ErrUnauthorized)
	}
	return s.resolve(s.users.GetByID(ctx, id))
}

func (s *userService) ResolveAPIKey(ctx context.Context, apiKey string) (*domain.User, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("api key required: %w", domain.ErrUnauthorized)
	}
	return s.resolve(s.users.GetByAPIKey(ctx, apiKey))
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) resolve(user *domain.User, err error) (*domain.User, error) {
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("unknown credential: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Email:     user.Email,
		APIKey:    user.APIKey,
		Balance:   user.Balance,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
