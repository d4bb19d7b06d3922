package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/cfmconsole/cfm/internal/apperr"
	"github.com/cfmconsole/cfm/internal/model"
	"github.com/cfmconsole/cfm/internal/repository"
	"github.com/cfmconsole/cfm/internal/validation"
)

var ErrInvalidCredentials = apperr.New(apperr.KindUnauthorized, "invalid email or password")

type AuthService struct {
	users     repository.UserRepository
	jwtSecret string
	jwtExpiry time.Duration
	now       func() time.Time
}

func NewAuthService(users repository.UserRepository, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		now:       time.Now,
	}
}

// Login checks the credentials and returns a signed token for the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, apperr.Validation("email and password are required")
	}

	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, apperr.Storage("failed to load user", err)
	}

	if err := s.ComparePassword(password, user.PasswordHash); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, apperr.New(apperr.KindForbidden, "account is disabled")
	}

	token, err := s.GenerateJWT(user)
	if err != nil {
		return "", nil, apperr.Storage("failed to issue token", err)
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		slog.Warn("failed to record last login", "error", err, "user_id", user.ID)
	} else {
		user.LastLoginAt = &now
	}
	return token, user, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     now.Add(s.jwtExpiry).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// Identify resolves a bearer token to the caller. The role is read from the
// user record so that demotions and deactivations apply immediately.
func (s *AuthService) Identify(ctx context.Context, tokenString string) (*model.Identity, error) {
	claims, err := s.VerifyJWT(tokenString)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "invalid or expired token", err)
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid or expired token")
	}

	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.New(apperr.KindUnauthorized, "user no longer exists")
		}
		return nil, apperr.Storage("failed to load user", err)
	}
	if !user.IsActive {
		return nil, apperr.New(apperr.KindForbidden, "account is disabled")
	}

	return &model.Identity{UserID: user.ID, Role: user.Role}, nil
}
