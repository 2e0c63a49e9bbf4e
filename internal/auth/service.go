package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/baitursagynbekov3-stack/Kvantum/internal/chat"
	"github.com/baitursagynbekov3-stack/Kvantum/pkg/logging"
)

const (
	tokenTTL        = 7 * 24 * time.Hour
	minPasswordLen  = 6
	bcryptCost      = bcrypt.DefaultCost
	invalidCredsMsg = "Invalid credentials"
)

var (
	// ErrInvalidCredentials is returned for a wrong email/password pair and
	// deliberately does not say which half was wrong.
	ErrInvalidCredentials = errors.New(invalidCredsMsg)
	// ErrInvalid wraps request validation failures.
	ErrInvalid = errors.New("auth: invalid request")
)

// Claims is the JWT payload issued on register and login.
type Claims struct {
	UserID uuid.UUID `json:"id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	jwt.RegisteredClaims
}

// Service implements account registration, login, password reset and
// profile lookup.
type Service struct {
	repo   *Repository
	secret []byte
	log    *logging.Logger
}

func NewService(repo *Repository, jwtSecret string, log *logging.Logger) *Service {
	return &Service{repo: repo, secret: []byte(jwtSecret), log: log}
}

// AuthResponse pairs the stored user with a fresh token.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Register creates an account and signs the user in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !chat.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalid)
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalid, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, &User{
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", user.ID)

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, Token: token}, nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks the password and returns a fresh token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repo.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, Token: token}, nil
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword verifies account ownership by matching the phone on file,
// digits only, then replaces the password.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if len(req.NewPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalid, minPasswordLen)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repo.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if digitsOnly(user.Phone) == "" || digitsOnly(user.Phone) != digitsOnly(req.Phone) {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	s.log.Info("password reset", "user_id", user.ID)
	return nil
}

// Profile returns the account for a verified token.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.repo.ByID(ctx, userID)
}

// IssueToken signs a 7-day token for the user.
func (s *Service) IssueToken(u *User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a bearer token.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
