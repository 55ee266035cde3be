package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cardstore/internal/entity"
)

type UserService struct {
	users     UserStore
	cache     Cache
	jwtSecret []byte
}

func NewUserService(users UserStore, cache Cache, jwtSecret string) *UserService {
	return &UserService{users: users, cache: cache, jwtSecret: []byte(jwtSecret)}
}

type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Register creates a new account. Email is normalized, the password never
// stored in the clear.
func (s *UserService) Register(ctx context.Context, email, password string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		logger.Error().Err(err).Msg("Error creating user")
		return nil, err
	}
	return user, nil
}

// Login validates credentials and hands back a signed session token. The
// token is mirrored in Redis keyed by email so sessions can be inspected and
// revoked server-side.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrInvalidLogin
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidLogin
	}

	claims := &JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 24)),
		},
	}

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := tkn.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	if err := s.cache.Set(ctx, sessionKey(user.Email), token, time.Hour*24); err != nil {
		logger.Error().Err(err).Str("email", user.Email).Msg("Error storing session token")
	}

	return token, user, nil
}

// ValidateSession checks the presented token against the live session stored
// for that email. A missing mirror (revoked or expired server-side) or a
// token other than the live one fails with ErrUserNotFound.
func (s *UserService) ValidateSession(ctx context.Context, email, token string) error {
	live, err := s.cache.Get(ctx, sessionKey(strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return err
	}
	if live == "" || live != token {
		return ErrUserNotFound
	}
	return nil
}

func sessionKey(email string) string {
	return "session:" + email
}
