package identity

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"asrama/internal/domain"
	"asrama/internal/repository"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrInactiveUser = errors.New("user is inactive")
)

// Service resolves bearer tokens issued by the campus login service into
// users. Token issuance lives outside this system.
type Service interface {
	ValidateAccessToken(token string) (*Claims, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type Claims struct {
	UserID uuid.UUID  `json:"user_id"`
	Role   string     `json:"role"`
	DormID *uuid.UUID `json:"dorm_id,omitempty"`
	jwt.RegisteredClaims
}

type service struct {
	userRepo repository.UserRepository
	secret   []byte
	issuer   string
}

func NewService(userRepo repository.UserRepository, secret, issuer string) Service {
	return &service{
		userRepo: userRepo,
		secret:   []byte(secret),
		issuer:   issuer,
	}
}

func (s *service) ValidateAccessToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GetUserByID returns the stored user. Role and dorm always come from the
// database row, never from the token.
func (s *service) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive || user.DeletedAt != nil {
		return nil, ErrInactiveUser
	}
	return user, nil
}
