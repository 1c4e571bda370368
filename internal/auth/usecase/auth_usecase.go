package usecase

import (
	"errors"
	"time"

	authdto "searchsync-backend/internal/auth/dto"
	"searchsync-backend/internal/auth/repository"
	"searchsync-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

// AuthUsecase verifies the admin shared secret and issues session tokens
// for the batch-control endpoints
type AuthUsecase interface {
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	ValidateToken(tokenString string) error
}

// authUsecase implements AuthUsecase
type authUsecase struct {
	config *config.Config
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(cfg *config.Config) AuthUsecase {
	return &authUsecase{config: cfg}
}

func (u *authUsecase) Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error) {
	if u.config.AdminSecretHash == "" {
		return nil, errors.New("admin access is not configured")
	}
	if !repository.CheckSecretHash(req.Secret, u.config.AdminSecretHash) {
		return nil, errors.New("invalid admin secret")
	}

	expiresAt := time.Now().Add(u.config.JWTAccessExpiry)
	claims := jwt.MapClaims{
		"role": "admin",
		"exp":  expiresAt.Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(u.config.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &authdto.TokenResponse{
		AccessToken: signed,
		ExpiresAt:   expiresAt.Unix(),
	}, nil
}

func (u *authUsecase) ValidateToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return errors.New("invalid token claims")
	}

	if role, _ := claims["role"].(string); role != "admin" {
		return errors.New("invalid token claims")
	}
	return nil
}
