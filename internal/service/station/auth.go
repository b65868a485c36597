package station

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusradio/server/internal/repository/content"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type LoginParams struct {
	Username string
	Password string
}

type LoginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s service) Login(ctx context.Context, params *LoginParams) (LoginResponse, error) {
	if err := validation.ValidateStruct(params,
		validation.Field(&params.Username, validation.Required),
		validation.Field(&params.Password, validation.Required),
	); err != nil {
		return LoginResponse{}, ErrInvalidCredentials
	}

	user, err := s.store.GetUserByUsername(ctx, params.Username)
	if err != nil {
		if errors.Is(err, content.ErrUserNotFound) {
			return LoginResponse{}, ErrInvalidCredentials
		}

		return LoginResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(params.Password)); err != nil {
		return LoginResponse{}, ErrInvalidCredentials
	}

	expiresAt := s.now().Add(s.tokenTTL)
	token, err := s.generateJWT(user.Username, user.Role, expiresAt)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("failed to generate token: %w", err)
	}

	return LoginResponse{
		Token:     token,
		Role:      user.Role,
		ExpiresAt: expiresAt,
	}, nil
}

func (s service) generateJWT(username, role string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  username,
		"role": role,
		"iat":  s.now().Unix(),
		"exp":  expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(s.secret)
}

func (s service) ParseToken(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	username, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if username == "" || validation.Validate(role, RoleRule...) != nil {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		Username: username,
		Role:     role,
	}, nil
}

// Authorize reports whether claims grant requiredRole. Admins hold every role.
func (s service) Authorize(claims Claims, requiredRole string) error {
	if claims.Role == RoleAdmin || claims.Role == requiredRole {
		return nil
	}

	return ErrPermissionDenied
}
