package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/username/claimfolio/src/models"
)

// AuthService signs and verifies the actor tokens the CLI runs claims with.
type AuthService struct {
	JWTSecret   string
	TokenExpiry time.Duration
}

func NewAuthService(secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		JWTSecret:   secret,
		TokenExpiry: expiry,
	}
}

func (a *AuthService) GenerateActorToken(actor models.Actor) (string, error) {
	if a.JWTSecret == "" {
		return "", errors.New("jwt secret not configured")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":        strconv.FormatInt(actor.UserID, 10),
		"role":       string(actor.Role),
		"company_id": actor.CompanyID,
		"exp":        now.Add(a.TokenExpiry).Unix(),
		"iat":        now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.JWTSecret))
}

func (a *AuthService) ParseActorToken(tokenString string) (models.Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.JWTSecret), nil
	})
	if err != nil {
		return models.Actor{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Actor{}, errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return models.Actor{}, errors.New("invalid token: 'sub' claim missing or not a string")
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return models.Actor{}, fmt.Errorf("invalid token: 'sub' claim is not a user id: %w", err)
	}
	role, _ := claims["role"].(string)
	// JSON numbers decode as float64.
	companyID, _ := claims["company_id"].(float64)

	return models.Actor{
		UserID:    userID,
		Role:      models.ParseRole(role),
		CompanyID: int64(companyID),
	}, nil
}
