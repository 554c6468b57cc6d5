package services

import (
	"errors"
	"strconv"
	"time"

	"fortuna/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type CustomClaims struct {
	ExternalID string `json:"external_id"`
	Nickname   string `json:"nickname"`
	jwt.RegisteredClaims
}

type Authentication struct {
	secret string
}

func NewAuthentication(secret string) (*Authentication, error) {
	if secret == "" {
		return nil, errors.New("empty jwt secret")
	}
	return &Authentication{secret}, nil
}

func (authentication *Authentication) CreateToken(user *models.UserFromAuth, ttl time.Duration) (string, error) {
	claims := CustomClaims{
		ExternalID: user.ExternalID,
		Nickname:   user.Nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(authentication.secret))
}

func (authentication *Authentication) Validate(token string) (*models.UserFromAuth, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		return []byte(authentication.secret), nil
	}

	jwtToken, err := jwt.ParseWithClaims(token, &CustomClaims{}, keyFunc, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := jwtToken.Claims.(*CustomClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, errors.New("invalid token subject")
	}

	return &models.UserFromAuth{
		ID:         id,
		ExternalID: claims.ExternalID,
		Nickname:   claims.Nickname,
	}, nil
}
