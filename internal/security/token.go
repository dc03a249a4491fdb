package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"runhub/internal/domain"
)

// ErrMissingSubject is returned for a valid token that names no user.
var ErrMissingSubject = errors.New("token has no subject")

// TokenService wraps JWT creation and validation.
type TokenService struct {
	secret    []byte
	expiresIn time.Duration
}

func NewTokenService(secret string, expiresIn time.Duration) *TokenService {
	return &TokenService{
		secret:    []byte(secret),
		expiresIn: expiresIn,
	}
}

// CreateForCaller creates a JWT for the given caller using the default TTL.
func (t *TokenService) CreateForCaller(c domain.Caller) (string, error) {
	return t.CreateWithTTL(c, t.expiresIn)
}

// CreateWithTTL creates a JWT for the given caller with an explicit TTL.
func (t *TokenService) CreateWithTTL(c domain.Caller, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": c.Username,
		"uid": c.UserID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates a token and returns its claims.
func (t *TokenService) Parse(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		return claims, nil
	}
	return nil, jwt.ErrTokenMalformed
}

// Caller validates a token and returns the identity it carries.
func (t *TokenService) Caller(tokenStr string) (domain.Caller, error) {
	claims, err := t.Parse(tokenStr)
	if err != nil {
		return domain.Caller{}, err
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return domain.Caller{}, ErrMissingSubject
	}
	uid, _ := claims["uid"].(string)
	return domain.Caller{UserID: uid, Username: sub}, nil
}
