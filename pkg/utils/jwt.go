package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var secretKey []byte

func SetSecret(key string) {
	secretKey = []byte(key)
}

// TokenClaims is what the storefront carries inside an access token.
type TokenClaims struct {
	UserID    string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// GenerateJWT signs an HS256 token and returns it with its id and expiry.
func GenerateJWT(userID, email string, expiry time.Duration) (token string, claims TokenClaims, err error) {
	if len(secretKey) == 0 {
		return "", TokenClaims{}, fmt.Errorf("jwt secret not set")
	}

	now := time.Now()
	claims = TokenClaims{
		UserID:    userID,
		Email:     email,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(expiry).Truncate(time.Second),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   claims.UserID,
		"email": claims.Email,
		"jti":   claims.TokenID,
		"iat":   now.Unix(),
		"exp":   claims.ExpiresAt.Unix(),
	})

	token, err = t.SignedString(secretKey)
	if err != nil {
		return "", TokenClaims{}, err
	}
	return token, claims, nil
}

func ValidateJWT(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	sub, _ := mapClaims["sub"].(string)
	email, _ := mapClaims["email"].(string)
	jti, _ := mapClaims["jti"].(string)
	if sub == "" {
		return nil, errors.New("token has no subject")
	}

	claims := &TokenClaims{UserID: sub, Email: email, TokenID: jti}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

// TokenFromRequest reads a bearer token from the Authorization header or the accessToken cookie.
func TokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := r.Cookie("accessToken"); err == nil {
		return cookie.Value
	}
	return ""
}

// ExtractClaims extracts JWT claims from the request header or cookie
func ExtractClaims(r *http.Request) (*TokenClaims, error) {
	tokenString := TokenFromRequest(r)
	if tokenString == "" {
		return nil, fmt.Errorf("no token found")
	}
	return ValidateJWT(tokenString)
}
