package auth

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// GuardianClaims represents the claims in a guardian bearer token.
type GuardianClaims struct {
	GuardianID string `json:"guardian_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// ContextKeyGuardianID is the echo context key the middleware stores the
// authenticated guardian under.
const ContextKeyGuardianID = "guardian_id"

var errMissingToken = errors.New("missing bearer token")

// SecretFromEnv loads the signing secret from JWT_SECRET. An empty secret
// disables authentication; the caller decides whether that is acceptable.
func SecretFromEnv() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return nil
}

// GenerateGuardianToken generates a signed token for guardian authentication.
func GenerateGuardianToken(secret []byte, guardianID string) (string, error) {
	claims := &GuardianClaims{
		GuardianID: guardianID,
		Role:       "guardian",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates a guardian token and returns its claims.
func ValidateToken(secret []byte, tokenString string) (*GuardianClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &GuardianClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*GuardianClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}

// Middleware returns an echo middleware that requires a valid guardian
// bearer token and stores the guardian ID on the request context.
func Middleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c.Request())
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			claims, err := ValidateToken(secret, tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(ContextKeyGuardianID, claims.GuardianID)
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", errMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", errMissingToken
	}
	return parts[1], nil
}
