package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const studentIDKey = "student_id"

var (
	ErrMissingToken = errors.New("missing or malformed bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// JWTAuth accepts HS256 bearer tokens whose subject is the student's UUID.
func JWTAuth(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(authHeader, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": ErrMissingToken.Error()})
			}
			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			claims := &jwt.RegisteredClaims{}
			token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
				return key, nil
			})
			if err != nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": ErrInvalidToken.Error()})
			}

			studentID, err := uuid.Parse(claims.Subject)
			if err != nil || studentID == uuid.Nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": ErrInvalidToken.Error()})
			}

			c.Set(studentIDKey, studentID)
			return next(c)
		}
	}
}

func StudentID(c echo.Context) (uuid.UUID, bool) {
	studentID, ok := c.Get(studentIDKey).(uuid.UUID)
	return studentID, ok
}
