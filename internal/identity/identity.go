package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const RoleAdmin = "admin"

// Operator is the authenticated till user. The engine only branches on the
// role for discount authorization; everything else about auth lives outside.
type Operator struct {
	ID   uuid.UUID
	Name string
	Role string
}

func (o Operator) IsAdmin() bool { return o.Role == RoleAdmin }

type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
	Role string `json:"role"`
}

func OperatorFromToken(tokenStr string, secret []byte) (*Operator, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}
	return &Operator{ID: userID, Name: claims.Name, Role: claims.Role}, nil
}

// SignToken is used by tests and tooling; the production token comes from the
// auth collaborator.
func SignToken(op Operator, secret []byte) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: op.ID.String()},
		Name:             op.Name,
		Role:             op.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

const contextKey = "operator"

// Middleware resolves the operator from the bearer header or accessToken
// cookie and stores it on the echo context.
func Middleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}
			op, err := OperatorFromToken(raw, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			c.Set(contextKey, op)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if ck, err := c.Cookie("accessToken"); err == nil {
		return ck.Value
	}
	return ""
}

func FromEchoContext(c echo.Context) (*Operator, bool) {
	op, ok := c.Get(contextKey).(*Operator)
	return op, ok
}
