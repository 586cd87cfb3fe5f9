package auth

import (
	"context"
	"errors"
	"fmt"

	jwt "github.com/golang-jwt/jwt/v5"

	"catering/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

type requesterKey struct{}

// WithRequester stores the authenticated requester in context.
func WithRequester(ctx context.Context, r domain.Requester) context.Context {
	return context.WithValue(ctx, requesterKey{}, r)
}

// RequesterFromContext retrieves the requester from context (if any).
func RequesterFromContext(ctx context.Context) (domain.Requester, bool) {
	r, ok := ctx.Value(requesterKey{}).(domain.Requester)
	return r, ok
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
	UserID uint `json:"userId"`
}

// ParseToken validates a signed JWT and extracts the requester identity.
func ParseToken(tokenStr string, secret string) (domain.Requester, error) {
	if secret == "" {
		return domain.Requester{}, errors.New("jwt secret is empty")
	}

	var c claims
	token, err := jwt.ParseWithClaims(tokenStr, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return domain.Requester{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return domain.Requester{}, ErrInvalidToken
	}

	role := domain.Role(c.Role)
	if !role.IsValid() {
		return domain.Requester{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, c.Role)
	}
	if c.UserID == 0 {
		return domain.Requester{}, fmt.Errorf("%w: missing userId claim", ErrInvalidToken)
	}

	return domain.Requester{ID: c.UserID, Role: role}, nil
}
