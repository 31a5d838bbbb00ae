package middleware

import (
	"context"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"gamebit/pkg/errors"
	"gamebit/pkg/response"
)

// TokenVerifier is the slice of the Firebase auth client the
// middleware needs. Satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type AuthMiddleware struct {
	authClient TokenVerifier
}

func NewAuthMiddleware(authClient TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		authClient: authClient,
	}
}

// Authenticate verifies the Bearer token and puts the caller's uid and
// email verification state on the request context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Error(c, errors.Unauthenticated("Authorization header is required", nil))
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return response.Error(c, errors.Unauthenticated("Invalid authorization format", nil))
		}

		token, err := m.authClient.VerifyIDToken(c.Request().Context(), parts[1])
		if err != nil {
			return response.Error(c, errors.Unauthenticated("Invalid or expired token", err))
		}

		c.Set("uid", token.UID)
		if verified, ok := token.Claims["email_verified"].(bool); ok {
			c.Set("emailVerified", verified)
		}

		return next(c)
	}
}

// RequireVerifiedEmail rejects callers whose email is not verified.
// Must run after Authenticate.
func (m *AuthMiddleware) RequireVerifiedEmail(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		verified, ok := c.Get("emailVerified").(bool)
		if !ok || !verified {
			return response.Error(c, errors.EmailNotVerified(nil))
		}
		return next(c)
	}
}

// GetUIDFromToken verifies a raw token string, used by the websocket
// handshake where the token arrives as a query parameter.
func (m *AuthMiddleware) GetUIDFromToken(ctx context.Context, token string) (string, error) {
	firebaseToken, err := m.authClient.VerifyIDToken(ctx, token)
	if err != nil {
		return "", errors.Unauthenticated("Invalid or expired token", err)
	}
	return firebaseToken.UID, nil
}
