package middleware

import (
	"github.com/labstack/echo/v4"

	"gamebit/internal/domain/repository"
	"gamebit/pkg/errors"
	"gamebit/pkg/response"
)

type RoleMiddleware struct {
	userRepo repository.UserRepository
}

func NewRoleMiddleware(userRepo repository.UserRepository) *RoleMiddleware {
	return &RoleMiddleware{userRepo: userRepo}
}

// AdminOnly gates a route on the admin capability. Must run after
// Authenticate.
func (m *RoleMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, ok := c.Get("uid").(string)
		if !ok {
			return response.Error(c, errors.Unauthenticated("Authentication required", nil))
		}

		user, err := m.userRepo.GetByID(c.Request().Context(), uid)
		if err != nil {
			return response.Error(c, err)
		}
		if !user.IsAdmin() {
			return response.Error(c, errors.Forbidden("Admin access required", nil))
		}

		return next(c)
	}
}
