// middleware/auth.go - Bearer-token middleware for admin and participant routes
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"musicquiz/api"
	"musicquiz/auth"
	"musicquiz/config"
	"musicquiz/models"
	"musicquiz/store"
)

// AuthContext is what a passing middleware leaves in c.Locals.
type AuthContext struct {
	SubjectID string
	Role      string
	TenantID  string
}

const localsKey = "authContext"

// FromContext returns the AuthContext set by a middleware on this request.
func FromContext(c *fiber.Ctx) AuthContext {
	if ac, ok := c.Locals(localsKey).(AuthContext); ok {
		return ac
	}
	return AuthContext{}
}

func decodeBearer(c *fiber.Ctx, secret string) (*auth.Claims, error) {
	header := c.Get("Authorization")
	if header == "" {
		return nil, api.Error(c, fiber.StatusUnauthorized, api.CodeMissingToken, "Missing Authorization header")
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, api.Error(c, fiber.StatusUnauthorized, api.CodeInvalidAuthFormat, "Authorization header must be a Bearer token")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	claims, err := auth.DecodeToken(secret, token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, api.Error(c, fiber.StatusUnauthorized, api.CodeTokenExpired, "Token expired")
		}
		return nil, api.Error(c, fiber.StatusUnauthorized, api.CodeInvalidToken, "Invalid token")
	}
	return claims, nil
}

// AdminAuth verifies an admin bearer token and checks that the caller's
// tenant, when present, still exists and is active. With no explicit
// roles it admits any admin role.
func AdminAuth(secret string, st store.Store, tables config.Tables, roles ...string) fiber.Handler {
	if len(roles) == 0 {
		roles = []string{"super_admin", "tenant_admin", "admin"}
	}
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *fiber.Ctx) error {
		claims, err := decodeBearer(c, secret)
		if err != nil {
			return err
		}
		if !allowed[claims.Role] {
			return api.Error(c, fiber.StatusForbidden, api.CodeInsufficientPerms, "Insufficient permissions")
		}

		if claims.TenantID != "" {
			var tenant models.Tenant
			found, err := st.Get(c.Context(), tables.Tenants, store.Key{"tenantId": claims.TenantID}, &tenant)
			if err != nil {
				return err
			}
			if !found {
				return api.Error(c, fiber.StatusNotFound, api.CodeTenantNotFound, "Tenant not found")
			}
			if tenant.Status != "active" {
				return api.Error(c, fiber.StatusBadRequest, api.CodeTenantInactive, "Tenant is inactive")
			}
		}

		c.Locals(localsKey, AuthContext{
			SubjectID: claims.Subject,
			Role:      claims.Role,
			TenantID:  claims.TenantID,
		})
		return c.Next()
	}
}

// ParticipantAuth verifies a participant bearer token and re-checks the
// participant record: it must still exist and its tenant must match the
// token. Deleted participants lose access immediately.
func ParticipantAuth(secret string, st store.Store, tables config.Tables) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := decodeBearer(c, secret)
		if err != nil {
			return err
		}
		if claims.Role != "participant" || claims.Subject == "" || claims.TenantID == "" {
			return api.Error(c, fiber.StatusUnauthorized, api.CodeInvalidToken, "Invalid token")
		}

		var participant models.GlobalParticipant
		found, err := st.Get(c.Context(), tables.Participants, store.Key{"participantId": claims.Subject}, &participant)
		if err != nil {
			return err
		}
		if !found {
			return api.Error(c, fiber.StatusNotFound, api.CodeParticipantNotFound, "Participant not found")
		}
		if participant.TenantID != claims.TenantID {
			return api.Error(c, fiber.StatusUnauthorized, api.CodeInvalidToken, "Invalid token")
		}

		c.Locals(localsKey, AuthContext{
			SubjectID: claims.Subject,
			Role:      claims.Role,
			TenantID:  claims.TenantID,
		})
		return c.Next()
	}
}

// ParticipantToken verifies the token only, without loading the record.
// Used where the record may be the thing being deleted.
func ParticipantToken(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := decodeBearer(c, secret)
		if err != nil {
			return err
		}
		if claims.Role != "participant" {
			return api.Error(c, fiber.StatusUnauthorized, api.CodeInvalidToken, "Invalid token")
		}
		c.Locals(localsKey, AuthContext{
			SubjectID: claims.Subject,
			Role:      claims.Role,
			TenantID:  claims.TenantID,
		})
		return c.Next()
	}
}
