// handlers/auth.go - Admin login
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"musicquiz/api"
	"musicquiz/auth"
	"musicquiz/models"
	"musicquiz/store"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AdminLogin exchanges username/password for a bearer token. Unknown
// usernames and wrong passwords share the same response.
func (h *Handler) AdminLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var admins []models.Admin
	if err := h.Store.Query(c.Context(), h.Cfg.Tables.Admins, store.IndexUsername, "username", req.Username, &admins); err != nil {
		return err
	}
	if len(admins) == 0 {
		return api.Error(c, fiber.StatusUnauthorized, api.CodeInvalidCredentials, "Invalid username or password")
	}
	admin := admins[0]
	if !auth.VerifyPassword(admin.PasswordHash, req.Password) {
		return api.Error(c, fiber.StatusUnauthorized, api.CodeInvalidCredentials, "Invalid username or password")
	}

	token, err := auth.IssueToken(h.Cfg.JWTSecret, admin.AdminID, admin.Role, admin.TenantID)
	if err != nil {
		return err
	}

	resp := fiber.Map{
		"token":     token,
		"expiresIn": int(auth.TokenTTL.Seconds()),
		"role":      admin.Role,
	}
	if admin.TenantID != "" {
		resp["tenantId"] = admin.TenantID
	}
	return c.JSON(resp)
}
