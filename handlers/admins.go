// handlers/admins.go - Super-admin management of tenant admins
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"musicquiz/api"
	"musicquiz/auth"
	"musicquiz/models"
	"musicquiz/store"
)

// loadActiveTenant fetches a tenant and checks status. A non-nil error is
// the already-written response.
func (h *Handler) loadActiveTenant(c *fiber.Ctx, tenantID string) (*models.Tenant, error) {
	var tenant models.Tenant
	found, err := h.Store.Get(c.Context(), h.Cfg.Tables.Tenants, store.Key{"tenantId": tenantID}, &tenant)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, api.Error(c, fiber.StatusNotFound, api.CodeTenantNotFound, "Tenant not found")
	}
	if tenant.Status != "active" {
		return nil, api.Error(c, fiber.StatusBadRequest, api.CodeTenantInactive, "Tenant is inactive")
	}
	return &tenant, nil
}

// usernameTaken reports whether another admin already uses this username.
func (h *Handler) usernameTaken(c *fiber.Ctx, username, excludeAdminID string) (bool, error) {
	var admins []models.Admin
	if err := h.Store.Query(c.Context(), h.Cfg.Tables.Admins, store.IndexUsername, "username", username, &admins); err != nil {
		return false, err
	}
	for _, a := range admins {
		if a.AdminID != excludeAdminID {
			return true, nil
		}
	}
	return false, nil
}

type createAdminRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email"`
}

func (h *Handler) CreateAdmin(c *fiber.Ctx) error {
	tenantID := c.Params("tenantId")
	var req createAdminRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if _, err := h.loadActiveTenant(c, tenantID); err != nil {
		return err
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return api.Error(c, fiber.StatusBadRequest, api.CodeInvalidPassword, err.Error())
	}

	taken, err := h.usernameTaken(c, req.Username, "")
	if err != nil {
		return err
	}
	if taken {
		return api.Error(c, fiber.StatusConflict, api.CodeDuplicateUsername, "Username already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}
	now := nowRFC3339()
	admin := models.Admin{
		AdminID:      uuid.NewString(),
		TenantID:     tenantID,
		Username:     req.Username,
		PasswordHash: hash,
		Role:         "tenant_admin",
		Email:        req.Email,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.Store.Put(c.Context(), h.Cfg.Tables.Admins, admin); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(admin.Public())
}

func (h *Handler) ListAdmins(c *fiber.Ctx) error {
	tenantID := c.Params("tenantId")

	var tenant models.Tenant
	found, err := h.Store.Get(c.Context(), h.Cfg.Tables.Tenants, store.Key{"tenantId": tenantID}, &tenant)
	if err != nil {
		return err
	}
	if !found {
		return api.Error(c, fiber.StatusNotFound, api.CodeTenantNotFound, "Tenant not found")
	}

	var admins []models.Admin
	if err := h.Store.Query(c.Context(), h.Cfg.Tables.Admins, store.IndexTenant, "tenantId", tenantID, &admins); err != nil {
		return err
	}
	public := make([]models.Admin, 0, len(admins))
	for _, a := range admins {
		public = append(public, a.Public())
	}
	return c.JSON(fiber.Map{"admins": public, "count": len(public)})
}

type updateAdminRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	TenantID *string `json:"tenantId"`
}

func (h *Handler) UpdateAdmin(c *fiber.Ctx) error {
	adminID := c.Params("adminId")
	var req updateAdminRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var admin models.Admin
	found, err := h.Store.Get(c.Context(), h.Cfg.Tables.Admins, store.Key{"adminId": adminID}, &admin)
	if err != nil {
		return err
	}
	if !found {
		return api.Error(c, fiber.StatusNotFound, api.CodeAdminNotFound, "Admin not found")
	}

	set := map[string]any{}
	if req.Username != nil && *req.Username != admin.Username {
		taken, err := h.usernameTaken(c, *req.Username, adminID)
		if err != nil {
			return err
		}
		if taken {
			return api.Error(c, fiber.StatusConflict, api.CodeDuplicateUsername, "Username already exists")
		}
		set["username"] = *req.Username
	}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.TenantID != nil && *req.TenantID != admin.TenantID {
		var tenant models.Tenant
		found, err := h.Store.Get(c.Context(), h.Cfg.Tables.Tenants, store.Key{"tenantId": *req.TenantID}, &tenant)
		if err != nil {
			return err
		}
		if !found {
			return api.Error(c, fiber.StatusBadRequest, api.CodeInvalidTenantAssign, "Target tenant does not exist")
		}
		if tenant.Status != "active" {
			return api.Error(c, fiber.StatusBadRequest, api.CodeTenantInactive, "Target tenant is inactive")
		}
		set["tenantId"] = *req.TenantID
	}
	if len(set) == 0 {
		return c.JSON(admin.Public())
	}
	set["updatedAt"] = nowRFC3339()

	if err := h.Store.Update(c.Context(), h.Cfg.Tables.Admins, store.Key{"adminId": adminID}, set); err != nil {
		return err
	}
	if _, err := h.Store.Get(c.Context(), h.Cfg.Tables.Admins, store.Key{"adminId": adminID}, &admin); err != nil {
		return err
	}
	return c.JSON(admin.Public())
}

func (h *Handler) DeleteAdmin(c *fiber.Ctx) error {
	adminID := c.Params("adminId")

	var admin models.Admin
	found, err := h.Store.Get(c.Context(), h.Cfg.Tables.Admins, store.Key{"adminId": adminID}, &admin)
	if err != nil {
		return err
	}
	if !found {
		return api.Error(c, fiber.StatusNotFound, api.CodeAdminNotFound, "Admin not found")
	}
	if err := h.Store.Delete(c.Context(), h.Cfg.Tables.Admins, store.Key{"adminId": adminID}); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Admin deleted", "adminId": adminID})
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required"`
}

func (h *Handler) ResetAdminPassword(c *fiber.Ctx) error {
	adminID := c.Params("adminId")
	var req resetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return api.Error(c, fiber.StatusBadRequest, api.CodeInvalidPassword, err.Error())
	}

	var admin models.Admin
	found, err := h.Store.Get(c.Context(), h.Cfg.Tables.Admins, store.Key{"adminId": adminID}, &admin)
	if err != nil {
		return err
	}
	if !found {
		return api.Error(c, fiber.StatusNotFound, api.CodeAdminNotFound, "Admin not found")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	set := map[string]any{"passwordHash": hash, "updatedAt": nowRFC3339()}
	if err := h.Store.Update(c.Context(), h.Cfg.Tables.Admins, store.Key{"adminId": adminID}, set); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password reset"})
}
