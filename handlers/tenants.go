// handlers/tenants.go - Super-admin tenant management
package handlers

import (
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"musicquiz/api"
	"musicquiz/models"
	"musicquiz/store"
)

type createTenantRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (h *Handler) CreateTenant(c *fiber.Ctx) error {
	var req createTenantRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	now := nowRFC3339()
	tenant := models.Tenant{
		TenantID:    uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Status:      "active",
		CreatedAt:   now,
		UpdatedAt:   now,
		Settings:    map[string]any{},
	}
	if err := h.Store.Put(c.Context(), h.Cfg.Tables.Tenants, tenant); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(tenant)
}

func (h *Handler) ListTenants(c *fiber.Ctx) error {
	var tenants []models.Tenant
	if err := h.Store.Scan(c.Context(), h.Cfg.Tables.Tenants, &tenants); err != nil {
		return err
	}

	if status := c.Query("status"); status != "" {
		filtered := tenants[:0]
		for _, t := range tenants {
			if t.Status == status {
				filtered = append(filtered, t)
			}
		}
		tenants = filtered
	}
	sort.SliceStable(tenants, func(i, j int) bool {
		return tenants[i].CreatedAt > tenants[j].CreatedAt
	})
	return c.JSON(fiber.Map{"tenants": tenants, "count": len(tenants)})
}

type updateTenantRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (h *Handler) UpdateTenant(c *fiber.Ctx) error {
	tenantID := c.Params("tenantId")
	var req updateTenantRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var tenant models.Tenant
	found, err := h.Store.Get(c.Context(), h.Cfg.Tables.Tenants, store.Key{"tenantId": tenantID}, &tenant)
	if err != nil {
		return err
	}
	if !found {
		return api.Error(c, fiber.StatusNotFound, api.CodeTenantNotFound, "Tenant not found")
	}

	set := map[string]any{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Status != nil {
		if *req.Status != "active" && *req.Status != "inactive" {
			return api.Error(c, fiber.StatusBadRequest, api.CodeInvalidStatus, "Status must be active or inactive")
		}
		set["status"] = *req.Status
	}
	if len(set) == 0 {
		return api.Error(c, fiber.StatusBadRequest, api.CodeNoUpdates, "No updatable fields provided")
	}
	set["updatedAt"] = nowRFC3339()

	if err := h.Store.Update(c.Context(), h.Cfg.Tables.Tenants, store.Key{"tenantId": tenantID}, set); err != nil {
		return err
	}
	if _, err := h.Store.Get(c.Context(), h.Cfg.Tables.Tenants, store.Key{"tenantId": tenantID}, &tenant); err != nil {
		return err
	}
	return c.JSON(tenant)
}

// DeleteTenant soft-deletes: the row stays, status flips to inactive.
// Sessions and admins are untouched; the active-tenant checks lock them out.
func (h *Handler) DeleteTenant(c *fiber.Ctx) error {
	tenantID := c.Params("tenantId")

	var tenant models.Tenant
	found, err := h.Store.Get(c.Context(), h.Cfg.Tables.Tenants, store.Key{"tenantId": tenantID}, &tenant)
	if err != nil {
		return err
	}
	if !found {
		return api.Error(c, fiber.StatusNotFound, api.CodeTenantNotFound, "Tenant not found")
	}

	set := map[string]any{"status": "inactive", "updatedAt": nowRFC3339()}
	if err := h.Store.Update(c.Context(), h.Cfg.Tables.Tenants, store.Key{"tenantId": tenantID}, set); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Tenant deactivated", "tenantId": tenantID})
}
