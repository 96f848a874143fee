// handlers/handlers.go - Shared handler state and request helpers
package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"musicquiz/api"
	"musicquiz/config"
	"musicquiz/middleware"
	"musicquiz/models"
	"musicquiz/storage"
	"musicquiz/store"
)

var validate = validator.New()

// Handler carries the injected dependencies every route needs.
type Handler struct {
	Store store.Store
	Media storage.MediaStore
	Cfg   config.Settings
}

func New(st store.Store, media storage.MediaStore, cfg config.Settings) *Handler {
	return &Handler{Store: st, Media: media, Cfg: cfg}
}

// parseBody unmarshals the JSON body and runs struct validation. A non-nil
// return is the already-written 400 response.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return api.Error(c, fiber.StatusBadRequest, api.CodeMissingFields, "Invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
		}
		return api.ErrorDetails(c, fiber.StatusBadRequest, api.CodeMissingFields,
			"Missing or invalid required fields", fiber.Map{"fields": fields})
	}
	return nil
}

// loadSession fetches a session or writes SESSION_NOT_FOUND.
func (h *Handler) loadSession(c *fiber.Ctx, sessionID string) (*models.QuizSession, error) {
	var session models.QuizSession
	found, err := h.Store.Get(c.Context(), h.Cfg.Tables.Sessions, store.Key{"sessionId": sessionID}, &session)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, api.Error(c, fiber.StatusNotFound, api.CodeSessionNotFound, "Quiz session not found")
	}
	return &session, nil
}

// guardTenant enforces the tenant access predicate for the caller. A
// non-nil return is the already-written 403 response.
func (h *Handler) guardTenant(c *fiber.Ctx, resourceTenant string) error {
	ac := middleware.FromContext(c)
	if !middleware.CanAccessTenant(ac.Role, ac.TenantID, resourceTenant) {
		return api.Error(c, fiber.StatusForbidden, api.CodeCrossTenantAccess, "Resource belongs to a different tenant")
	}
	return nil
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
