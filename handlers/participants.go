// handlers/participants.go - Global participant lifecycle
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"musicquiz/api"
	"musicquiz/auth"
	"musicquiz/middleware"
	"musicquiz/models"
	"musicquiz/store"
)

type registerParticipantRequest struct {
	TenantID string `json:"tenantId" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Avatar   string `json:"avatar"`
}

// RegisterParticipant creates a participant identity within a tenant and
// hands back its bearer token.
func (h *Handler) RegisterParticipant(c *fiber.Ctx) error {
	var req registerParticipantRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var tenant models.Tenant
	found, err := h.Store.Get(c.Context(), h.Cfg.Tables.Tenants, store.Key{"tenantId": req.TenantID}, &tenant)
	if err != nil {
		return err
	}
	if !found {
		return api.Error(c, fiber.StatusNotFound, api.CodeTenantNotFound, "Tenant not found")
	}
	if tenant.Status != "active" {
		return api.Error(c, fiber.StatusForbidden, api.CodeTenantInactive, "Tenant is inactive")
	}

	if req.Avatar == "" {
		req.Avatar = "😀"
	}

	participantID := uuid.NewString()
	token, err := auth.IssueToken(h.Cfg.JWTSecret, participantID, "participant", req.TenantID)
	if err != nil {
		return err
	}
	now := nowRFC3339()
	participant := models.GlobalParticipant{
		ParticipantID: participantID,
		TenantID:      req.TenantID,
		Name:          req.Name,
		Avatar:        req.Avatar,
		Token:         token,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.Store.Put(c.Context(), h.Cfg.Tables.Participants, participant); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(participant)
}

// GetParticipant returns the public profile, token stripped.
func (h *Handler) GetParticipant(c *fiber.Ctx) error {
	participantID := c.Params("participantId")

	var participant models.GlobalParticipant
	found, err := h.Store.Get(c.Context(), h.Cfg.Tables.Participants, store.Key{"participantId": participantID}, &participant)
	if err != nil {
		return err
	}
	if !found {
		return api.Error(c, fiber.StatusNotFound, api.CodeParticipantNotFound, "Participant not found")
	}
	return c.JSON(participant.Profile())
}

type updateParticipantRequest struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

// UpdateParticipant lets a participant rename themselves or change
// avatar. Names are unique per tenant.
func (h *Handler) UpdateParticipant(c *fiber.Ctx) error {
	participantID := c.Params("participantId")
	ac := middleware.FromContext(c)
	if ac.SubjectID != participantID {
		return api.Error(c, fiber.StatusForbidden, api.CodeInsufficientPerms, "Participants may only modify themselves")
	}

	var req updateParticipantRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var participant models.GlobalParticipant
	found, err := h.Store.Get(c.Context(), h.Cfg.Tables.Participants, store.Key{"participantId": participantID}, &participant)
	if err != nil {
		return err
	}
	if !found {
		return api.Error(c, fiber.StatusNotFound, api.CodeParticipantNotFound, "Participant not found")
	}

	set := map[string]any{}
	if req.Name != nil && *req.Name != participant.Name {
		var all []models.GlobalParticipant
		if err := h.Store.Scan(c.Context(), h.Cfg.Tables.Participants, &all); err != nil {
			return err
		}
		for _, other := range all {
			if other.ParticipantID != participantID && other.TenantID == participant.TenantID && other.Name == *req.Name {
				return api.Error(c, fiber.StatusConflict, api.CodeNicknameTaken, "Nickname already in use")
			}
		}
		set["name"] = *req.Name
	}
	if req.Avatar != nil {
		set["avatar"] = *req.Avatar
	}
	if len(set) == 0 {
		return api.Error(c, fiber.StatusBadRequest, api.CodeNoUpdates, "No updatable fields provided")
	}
	set["updatedAt"] = nowRFC3339()

	if err := h.Store.Update(c.Context(), h.Cfg.Tables.Participants, store.Key{"participantId": participantID}, set); err != nil {
		return err
	}
	if _, err := h.Store.Get(c.Context(), h.Cfg.Tables.Participants, store.Key{"participantId": participantID}, &participant); err != nil {
		return err
	}
	return c.JSON(participant.Profile())
}

// DeleteParticipant removes the caller's identity and every session
// participation that points at it. Uses the token-only middleware so a
// half-deleted record cannot lock the participant out of finishing.
func (h *Handler) DeleteParticipant(c *fiber.Ctx) error {
	participantID := c.Params("participantId")
	ac := middleware.FromContext(c)
	if ac.SubjectID != participantID {
		return api.Error(c, fiber.StatusForbidden, api.CodeInsufficientPerms, "Participants may only delete themselves")
	}

	var participant models.GlobalParticipant
	found, err := h.Store.Get(c.Context(), h.Cfg.Tables.Participants, store.Key{"participantId": participantID}, &participant)
	if err != nil {
		return err
	}
	if !found {
		return api.Error(c, fiber.StatusNotFound, api.CodeParticipantNotFound, "Participant not found")
	}

	var participations []models.SessionParticipation
	if err := h.Store.Query(c.Context(), h.Cfg.Tables.Participations, store.IndexParticipant, "participantId", participantID, &participations); err != nil {
		return err
	}
	deleted := 0
	for _, p := range participations {
		key := store.Key{"participationId": p.ParticipationID}
		if err := h.Store.Delete(c.Context(), h.Cfg.Tables.Participations, key); err != nil {
			return err
		}
		deleted++
	}
	if err := h.Store.Delete(c.Context(), h.Cfg.Tables.Participants, store.Key{"participantId": participantID}); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":               "Participant deleted",
		"participantId":         participantID,
		"deletedParticipations": deleted,
	})
}
