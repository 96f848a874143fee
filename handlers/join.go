// handlers/join.go - Idempotent session join
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"musicquiz/api"
	"musicquiz/middleware"
	"musicquiz/models"
	"musicquiz/store"
)

// JoinSession creates the caller's participation in a session, or returns
// the existing one. Joining twice never creates a duplicate: the second
// call answers 200 with the same participationId.
func (h *Handler) JoinSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	ac := middleware.FromContext(c)

	session, err := h.loadSession(c, sessionID)
	if err != nil {
		return err
	}
	// Sessions without a tenant predate tenancy and stay open to all.
	if session.TenantID != "" && session.TenantID != ac.TenantID {
		return api.Error(c, fiber.StatusForbidden, api.CodeCrossTenantAccess, "Session belongs to a different tenant")
	}

	var participations []models.SessionParticipation
	if err := h.Store.Query(c.Context(), h.Cfg.Tables.Participations, store.IndexParticipant, "participantId", ac.SubjectID, &participations); err != nil {
		return err
	}
	for _, p := range participations {
		if p.SessionID == sessionID {
			return c.JSON(p)
		}
	}

	participation := models.SessionParticipation{
		ParticipationID: uuid.NewString(),
		ParticipantID:   ac.SubjectID,
		SessionID:       sessionID,
		TenantID:        session.TenantID,
		JoinedAt:        nowRFC3339(),
		TotalPoints:     0,
		CorrectAnswers:  0,
	}
	if err := h.Store.Put(c.Context(), h.Cfg.Tables.Participations, participation); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(participation)
}
