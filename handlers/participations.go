// handlers/participations.go - Admin views and maintenance of session participants
package handlers

import (
	"log"
	"sort"

	"github.com/gofiber/fiber/v2"

	"musicquiz/api"
	"musicquiz/models"
	"musicquiz/store"
)

// ListSessionParticipants is the admin view of the scoreboard join,
// including joinedAt and participationId.
func (h *Handler) ListSessionParticipants(c *fiber.Ctx) error {
	session, err := h.loadSession(c, c.Params("sessionId"))
	if err != nil {
		return err
	}
	if err := h.guardTenant(c, session.TenantID); err != nil {
		return err
	}

	var participations []models.SessionParticipation
	if err := h.Store.Query(c.Context(), h.Cfg.Tables.Participations, store.IndexSession, "sessionId", session.SessionID, &participations); err != nil {
		return err
	}

	type participantView struct {
		ParticipationID string `json:"participationId"`
		ParticipantID   string `json:"participantId"`
		Name            string `json:"name"`
		Avatar          string `json:"avatar"`
		TotalPoints     int    `json:"totalPoints"`
		CorrectAnswers  int    `json:"correctAnswers"`
		JoinedAt        string `json:"joinedAt"`
	}
	views := make([]participantView, 0, len(participations))
	for _, p := range participations {
		var participant models.GlobalParticipant
		found, err := h.Store.Get(c.Context(), h.Cfg.Tables.Participants, store.Key{"participantId": p.ParticipantID}, &participant)
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		if session.TenantID != "" && participant.TenantID != session.TenantID {
			continue
		}
		views = append(views, participantView{
			ParticipationID: p.ParticipationID,
			ParticipantID:   p.ParticipantID,
			Name:            participant.Name,
			Avatar:          participant.Avatar,
			TotalPoints:     p.TotalPoints,
			CorrectAnswers:  p.CorrectAnswers,
			JoinedAt:        p.JoinedAt,
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].TotalPoints > views[j].TotalPoints
	})
	return c.JSON(fiber.Map{
		"sessionId":    session.SessionID,
		"participants": views,
		"count":        len(views),
	})
}

// findParticipation locates a participant's participation in a session.
func (h *Handler) findParticipation(c *fiber.Ctx, sessionID, participantID string) (*models.SessionParticipation, error) {
	var participations []models.SessionParticipation
	if err := h.Store.Query(c.Context(), h.Cfg.Tables.Participations, store.IndexParticipant, "participantId", participantID, &participations); err != nil {
		return nil, err
	}
	for i := range participations {
		if participations[i].SessionID == sessionID {
			return &participations[i], nil
		}
	}
	return nil, api.Error(c, fiber.StatusNotFound, api.CodeParticipationGone, "Participant has not joined this session")
}

// UpdateSessionParticipant lets an admin fix a participant's name or
// avatar, provided the participant actually joined this session.
func (h *Handler) UpdateSessionParticipant(c *fiber.Ctx) error {
	session, err := h.loadSession(c, c.Params("sessionId"))
	if err != nil {
		return err
	}
	if err := h.guardTenant(c, session.TenantID); err != nil {
		return err
	}
	participantID := c.Params("participantId")

	var req updateParticipantRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if _, err := h.findParticipation(c, session.SessionID, participantID); err != nil {
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
	if req.Name != nil {
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

// RemoveSessionParticipant deletes one participation plus that
// participant's answers within the session. The global record survives.
func (h *Handler) RemoveSessionParticipant(c *fiber.Ctx) error {
	session, err := h.loadSession(c, c.Params("sessionId"))
	if err != nil {
		return err
	}
	if err := h.guardTenant(c, session.TenantID); err != nil {
		return err
	}
	participantID := c.Params("participantId")

	participation, err := h.findParticipation(c, session.SessionID, participantID)
	if err != nil {
		return err
	}

	var answers []models.Answer
	if err := h.Store.Query(c.Context(), h.Cfg.Tables.Answers, store.IndexParticipant, "participantId", participantID, &answers); err != nil {
		return err
	}
	deletedAnswers := 0
	for _, a := range answers {
		if a.SessionID != session.SessionID {
			continue
		}
		if err := h.Store.Delete(c.Context(), h.Cfg.Tables.Answers, store.Key{"answerId": a.AnswerID}); err != nil {
			log.Printf("remove participant %s: answer %s: %v", participantID, a.AnswerID, err)
			continue
		}
		deletedAnswers++
	}
	if err := h.Store.Delete(c.Context(), h.Cfg.Tables.Participations, store.Key{"participationId": participation.ParticipationID}); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":        "Participant removed from session",
		"participantId":  participantID,
		"deletedAnswers": deletedAnswers,
	})
}

// ClearSessionParticipants wipes every participation and answer in a
// session, typically before rerunning a quiz with a fresh audience.
func (h *Handler) ClearSessionParticipants(c *fiber.Ctx) error {
	session, err := h.loadSession(c, c.Params("sessionId"))
	if err != nil {
		return err
	}
	if err := h.guardTenant(c, session.TenantID); err != nil {
		return err
	}

	var answers []models.Answer
	if err := h.Store.Query(c.Context(), h.Cfg.Tables.Answers, store.IndexSessionRnd, "sessionId", session.SessionID, &answers); err != nil {
		return err
	}
	deletedAnswers := 0
	for _, a := range answers {
		if err := h.Store.Delete(c.Context(), h.Cfg.Tables.Answers, store.Key{"answerId": a.AnswerID}); err != nil {
			log.Printf("clear participants %s: answer %s: %v", session.SessionID, a.AnswerID, err)
			continue
		}
		deletedAnswers++
	}

	var participations []models.SessionParticipation
	if err := h.Store.Query(c.Context(), h.Cfg.Tables.Participations, store.IndexSession, "sessionId", session.SessionID, &participations); err != nil {
		return err
	}
	deletedParticipations := 0
	for _, p := range participations {
		if err := h.Store.Delete(c.Context(), h.Cfg.Tables.Participations, store.Key{"participationId": p.ParticipationID}); err != nil {
			log.Printf("clear participants %s: participation %s: %v", session.SessionID, p.ParticipationID, err)
			continue
		}
		deletedParticipations++
	}

	return c.JSON(fiber.Map{
		"message":               "Session participants cleared",
		"sessionId":             session.SessionID,
		"deletedAnswers":        deletedAnswers,
		"deletedParticipations": deletedParticipations,
	})
}

// ResetPoints deletes every answer in the session and zeroes each
// participation's counters, keeping the audience joined.
func (h *Handler) ResetPoints(c *fiber.Ctx) error {
	session, err := h.loadSession(c, c.Params("sessionId"))
	if err != nil {
		return err
	}
	if err := h.guardTenant(c, session.TenantID); err != nil {
		return err
	}

	var answers []models.Answer
	if err := h.Store.Query(c.Context(), h.Cfg.Tables.Answers, store.IndexSessionRnd, "sessionId", session.SessionID, &answers); err != nil {
		return err
	}
	deletedAnswers, failedAnswers := 0, 0
	for _, a := range answers {
		if err := h.Store.Delete(c.Context(), h.Cfg.Tables.Answers, store.Key{"answerId": a.AnswerID}); err != nil {
			log.Printf("reset points %s: answer %s: %v", session.SessionID, a.AnswerID, err)
			failedAnswers++
			continue
		}
		deletedAnswers++
	}

	var participations []models.SessionParticipation
	if err := h.Store.Query(c.Context(), h.Cfg.Tables.Participations, store.IndexSession, "sessionId", session.SessionID, &participations); err != nil {
		return err
	}
	resetCount := 0
	for _, p := range participations {
		set := map[string]any{"totalPoints": 0, "correctAnswers": 0}
		if err := h.Store.Update(c.Context(), h.Cfg.Tables.Participations, store.Key{"participationId": p.ParticipationID}, set); err != nil {
			log.Printf("reset points %s: participation %s: %v", session.SessionID, p.ParticipationID, err)
			continue
		}
		resetCount++
	}

	return c.JSON(fiber.Map{
		"message":             "Points reset",
		"sessionId":           session.SessionID,
		"deletedAnswers":      deletedAnswers,
		"failedAnswers":       failedAnswers,
		"resetParticipations": resetCount,
	})
}
