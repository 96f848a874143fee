// handlers/scoreboard.go - Public session scoreboard
package handlers

import (
	"sort"

	"github.com/gofiber/fiber/v2"

	"musicquiz/models"
	"musicquiz/store"
)

type scoreboardEntry struct {
	ParticipantID  string `json:"participantId"`
	Name           string `json:"name"`
	Avatar         string `json:"avatar"`
	TotalPoints    int    `json:"totalPoints"`
	CorrectAnswers int    `json:"correctAnswers"`
	Rank           int    `json:"rank"`
}

// joinParticipants resolves each participation to its participant record.
// Entries are dropped when the record is gone or belongs to a different
// tenant than the session; ties keep the query order.
func (h *Handler) joinParticipants(c *fiber.Ctx, session *models.QuizSession) ([]scoreboardEntry, error) {
	var participations []models.SessionParticipation
	if err := h.Store.Query(c.Context(), h.Cfg.Tables.Participations, store.IndexSession, "sessionId", session.SessionID, &participations); err != nil {
		return nil, err
	}

	entries := make([]scoreboardEntry, 0, len(participations))
	for _, p := range participations {
		var participant models.GlobalParticipant
		found, err := h.Store.Get(c.Context(), h.Cfg.Tables.Participants, store.Key{"participantId": p.ParticipantID}, &participant)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		if session.TenantID != "" && participant.TenantID != session.TenantID {
			continue
		}
		entries = append(entries, scoreboardEntry{
			ParticipantID:  p.ParticipantID,
			Name:           participant.Name,
			Avatar:         participant.Avatar,
			TotalPoints:    p.TotalPoints,
			CorrectAnswers: p.CorrectAnswers,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalPoints > entries[j].TotalPoints
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (h *Handler) GetScoreboard(c *fiber.Ctx) error {
	session, err := h.loadSession(c, c.Params("sessionId"))
	if err != nil {
		return err
	}
	entries, err := h.joinParticipants(c, session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"sessionId":  session.SessionID,
		"scoreboard": entries,
	})
}
