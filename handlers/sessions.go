// handlers/sessions.go - Quiz session lifecycle
package handlers

import (
	"log"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"musicquiz/api"
	"musicquiz/middleware"
	"musicquiz/models"
	"musicquiz/store"
)

type createSessionRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	MediaType   string `json:"mediaType"`
}

func (h *Handler) CreateSession(c *fiber.Ctx) error {
	var req createSessionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.MediaType == "" {
		req.MediaType = "audio"
	}
	switch req.MediaType {
	case "none", "audio", "image":
	default:
		return api.Error(c, fiber.StatusBadRequest, api.CodeInvalidMediaType, "mediaType must be none, audio or image")
	}

	ac := middleware.FromContext(c)
	if ac.TenantID == "" {
		return api.Error(c, fiber.StatusBadRequest, api.CodeMissingTenantID, "Caller has no tenant context")
	}

	session := models.QuizSession{
		SessionID:   uuid.NewString(),
		TenantID:    ac.TenantID,
		Title:       req.Title,
		Description: req.Description,
		MediaType:   req.MediaType,
		CreatedBy:   ac.SubjectID,
		CreatedAt:   time.Now().Unix(),
		RoundCount:  0,
		Status:      "draft",
	}
	if err := h.Store.Put(c.Context(), h.Cfg.Tables.Sessions, session); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *Handler) ListSessions(c *fiber.Ctx) error {
	var sessions []models.QuizSession
	if err := h.Store.Scan(c.Context(), h.Cfg.Tables.Sessions, &sessions); err != nil {
		return err
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt > sessions[j].CreatedAt
	})
	return c.JSON(fiber.Map{"sessions": sessions, "count": len(sessions)})
}

type sessionWithRounds struct {
	models.QuizSession
	Rounds []models.QuizRound `json:"rounds"`
}

func (h *Handler) GetSession(c *fiber.Ctx) error {
	session, err := h.loadSession(c, c.Params("sessionId"))
	if err != nil {
		return err
	}
	rounds, err := h.sessionRounds(c, session.SessionID)
	if err != nil {
		return err
	}
	return c.JSON(sessionWithRounds{QuizSession: *session, Rounds: rounds})
}

// sessionRounds returns the session's rounds sorted by round number.
func (h *Handler) sessionRounds(c *fiber.Ctx, sessionID string) ([]models.QuizRound, error) {
	var rounds []models.QuizRound
	if err := h.Store.Query(c.Context(), h.Cfg.Tables.Rounds, "", "sessionId", sessionID, &rounds); err != nil {
		return nil, err
	}
	sort.SliceStable(rounds, func(i, j int) bool {
		return rounds[i].RoundNumber < rounds[j].RoundNumber
	})
	if rounds == nil {
		rounds = []models.QuizRound{}
	}
	return rounds, nil
}

type updateSessionRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (h *Handler) UpdateSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	var req updateSessionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	session, err := h.loadSession(c, sessionID)
	if err != nil {
		return err
	}
	if err := h.guardTenant(c, session.TenantID); err != nil {
		return err
	}

	set := map[string]any{}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Status != nil {
		switch *req.Status {
		case "draft", "active", "completed":
		default:
			return api.Error(c, fiber.StatusBadRequest, api.CodeInvalidStatus, "Status must be draft, active or completed")
		}
		set["status"] = *req.Status
	}
	if len(set) == 0 {
		return api.Error(c, fiber.StatusBadRequest, api.CodeNoUpdates, "No updatable fields provided")
	}
	set["updatedAt"] = time.Now().Unix()

	if err := h.Store.Update(c.Context(), h.Cfg.Tables.Sessions, store.Key{"sessionId": sessionID}, set); err != nil {
		return err
	}
	session, err = h.loadSession(c, sessionID)
	if err != nil {
		return err
	}
	return c.JSON(session)
}

func (h *Handler) CompleteSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	session, err := h.loadSession(c, sessionID)
	if err != nil {
		return err
	}
	if err := h.guardTenant(c, session.TenantID); err != nil {
		return err
	}

	set := map[string]any{"status": "completed", "updatedAt": time.Now().Unix()}
	if err := h.Store.Update(c.Context(), h.Cfg.Tables.Sessions, store.Key{"sessionId": sessionID}, set); err != nil {
		return err
	}
	session.Status = "completed"
	return c.JSON(session)
}

// DeleteSession cascades: media objects first (best effort), then round
// rows, then the session itself. Per-item failures are counted and
// logged, never aborting the cascade.
func (h *Handler) DeleteSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	session, err := h.loadSession(c, sessionID)
	if err != nil {
		return err
	}
	if err := h.guardTenant(c, session.TenantID); err != nil {
		return err
	}

	rounds, err := h.sessionRounds(c, sessionID)
	if err != nil {
		return err
	}

	deletedMedia, failedMedia := 0, 0
	deletedRounds := 0
	for _, round := range rounds {
		if key := round.MediaKey(); key != "" {
			if err := h.Media.Delete(c.Context(), key); err != nil {
				log.Printf("delete session %s: media %s: %v", sessionID, key, err)
				failedMedia++
			} else {
				deletedMedia++
			}
		}
		key := store.Key{"sessionId": sessionID, "roundNumber": round.RoundNumber}
		if err := h.Store.Delete(c.Context(), h.Cfg.Tables.Rounds, key); err != nil {
			log.Printf("delete session %s: round %d: %v", sessionID, round.RoundNumber, err)
			continue
		}
		deletedRounds++
	}

	if err := h.Store.Delete(c.Context(), h.Cfg.Tables.Sessions, store.Key{"sessionId": sessionID}); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":           "Quiz session deleted",
		"sessionId":         sessionID,
		"deletedRounds":     deletedRounds,
		"deletedAudioFiles": deletedMedia,
		"failedAudioFiles":  failedMedia,
	})
}

// GetSessionQR returns the registration link encoded by the frontend
// into a QR code.
func (h *Handler) GetSessionQR(c *fiber.Ctx) error {
	session, err := h.loadSession(c, c.Params("sessionId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"sessionId":       session.SessionID,
		"sessionTitle":    session.Title,
		"registrationUrl": h.Cfg.FrontendURL + "/register?sessionId=" + session.SessionID,
	})
}
