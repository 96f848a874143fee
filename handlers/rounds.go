// handlers/rounds.go - Round management
package handlers

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"musicquiz/api"
	"musicquiz/models"
	"musicquiz/store"
)

// MaxRoundsPerSession caps how many rounds one session may hold.
const MaxRoundsPerSession = 30

type addRoundRequest struct {
	Question      string   `json:"question" validate:"required"`
	AudioKey      string   `json:"audioKey"`
	ImageKey      string   `json:"imageKey"`
	Answers       []string `json:"answers"`
	CorrectAnswer *int     `json:"correctAnswer"`
}

func (h *Handler) AddRound(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	var req addRoundRequest
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

	if session.RoundCount >= MaxRoundsPerSession {
		return api.ErrorDetails(c, fiber.StatusConflict, api.CodeMaxRoundsReached,
			"Session already has the maximum number of rounds",
			fiber.Map{"current": session.RoundCount, "max": MaxRoundsPerSession})
	}
	if session.MediaType == "audio" && req.AudioKey == "" {
		return api.Error(c, fiber.StatusBadRequest, api.CodeMissingFields, "audioKey is required for audio sessions")
	}
	if session.MediaType == "image" && req.ImageKey == "" {
		return api.Error(c, fiber.StatusBadRequest, api.CodeMissingFields, "imageKey is required for image sessions")
	}
	if len(req.Answers) != 4 {
		return api.Error(c, fiber.StatusBadRequest, api.CodeInvalidAnswers, "Exactly 4 answer options are required")
	}
	if req.CorrectAnswer == nil || *req.CorrectAnswer < 0 || *req.CorrectAnswer > 3 {
		return api.Error(c, fiber.StatusBadRequest, api.CodeInvalidCorrectAnswer, "correctAnswer must be between 0 and 3")
	}

	round := models.QuizRound{
		RoundID:       uuid.NewString(),
		SessionID:     sessionID,
		RoundNumber:   session.RoundCount + 1,
		Question:      req.Question,
		AudioKey:      req.AudioKey,
		ImageKey:      req.ImageKey,
		Answers:       req.Answers,
		CorrectAnswer: *req.CorrectAnswer,
		CreatedAt:     time.Now().Unix(),
	}
	if err := h.Store.Put(c.Context(), h.Cfg.Tables.Rounds, round); err != nil {
		return err
	}

	// Best effort; the round row is already durable.
	set := map[string]any{"roundCount": session.RoundCount + 1, "updatedAt": time.Now().Unix()}
	if err := h.Store.Update(c.Context(), h.Cfg.Tables.Sessions, store.Key{"sessionId": sessionID}, set); err != nil {
		log.Printf("add round: update roundCount for %s: %v", sessionID, err)
	}
	return c.Status(fiber.StatusCreated).JSON(round)
}

func parseRoundNumber(c *fiber.Ctx) (int, error) {
	n, err := strconv.Atoi(c.Params("roundNumber"))
	if err != nil || n < 1 {
		return 0, api.Error(c, fiber.StatusBadRequest, api.CodeMissingFields, "roundNumber must be a positive integer")
	}
	return n, nil
}

// DeleteRound removes one round. The session's roundCount is recomputed
// from the surviving rounds rather than decremented, so it self-heals
// when the counter has drifted.
func (h *Handler) DeleteRound(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	roundNumber, err := parseRoundNumber(c)
	if err != nil {
		return err
	}

	session, err := h.loadSession(c, sessionID)
	if err != nil {
		return err
	}
	if err := h.guardTenant(c, session.TenantID); err != nil {
		return err
	}

	key := store.Key{"sessionId": sessionID, "roundNumber": roundNumber}
	var round models.QuizRound
	found, err := h.Store.Get(c.Context(), h.Cfg.Tables.Rounds, key, &round)
	if err != nil {
		return err
	}
	if !found {
		return api.Error(c, fiber.StatusNotFound, api.CodeRoundNotFound, "Round not found")
	}

	if mediaKey := round.MediaKey(); mediaKey != "" {
		if err := h.Media.Delete(c.Context(), mediaKey); err != nil {
			log.Printf("delete round %s/%d: media %s: %v", sessionID, roundNumber, mediaKey, err)
		}
	}
	if err := h.Store.Delete(c.Context(), h.Cfg.Tables.Rounds, key); err != nil {
		return err
	}

	remaining, err := h.sessionRounds(c, sessionID)
	if err != nil {
		return err
	}
	set := map[string]any{"roundCount": len(remaining), "updatedAt": time.Now().Unix()}
	if err := h.Store.Update(c.Context(), h.Cfg.Tables.Sessions, store.Key{"sessionId": sessionID}, set); err != nil {
		log.Printf("delete round: update roundCount for %s: %v", sessionID, err)
	}
	return c.JSON(fiber.Map{
		"message":     "Round deleted",
		"sessionId":   sessionID,
		"roundNumber": roundNumber,
		"roundCount":  len(remaining),
	})
}

// StartRound marks a round live: participants answering from this moment
// are scored against roundStartedAt.
func (h *Handler) StartRound(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	roundNumber, err := parseRoundNumber(c)
	if err != nil {
		return err
	}

	session, err := h.loadSession(c, sessionID)
	if err != nil {
		return err
	}
	if err := h.guardTenant(c, session.TenantID); err != nil {
		return err
	}

	key := store.Key{"sessionId": sessionID, "roundNumber": roundNumber}
	var round models.QuizRound
	found, err := h.Store.Get(c.Context(), h.Cfg.Tables.Rounds, key, &round)
	if err != nil {
		return err
	}
	if !found {
		return api.Error(c, fiber.StatusNotFound, api.CodeRoundNotFound, "Round not found")
	}

	startedAt := time.Now().Unix()
	set := map[string]any{
		"currentRound":   roundNumber,
		"roundStartedAt": startedAt,
		"status":         "active",
	}
	if err := h.Store.Update(c.Context(), h.Cfg.Tables.Sessions, store.Key{"sessionId": sessionID}, set); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"sessionId":      sessionID,
		"currentRound":   roundNumber,
		"roundStartedAt": startedAt,
		"status":         "active",
	})
}
