// handlers/answers.go - Answer submission and scoring
package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"musicquiz/api"
	"musicquiz/middleware"
	"musicquiz/models"
	"musicquiz/store"
)

type submitAnswerRequest struct {
	ParticipantID string `json:"participantId" validate:"required"`
	SessionID     string `json:"sessionId" validate:"required"`
	RoundNumber   *int   `json:"roundNumber" validate:"required"`
	Answer        *int   `json:"answer" validate:"required"`
}

// scorePoints awards points for a correct answer by response speed.
// With no recorded start time every correct answer earns the base tier.
func scorePoints(roundStartedAt, submittedAt int64) int {
	if roundStartedAt <= 0 {
		return 5
	}
	elapsed := submittedAt - roundStartedAt
	switch {
	case elapsed <= 2:
		return 10
	case elapsed <= 5:
		return 8
	default:
		return 5
	}
}

// SubmitAnswer records an answer and bumps the participation counters.
// Answer rows are append-only; the counter update is best effort and a
// failure there never rolls the answer back.
func (h *Handler) SubmitAnswer(c *fiber.Ctx) error {
	var req submitAnswerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if *req.Answer < 0 || *req.Answer > 3 {
		return api.Error(c, fiber.StatusBadRequest, api.CodeInvalidAnswer, "answer must be between 0 and 3")
	}

	ac := middleware.FromContext(c)
	if ac.SubjectID != req.ParticipantID {
		return api.Error(c, fiber.StatusForbidden, api.CodeInsufficientPerms, "Participants may only answer as themselves")
	}

	var participations []models.SessionParticipation
	if err := h.Store.Query(c.Context(), h.Cfg.Tables.Participations, store.IndexParticipant, "participantId", req.ParticipantID, &participations); err != nil {
		return err
	}
	var participation *models.SessionParticipation
	for i := range participations {
		if participations[i].SessionID == req.SessionID {
			participation = &participations[i]
			break
		}
	}
	if participation == nil {
		return api.Error(c, fiber.StatusNotFound, api.CodeParticipationGone, "Join the session before answering")
	}

	session, err := h.loadSession(c, req.SessionID)
	if err != nil {
		return err
	}
	if session.Status == "completed" {
		return api.Error(c, fiber.StatusBadRequest, api.CodeSessionCompleted, "Session is completed")
	}

	key := store.Key{"sessionId": req.SessionID, "roundNumber": *req.RoundNumber}
	var round models.QuizRound
	found, err := h.Store.Get(c.Context(), h.Cfg.Tables.Rounds, key, &round)
	if err != nil {
		return err
	}
	if !found {
		return api.Error(c, fiber.StatusNotFound, api.CodeRoundNotFound, "Round not found")
	}

	submittedAt := time.Now().Unix()
	isCorrect := *req.Answer == round.CorrectAnswer
	points := 0
	if isCorrect {
		points = scorePoints(session.RoundStartedAt, submittedAt)
	}

	answer := models.Answer{
		AnswerID:        uuid.NewString(),
		ParticipantID:   req.ParticipantID,
		ParticipationID: participation.ParticipationID,
		SessionID:       req.SessionID,
		TenantID:        participation.TenantID,
		RoundNumber:     *req.RoundNumber,
		Answer:          *req.Answer,
		IsCorrect:       isCorrect,
		Points:          points,
		SubmittedAt:     submittedAt,
	}
	if err := h.Store.Put(c.Context(), h.Cfg.Tables.Answers, answer); err != nil {
		return err
	}

	if isCorrect {
		set := map[string]any{
			"totalPoints":    participation.TotalPoints + points,
			"correctAnswers": participation.CorrectAnswers + 1,
		}
		pkey := store.Key{"participationId": participation.ParticipationID}
		if err := h.Store.Update(c.Context(), h.Cfg.Tables.Participations, pkey, set); err != nil {
			log.Printf("submit answer: update counters for %s: %v", participation.ParticipationID, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"answerId":  answer.AnswerID,
		"isCorrect": isCorrect,
		"points":    points,
	})
}
