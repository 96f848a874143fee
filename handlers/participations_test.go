package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"musicquiz/models"
	"musicquiz/store"
)

func (e *testEnv) seedAnswer(t *testing.T, participantID, participationID, sessionID, tenantID string, round, points int) models.Answer {
	t.Helper()
	a := models.Answer{
		AnswerID:        uuid.NewString(),
		ParticipantID:   participantID,
		ParticipationID: participationID,
		SessionID:       sessionID,
		TenantID:        tenantID,
		RoundNumber:     round,
		Answer:          0,
		IsCorrect:       points > 0,
		Points:          points,
		SubmittedAt:     time.Now().Unix(),
	}
	if err := e.store.Put(context.Background(), "Answers", a); err != nil {
		t.Fatalf("seed answer: %v", err)
	}
	return a
}

func TestListSessionParticipants(t *testing.T) {
	e := newTestEnv(t)
	tenant := e.seedTenant(t, "Acme", "active")
	session := e.seedSession(t, tenant.TenantID, "none", "active", 0)
	p1, _ := e.seedParticipant(t, "Ann", tenant.TenantID)
	p2, _ := e.seedParticipant(t, "Ben", tenant.TenantID)
	e.seedParticipation(t, p1.ParticipantID, session.SessionID, tenant.TenantID, 5, 1)
	e.seedParticipation(t, p2.ParticipantID, session.SessionID, tenant.TenantID, 15, 2)
	token := e.adminToken(t, "tenant_admin", tenant.TenantID)

	status, body := e.request(t, http.MethodGet,
		"/admin/quiz-sessions/"+session.SessionID+"/participants", token, nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	participants := body["participants"].([]any)
	if len(participants) != 2 {
		t.Fatalf("len = %d, want 2", len(participants))
	}
	first := participants[0].(map[string]any)
	if first["name"] != "Ben" {
		t.Errorf("not sorted by points: first = %v", first["name"])
	}
	if first["joinedAt"] == nil || first["participationId"] == nil {
		t.Errorf("admin view missing fields: %v", first)
	}
}

func TestUpdateSessionParticipant(t *testing.T) {
	e := newTestEnv(t)
	tenant := e.seedTenant(t, "Acme", "active")
	session := e.seedSession(t, tenant.TenantID, "none", "active", 0)
	p, _ := e.seedParticipant(t, "Ann", tenant.TenantID)
	e.seedParticipation(t, p.ParticipantID, session.SessionID, tenant.TenantID, 0, 0)
	token := e.adminToken(t, "tenant_admin", tenant.TenantID)

	status, body := e.request(t, http.MethodPut,
		"/admin/quiz-sessions/"+session.SessionID+"/participants/"+p.ParticipantID, token,
		map[string]any{"name": "Annette"})
	if status != http.StatusOK {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	if body["name"] != "Annette" {
		t.Errorf("name = %v", body["name"])
	}
}

func TestUpdateSessionParticipantNotJoined(t *testing.T) {
	e := newTestEnv(t)
	tenant := e.seedTenant(t, "Acme", "active")
	session := e.seedSession(t, tenant.TenantID, "none", "active", 0)
	p, _ := e.seedParticipant(t, "Ann", tenant.TenantID)
	token := e.adminToken(t, "tenant_admin", tenant.TenantID)

	status, body := e.request(t, http.MethodPut,
		"/admin/quiz-sessions/"+session.SessionID+"/participants/"+p.ParticipantID, token,
		map[string]any{"name": "Annette"})
	if status != http.StatusNotFound || errorCode(body) != "PARTICIPATION_NOT_FOUND" {
		t.Errorf("status = %d, code = %s", status, errorCode(body))
	}
}

func TestRemoveSessionParticipant(t *testing.T) {
	e := newTestEnv(t)
	tenant := e.seedTenant(t, "Acme", "active")
	session := e.seedSession(t, tenant.TenantID, "none", "active", 0)
	otherSession := e.seedSession(t, tenant.TenantID, "none", "active", 0)
	p, _ := e.seedParticipant(t, "Ann", tenant.TenantID)
	participation := e.seedParticipation(t, p.ParticipantID, session.SessionID, tenant.TenantID, 10, 1)
	e.seedAnswer(t, p.ParticipantID, participation.ParticipationID, session.SessionID, tenant.TenantID, 1, 10)
	e.seedAnswer(t, p.ParticipantID, participation.ParticipationID, session.SessionID, tenant.TenantID, 2, 0)
	e.seedAnswer(t, p.ParticipantID, "other", otherSession.SessionID, tenant.TenantID, 1, 5)
	token := e.adminToken(t, "tenant_admin", tenant.TenantID)

	status, body := e.request(t, http.MethodDelete,
		"/admin/quiz-sessions/"+session.SessionID+"/participants/"+p.ParticipantID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	if body["deletedAnswers"] != float64(2) {
		t.Errorf("deletedAnswers = %v, want 2", body["deletedAnswers"])
	}

	// The global record and answers in other sessions survive.
	getStatus, _ := e.request(t, http.MethodGet, "/participants/"+p.ParticipantID, "", nil)
	if getStatus != http.StatusOK {
		t.Errorf("global record deleted: status = %d", getStatus)
	}
	var rest []models.Answer
	if err := e.store.Query(context.Background(), "Answers", store.IndexParticipant, "participantId", p.ParticipantID, &rest); err != nil {
		t.Fatalf("query answers: %v", err)
	}
	if len(rest) != 1 {
		t.Errorf("answers left = %d, want 1", len(rest))
	}
}

func TestClearSessionParticipants(t *testing.T) {
	e := newTestEnv(t)
	tenant := e.seedTenant(t, "Acme", "active")
	session := e.seedSession(t, tenant.TenantID, "none", "active", 0)
	p1, _ := e.seedParticipant(t, "Ann", tenant.TenantID)
	p2, _ := e.seedParticipant(t, "Ben", tenant.TenantID)
	pt1 := e.seedParticipation(t, p1.ParticipantID, session.SessionID, tenant.TenantID, 10, 1)
	pt2 := e.seedParticipation(t, p2.ParticipantID, session.SessionID, tenant.TenantID, 5, 1)
	e.seedAnswer(t, p1.ParticipantID, pt1.ParticipationID, session.SessionID, tenant.TenantID, 1, 10)
	e.seedAnswer(t, p2.ParticipantID, pt2.ParticipationID, session.SessionID, tenant.TenantID, 1, 5)
	token := e.adminToken(t, "tenant_admin", tenant.TenantID)

	status, body := e.request(t, http.MethodDelete,
		"/admin/quiz-sessions/"+session.SessionID+"/participants", token, nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	if body["deletedParticipations"] != float64(2) || body["deletedAnswers"] != float64(2) {
		t.Errorf("counts = %v", body)
	}

	boardStatus, boardBody := e.request(t, http.MethodGet,
		"/quiz-sessions/"+session.SessionID+"/scoreboard", "", nil)
	if boardStatus != http.StatusOK {
		t.Fatalf("scoreboard status = %d", boardStatus)
	}
	if len(boardBody["scoreboard"].([]any)) != 0 {
		t.Error("scoreboard not empty after clear")
	}
}

func TestResetPoints(t *testing.T) {
	e := newTestEnv(t)
	tenant := e.seedTenant(t, "Acme", "active")
	session := e.seedSession(t, tenant.TenantID, "none", "active", 0)
	p, _ := e.seedParticipant(t, "Ann", tenant.TenantID)
	participation := e.seedParticipation(t, p.ParticipantID, session.SessionID, tenant.TenantID, 25, 3)
	e.seedAnswer(t, p.ParticipantID, participation.ParticipationID, session.SessionID, tenant.TenantID, 1, 10)
	e.seedAnswer(t, p.ParticipantID, participation.ParticipationID, session.SessionID, tenant.TenantID, 2, 8)
	token := e.adminToken(t, "tenant_admin", tenant.TenantID)

	status, body := e.request(t, http.MethodDelete,
		"/admin/quiz-sessions/"+session.SessionID+"/points", token, nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	if body["deletedAnswers"] != float64(2) {
		t.Errorf("deletedAnswers = %v, want 2", body["deletedAnswers"])
	}
	if body["resetParticipations"] != float64(1) {
		t.Errorf("resetParticipations = %v, want 1", body["resetParticipations"])
	}

	var after models.SessionParticipation
	found, err := e.store.Get(context.Background(), "SessionParticipations", store.Key{"participationId": participation.ParticipationID}, &after)
	if err != nil || !found {
		t.Fatalf("load participation: found=%v err=%v", found, err)
	}
	if after.TotalPoints != 0 || after.CorrectAnswers != 0 {
		t.Errorf("counters = %d/%d, want 0/0", after.TotalPoints, after.CorrectAnswers)
	}
}
