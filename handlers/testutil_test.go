package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"musicquiz/api"
	"musicquiz/auth"
	"musicquiz/config"
	"musicquiz/models"
	"musicquiz/storage"
	"musicquiz/store"
)

const testSecret = "unit-test-secret-0123456789abcdef"

func testSettings() config.Settings {
	return config.Settings{
		Port:        "0",
		JWTSecret:   testSecret,
		AudioBucket: "test-bucket",
		FrontendURL: "https://quiz.example.com",
		CORSOrigins: "*",
		Tables: config.Tables{
			Tenants:        "Tenants",
			Admins:         "Admins",
			Sessions:       "QuizSessions",
			Rounds:         "QuizRounds",
			Participants:   "GlobalParticipants",
			Participations: "SessionParticipations",
			Answers:        "Answers",
		},
	}
}

type testEnv struct {
	app   *fiber.App
	h     *Handler
	store *store.Memory
	media *storage.Memory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemory()
	media := storage.NewMemoryMedia()
	h := New(st, media, testSettings())
	app := fiber.New(fiber.Config{ErrorHandler: api.ErrorHandler})
	RegisterRoutes(app, h)
	return &testEnv{app: app, h: h, store: st, media: media}
}

// request performs a JSON request and decodes the response body into a map.
func (e *testEnv) request(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return resp.StatusCode, out
}

func errorCode(body map[string]any) string {
	if e, ok := body["error"].(map[string]any); ok {
		code, _ := e["code"].(string)
		return code
	}
	return ""
}

func (e *testEnv) seedTenant(t *testing.T, name, status string) models.Tenant {
	t.Helper()
	now := time.Now().UTC().Format(time.RFC3339)
	tenant := models.Tenant{
		TenantID:  uuid.NewString(),
		Name:      name,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
		Settings:  map[string]any{},
	}
	if err := e.store.Put(context.Background(), "Tenants", tenant); err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	return tenant
}

func (e *testEnv) seedAdmin(t *testing.T, username, password, role, tenantID string) models.Admin {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	admin := models.Admin{
		AdminID:      uuid.NewString(),
		TenantID:     tenantID,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := e.store.Put(context.Background(), "Admins", admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return admin
}

func (e *testEnv) adminToken(t *testing.T, role, tenantID string) string {
	t.Helper()
	token, err := auth.IssueToken(testSecret, uuid.NewString(), role, tenantID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (e *testEnv) seedParticipant(t *testing.T, name, tenantID string) (models.GlobalParticipant, string) {
	t.Helper()
	id := uuid.NewString()
	token, err := auth.IssueToken(testSecret, id, "participant", tenantID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	participant := models.GlobalParticipant{
		ParticipantID: id,
		TenantID:      tenantID,
		Name:          name,
		Avatar:        "😀",
		Token:         token,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.store.Put(context.Background(), "GlobalParticipants", participant); err != nil {
		t.Fatalf("seed participant: %v", err)
	}
	return participant, token
}

func (e *testEnv) seedSession(t *testing.T, tenantID, mediaType, status string, roundCount int) models.QuizSession {
	t.Helper()
	session := models.QuizSession{
		SessionID:  uuid.NewString(),
		TenantID:   tenantID,
		Title:      "Test session",
		MediaType:  mediaType,
		CreatedBy:  "seed",
		CreatedAt:  time.Now().Unix(),
		RoundCount: roundCount,
		Status:     status,
	}
	if err := e.store.Put(context.Background(), "QuizSessions", session); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return session
}

func (e *testEnv) seedRound(t *testing.T, sessionID string, number, correct int, audioKey string) models.QuizRound {
	t.Helper()
	round := models.QuizRound{
		RoundID:       uuid.NewString(),
		SessionID:     sessionID,
		RoundNumber:   number,
		Question:      "Which one?",
		AudioKey:      audioKey,
		Answers:       []string{"a", "b", "c", "d"},
		CorrectAnswer: correct,
		CreatedAt:     time.Now().Unix(),
	}
	if err := e.store.Put(context.Background(), "QuizRounds", round); err != nil {
		t.Fatalf("seed round: %v", err)
	}
	return round
}

func (e *testEnv) seedParticipation(t *testing.T, participantID, sessionID, tenantID string, points, correct int) models.SessionParticipation {
	t.Helper()
	p := models.SessionParticipation{
		ParticipationID: uuid.NewString(),
		ParticipantID:   participantID,
		SessionID:       sessionID,
		TenantID:        tenantID,
		JoinedAt:        time.Now().UTC().Format(time.RFC3339),
		TotalPoints:     points,
		CorrectAnswers:  correct,
	}
	if err := e.store.Put(context.Background(), "SessionParticipations", p); err != nil {
		t.Fatalf("seed participation: %v", err)
	}
	return p
}
