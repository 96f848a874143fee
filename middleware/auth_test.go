package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"musicquiz/api"
	"musicquiz/auth"
	"musicquiz/config"
	"musicquiz/models"
	"musicquiz/store"
)

const testSecret = "middleware-test-secret-0123456789"

func testTables() config.Tables {
	return config.Tables{
		Tenants:        "Tenants",
		Admins:         "Admins",
		Sessions:       "QuizSessions",
		Rounds:         "QuizRounds",
		Participants:   "GlobalParticipants",
		Participations: "SessionParticipations",
		Answers:        "Answers",
	}
}

// newGuardedApp mounts one protected route that echoes the auth context.
func newGuardedApp(handler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: api.ErrorHandler})
	app.Get("/protected", handler, func(c *fiber.Ctx) error {
		ac := FromContext(c)
		return c.JSON(fiber.Map{"subject": ac.SubjectID, "role": ac.Role, "tenant": ac.TenantID})
	})
	return app
}

func call(t *testing.T, app *fiber.App, authHeader string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	body := map[string]any{}
	if len(raw) > 0 {
		json.Unmarshal(raw, &body)
	}
	return resp.StatusCode, body
}

func code(body map[string]any) string {
	if e, ok := body["error"].(map[string]any); ok {
		c, _ := e["code"].(string)
		return c
	}
	return ""
}

func seedTenant(t *testing.T, st *store.Memory, status string) models.Tenant {
	t.Helper()
	tenant := models.Tenant{
		TenantID:  "tenant-1",
		Name:      "Acme",
		Status:    status,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Settings:  map[string]any{},
	}
	if err := st.Put(context.Background(), "Tenants", tenant); err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	return tenant
}

func TestAdminAuthHeaderErrors(t *testing.T) {
	st := store.NewMemory()
	app := newGuardedApp(AdminAuth(testSecret, st, testTables()))

	status, body := call(t, app, "")
	if status != http.StatusUnauthorized || code(body) != "MISSING_TOKEN" {
		t.Errorf("no header: status = %d, code = %s", status, code(body))
	}

	status, body = call(t, app, "Basic abc123")
	if status != http.StatusUnauthorized || code(body) != "INVALID_AUTH_FORMAT" {
		t.Errorf("wrong scheme: status = %d, code = %s", status, code(body))
	}

	status, body = call(t, app, "Bearer garbage")
	if status != http.StatusUnauthorized || code(body) != "INVALID_TOKEN" {
		t.Errorf("garbage token: status = %d, code = %s", status, code(body))
	}
}

func TestAdminAuthRoleGate(t *testing.T) {
	st := store.NewMemory()
	seedTenant(t, st, "active")
	app := newGuardedApp(AdminAuth(testSecret, st, testTables(), "super_admin"))

	token, err := auth.IssueToken(testSecret, "admin-1", "tenant_admin", "tenant-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	status, body := call(t, app, "Bearer "+token)
	if status != http.StatusForbidden || code(body) != "INSUFFICIENT_PERMISSIONS" {
		t.Errorf("status = %d, code = %s", status, code(body))
	}

	superToken, err := auth.IssueToken(testSecret, "admin-2", "super_admin", "")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	status, body = call(t, app, "Bearer "+superToken)
	if status != http.StatusOK {
		t.Errorf("super admin blocked: status = %d, body = %v", status, body)
	}
}

func TestAdminAuthTenantChecks(t *testing.T) {
	st := store.NewMemory()
	app := newGuardedApp(AdminAuth(testSecret, st, testTables()))
	token, err := auth.IssueToken(testSecret, "admin-1", "tenant_admin", "tenant-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	// Tenant row absent.
	status, body := call(t, app, "Bearer "+token)
	if status != http.StatusNotFound || code(body) != "TENANT_NOT_FOUND" {
		t.Errorf("missing tenant: status = %d, code = %s", status, code(body))
	}

	seedTenant(t, st, "inactive")
	status, body = call(t, app, "Bearer "+token)
	if status != http.StatusBadRequest || code(body) != "TENANT_INACTIVE" {
		t.Errorf("inactive tenant: status = %d, code = %s", status, code(body))
	}

	if err := st.Update(context.Background(), "Tenants", store.Key{"tenantId": "tenant-1"}, map[string]any{"status": "active"}); err != nil {
		t.Fatalf("activate tenant: %v", err)
	}
	status, body = call(t, app, "Bearer "+token)
	if status != http.StatusOK {
		t.Errorf("active tenant blocked: status = %d, body = %v", status, body)
	}
	if body["tenant"] != "tenant-1" {
		t.Errorf("auth context tenant = %v", body["tenant"])
	}
}

func TestAdminAuthRejectsParticipantToken(t *testing.T) {
	st := store.NewMemory()
	app := newGuardedApp(AdminAuth(testSecret, st, testTables()))
	token, err := auth.IssueToken(testSecret, "p-1", "participant", "tenant-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	status, body := call(t, app, "Bearer "+token)
	if status != http.StatusForbidden || code(body) != "INSUFFICIENT_PERMISSIONS" {
		t.Errorf("status = %d, code = %s", status, code(body))
	}
}

func TestParticipantAuthRecordChecks(t *testing.T) {
	st := store.NewMemory()
	app := newGuardedApp(ParticipantAuth(testSecret, st, testTables()))
	token, err := auth.IssueToken(testSecret, "p-1", "participant", "tenant-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	// No record behind the token.
	status, body := call(t, app, "Bearer "+token)
	if status != http.StatusNotFound || code(body) != "PARTICIPANT_NOT_FOUND" {
		t.Errorf("missing record: status = %d, code = %s", status, code(body))
	}

	// Record in a different tenant than the token claims.
	participant := models.GlobalParticipant{ParticipantID: "p-1", TenantID: "tenant-2", Name: "Dana"}
	if err := st.Put(context.Background(), "GlobalParticipants", participant); err != nil {
		t.Fatalf("seed participant: %v", err)
	}
	status, body = call(t, app, "Bearer "+token)
	if status != http.StatusUnauthorized || code(body) != "INVALID_TOKEN" {
		t.Errorf("tenant mismatch: status = %d, code = %s", status, code(body))
	}

	participant.TenantID = "tenant-1"
	if err := st.Put(context.Background(), "GlobalParticipants", participant); err != nil {
		t.Fatalf("reseed participant: %v", err)
	}
	status, body = call(t, app, "Bearer "+token)
	if status != http.StatusOK {
		t.Errorf("valid participant blocked: status = %d, body = %v", status, body)
	}
	if body["subject"] != "p-1" {
		t.Errorf("auth context subject = %v", body["subject"])
	}
}

func TestParticipantAuthRejectsAdminToken(t *testing.T) {
	st := store.NewMemory()
	app := newGuardedApp(ParticipantAuth(testSecret, st, testTables()))
	token, err := auth.IssueToken(testSecret, "admin-1", "tenant_admin", "tenant-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	status, body := call(t, app, "Bearer "+token)
	if status != http.StatusUnauthorized || code(body) != "INVALID_TOKEN" {
		t.Errorf("status = %d, code = %s", status, code(body))
	}
}

func TestParticipantTokenSkipsStore(t *testing.T) {
	app := newGuardedApp(ParticipantToken(testSecret))
	token, err := auth.IssueToken(testSecret, "p-1", "participant", "tenant-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	status, body := call(t, app, "Bearer "+token)
	if status != http.StatusOK {
		t.Errorf("status = %d, body = %v", status, body)
	}
	if body["subject"] != "p-1" {
		t.Errorf("subject = %v", body["subject"])
	}
}
