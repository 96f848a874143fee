package handlers

import (
	"net/http"
	"testing"
)

func TestJoinSessionIdempotent(t *testing.T) {
	e := newTestEnv(t)
	tenant := e.seedTenant(t, "Acme", "active")
	session := e.seedSession(t, tenant.TenantID, "none", "active", 0)
	_, token := e.seedParticipant(t, "Dana", tenant.TenantID)
	path := "/sessions/" + session.SessionID + "/join"

	status, first := e.request(t, http.MethodPost, path, token, nil)
	if status != http.StatusCreated {
		t.Fatalf("first join: status = %d, body = %v", status, first)
	}
	if first["totalPoints"] != float64(0) || first["correctAnswers"] != float64(0) {
		t.Errorf("fresh participation has nonzero counters: %v", first)
	}

	status, second := e.request(t, http.MethodPost, path, token, nil)
	if status != http.StatusOK {
		t.Fatalf("second join: status = %d, body = %v", status, second)
	}
	if first["participationId"] != second["participationId"] {
		t.Errorf("participationId changed: %v vs %v", first["participationId"], second["participationId"])
	}
}

func TestJoinSessionCrossTenant(t *testing.T) {
	e := newTestEnv(t)
	t1 := e.seedTenant(t, "One", "active")
	t2 := e.seedTenant(t, "Two", "active")
	session := e.seedSession(t, t1.TenantID, "none", "active", 0)
	_, token := e.seedParticipant(t, "Dana", t2.TenantID)

	status, body := e.request(t, http.MethodPost, "/sessions/"+session.SessionID+"/join", token, nil)
	if status != http.StatusForbidden || errorCode(body) != "CROSS_TENANT_ACCESS" {
		t.Errorf("status = %d, code = %s", status, errorCode(body))
	}
}

func TestJoinTenantlessSession(t *testing.T) {
	e := newTestEnv(t)
	tenant := e.seedTenant(t, "Acme", "active")
	session := e.seedSession(t, "", "none", "active", 0)
	_, token := e.seedParticipant(t, "Dana", tenant.TenantID)

	status, body := e.request(t, http.MethodPost, "/sessions/"+session.SessionID+"/join", token, nil)
	if status != http.StatusCreated {
		t.Errorf("legacy session join: status = %d, body = %v", status, body)
	}
}

func TestJoinMissingSession(t *testing.T) {
	e := newTestEnv(t)
	tenant := e.seedTenant(t, "Acme", "active")
	_, token := e.seedParticipant(t, "Dana", tenant.TenantID)

	status, body := e.request(t, http.MethodPost, "/sessions/missing/join", token, nil)
	if status != http.StatusNotFound || errorCode(body) != "SESSION_NOT_FOUND" {
		t.Errorf("status = %d, code = %s", status, errorCode(body))
	}
}

func TestJoinRequiresAuth(t *testing.T) {
	e := newTestEnv(t)
	tenant := e.seedTenant(t, "Acme", "active")
	session := e.seedSession(t, tenant.TenantID, "none", "active", 0)

	status, body := e.request(t, http.MethodPost, "/sessions/"+session.SessionID+"/join", "", nil)
	if status != http.StatusUnauthorized || errorCode(body) != "MISSING_TOKEN" {
		t.Errorf("status = %d, code = %s", status, errorCode(body))
	}
}
