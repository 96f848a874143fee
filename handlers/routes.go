// handlers/routes.go - Route registration
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"musicquiz/middleware"
)

// RegisterRoutes wires the full API surface onto the app.
func RegisterRoutes(app *fiber.App, h *Handler) {
	adminAuth := middleware.AdminAuth(h.Cfg.JWTSecret, h.Store, h.Cfg.Tables)
	superAdminAuth := middleware.AdminAuth(h.Cfg.JWTSecret, h.Store, h.Cfg.Tables, "super_admin")
	participantAuth := middleware.ParticipantAuth(h.Cfg.JWTSecret, h.Store, h.Cfg.Tables)
	participantToken := middleware.ParticipantToken(h.Cfg.JWTSecret)

	// Public
	app.Get("/quiz-sessions", h.ListSessions)
	app.Get("/quiz-sessions/:sessionId", h.GetSession)
	app.Get("/quiz-sessions/:sessionId/scoreboard", h.GetScoreboard)
	app.Get("/quiz-sessions/:sessionId/qr", h.GetSessionQR)
	app.Get("/audio", h.GetMediaURL)
	app.Get("/participants/:participantId", h.GetParticipant)
	app.Post("/participants/register", h.RegisterParticipant)

	// Participant (bearer)
	app.Post("/sessions/:sessionId/join", participantAuth, h.JoinSession)
	app.Post("/participants/answers", participantAuth, h.SubmitAnswer)
	app.Put("/participants/:participantId", participantAuth, h.UpdateParticipant)
	app.Delete("/participants/:participantId", participantToken, h.DeleteParticipant)

	// Admin (bearer, any admin role)
	admin := app.Group("/admin")
	admin.Post("/login", h.AdminLogin)
	admin.Post("/quiz-sessions", adminAuth, h.CreateSession)
	admin.Put("/quiz-sessions/:sessionId", adminAuth, h.UpdateSession)
	admin.Post("/quiz-sessions/:sessionId/complete", adminAuth, h.CompleteSession)
	admin.Delete("/quiz-sessions/:sessionId", adminAuth, h.DeleteSession)
	admin.Post("/quiz-sessions/:sessionId/rounds", adminAuth, h.AddRound)
	admin.Delete("/quiz-sessions/:sessionId/rounds/:roundNumber", adminAuth, h.DeleteRound)
	admin.Post("/quiz-sessions/:sessionId/rounds/:roundNumber/start", adminAuth, h.StartRound)
	admin.Delete("/quiz-sessions/:sessionId/points", adminAuth, h.ResetPoints)
	admin.Get("/quiz-sessions/:sessionId/participants", adminAuth, h.ListSessionParticipants)
	admin.Put("/quiz-sessions/:sessionId/participants/:participantId", adminAuth, h.UpdateSessionParticipant)
	admin.Delete("/quiz-sessions/:sessionId/participants/:participantId", adminAuth, h.RemoveSessionParticipant)
	admin.Delete("/quiz-sessions/:sessionId/participants", adminAuth, h.ClearSessionParticipants)
	admin.Post("/audio", adminAuth, h.UploadAudio)
	admin.Post("/image", adminAuth, h.UploadImage)

	// Super admin (bearer, super_admin only)
	super := app.Group("/super-admin", superAdminAuth)
	super.Post("/tenants", h.CreateTenant)
	super.Get("/tenants", h.ListTenants)
	super.Put("/tenants/:tenantId", h.UpdateTenant)
	super.Delete("/tenants/:tenantId", h.DeleteTenant)
	super.Post("/tenants/:tenantId/admins", h.CreateAdmin)
	super.Get("/tenants/:tenantId/admins", h.ListAdmins)
	super.Put("/admins/:adminId", h.UpdateAdmin)
	super.Delete("/admins/:adminId", h.DeleteAdmin)
	super.Post("/admins/:adminId/reset-password", h.ResetAdminPassword)
}
