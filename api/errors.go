// api/errors.go - Shared error envelope
//
// Every non-2xx response carries the same JSON shape:
//
//	{"error": {"code": "...", "message": "...", "details": {...}}}
package api

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// Machine-readable error codes.
const (
	CodeMissingToken         = "MISSING_TOKEN"
	CodeInvalidAuthFormat    = "INVALID_AUTH_FORMAT"
	CodeTokenExpired         = "TOKEN_EXPIRED"
	CodeInvalidToken         = "INVALID_TOKEN"
	CodeInsufficientPerms    = "INSUFFICIENT_PERMISSIONS"
	CodeCrossTenantAccess    = "CROSS_TENANT_ACCESS"
	CodeTenantNotFound       = "TENANT_NOT_FOUND"
	CodeTenantInactive       = "TENANT_INACTIVE"
	CodeAdminNotFound        = "ADMIN_NOT_FOUND"
	CodeSessionNotFound      = "SESSION_NOT_FOUND"
	CodeSessionCompleted     = "SESSION_COMPLETED"
	CodeRoundNotFound        = "ROUND_NOT_FOUND"
	CodeParticipantNotFound  = "PARTICIPANT_NOT_FOUND"
	CodeParticipationGone    = "PARTICIPATION_NOT_FOUND"
	CodeMaxRoundsReached     = "MAX_ROUNDS_REACHED"
	CodeDuplicateUsername    = "DUPLICATE_USERNAME"
	CodeNicknameTaken        = "NICKNAME_TAKEN"
	CodeDatabaseError        = "DATABASE_ERROR"
	CodeMissingFields        = "MISSING_FIELDS"
	CodeMissingTenantID      = "MISSING_TENANT_ID"
	CodeNoUpdates            = "NO_UPDATES"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeInvalidMediaType     = "INVALID_MEDIA_TYPE"
	CodeInvalidAnswers       = "INVALID_ANSWERS"
	CodeInvalidCorrectAnswer = "INVALID_CORRECT_ANSWER"
	CodeInvalidAnswer        = "INVALID_ANSWER"
	CodeInvalidStatus        = "INVALID_STATUS"
	CodeInvalidPassword      = "INVALID_PASSWORD"
	CodeInvalidTenantAssign  = "INVALID_TENANT_ASSIGNMENT"
	CodeInvalidFile          = "INVALID_FILE"
	CodeInternal             = "INTERNAL_ERROR"
)

// ErrorBody is the wire shape of the error envelope.
type ErrorBody struct {
	Error ErrorInfo `json:"error"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

// ErrHandled is returned by Error and ErrorDetails after the envelope has
// been written. It lets helpers signal "stop, response sent" through an
// error return; the app ErrorHandler swallows it without touching the
// response.
var ErrHandled = errors.New("response already written")

// Error writes the standard envelope with empty details.
func Error(c *fiber.Ctx, status int, code, message string) error {
	return ErrorDetails(c, status, code, message, nil)
}

// ErrorDetails writes the standard envelope. A nil details is serialized
// as an empty object so clients can always index into it.
func ErrorDetails(c *fiber.Ctx, status int, code, message string, details any) error {
	if details == nil {
		details = map[string]any{}
	}
	if err := c.Status(status).JSON(ErrorBody{Error: ErrorInfo{
		Code:    code,
		Message: message,
		Details: details,
	}}); err != nil {
		return err
	}
	return ErrHandled
}

// ErrorHandler is the app-level catch-all. Fiber routing errors keep their
// status; everything else becomes a 500 with the shared envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrHandled) {
		return nil
	}
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	if status >= 500 {
		log.Printf("unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		Error(c, status, CodeInternal, "Internal server error")
		return nil
	}
	Error(c, status, CodeInternal, err.Error())
	return nil
}
