// models/models.go - Core entities for the multi-tenant quiz backend
package models

// Tenant is an isolated organization partition. Tenants are soft-deleted
// only (status flips to "inactive"), never physically removed.
type Tenant struct {
	TenantID    string         `json:"tenantId"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      string         `json:"status"` // active | inactive
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
	Settings    map[string]any `json:"settings"`
}

// Admin is a console user. Super admins carry no tenantId; tenant admins
// are confined to one tenant. Admins are hard-deleted.
type Admin struct {
	AdminID      string `json:"adminId"`
	TenantID     string `json:"tenantId,omitempty"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash,omitempty"`
	Role         string `json:"role"` // super_admin | tenant_admin
	Email        string `json:"email"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// Public returns a copy safe for API responses (no password hash).
func (a Admin) Public() Admin {
	a.PasswordHash = ""
	return a
}

// QuizSession is a quiz owned by a tenant. tenantId is stamped at creation
// and never reassigned; legacy sessions may lack it entirely.
type QuizSession struct {
	SessionID      string `json:"sessionId"`
	TenantID       string `json:"tenantId,omitempty"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	MediaType      string `json:"mediaType"` // none | audio | image
	CreatedBy      string `json:"createdBy"`
	CreatedAt      int64  `json:"createdAt"`
	UpdatedAt      int64  `json:"updatedAt,omitempty"`
	RoundCount     int    `json:"roundCount"`
	Status         string `json:"status"` // draft | active | completed
	CurrentRound   int    `json:"currentRound,omitempty"`
	RoundStartedAt int64  `json:"roundStartedAt,omitempty"`
}

// QuizRound is keyed by (sessionId, roundNumber). A session holds at most
// MaxRoundsPerSession rounds.
type QuizRound struct {
	RoundID       string   `json:"roundId"`
	SessionID     string   `json:"sessionId"`
	RoundNumber   int      `json:"roundNumber"`
	Question      string   `json:"question"`
	AudioKey      string   `json:"audioKey,omitempty"`
	ImageKey      string   `json:"imageKey,omitempty"`
	Answers       []string `json:"answers"`
	CorrectAnswer int      `json:"correctAnswer"` // index 0-3
	CreatedAt     int64    `json:"createdAt"`
}

// MediaKey returns whichever media object key the round carries, if any.
func (r QuizRound) MediaKey() string {
	if r.AudioKey != "" {
		return r.AudioKey
	}
	return r.ImageKey
}

// GlobalParticipant is a participant identity scoped to a tenant,
// independent of any single session.
type GlobalParticipant struct {
	ParticipantID string `json:"participantId"`
	TenantID      string `json:"tenantId"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar"`
	Token         string `json:"token,omitempty"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// Profile returns a copy without the stored bearer token.
func (p GlobalParticipant) Profile() GlobalParticipant {
	p.Token = ""
	return p
}

// SessionParticipation is the join record and running score for one
// participant in one session. At most one exists per (participant, session).
type SessionParticipation struct {
	ParticipationID string `json:"participationId"`
	ParticipantID   string `json:"participantId"`
	SessionID       string `json:"sessionId"`
	TenantID        string `json:"tenantId,omitempty"`
	JoinedAt        string `json:"joinedAt"`
	TotalPoints     int    `json:"totalPoints"`
	CorrectAnswers  int    `json:"correctAnswers"`
}

// Answer is append-only; rows are never updated once written.
type Answer struct {
	AnswerID        string `json:"answerId"`
	ParticipantID   string `json:"participantId"`
	ParticipationID string `json:"participationId,omitempty"`
	SessionID       string `json:"sessionId"`
	TenantID        string `json:"tenantId,omitempty"`
	RoundNumber     int    `json:"roundNumber"`
	Answer          int    `json:"answer"`
	IsCorrect       bool   `json:"isCorrect"`
	Points          int    `json:"points"`
	SubmittedAt     int64  `json:"submittedAt"`
}
