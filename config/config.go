// config/config.go - Environment-driven settings
package config

import (
	"log"
	"os"
	"strings"
)

// Settings holds everything read from the environment at startup.
type Settings struct {
	Port        string
	JWTSecret   string
	AWSRegion   string
	AudioBucket string
	FrontendURL string
	CORSOrigins string

	Tables Tables
}

// Tables maps each entity to its backing table name.
type Tables struct {
	Tenants        string
	Admins         string
	Sessions       string
	Rounds         string
	Participants   string
	Participations string
	Answers        string
}

// Load reads settings from the environment, applying local-dev fallbacks
// for everything except the required secrets.
func Load() Settings {
	return Settings{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		AWSRegion:   getEnv("AWS_REGION", "eu-central-1"),
		AudioBucket: os.Getenv("AUDIO_BUCKET"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		Tables: Tables{
			Tenants:        getEnv("TENANTS_TABLE", "Tenants"),
			Admins:         getEnv("ADMINS_TABLE", "Admins"),
			Sessions:       getEnv("QUIZ_SESSIONS_TABLE", "QuizSessions"),
			Rounds:         getEnv("QUIZ_ROUNDS_TABLE", "QuizRounds"),
			Participants:   getEnv("GLOBAL_PARTICIPANTS_TABLE", "GlobalParticipants"),
			Participations: getEnv("SESSION_PARTICIPATIONS_TABLE", "SessionParticipations"),
			Answers:        getEnv("ANSWERS_TABLE", "Answers"),
		},
	}
}

// Validate terminates the process when a required variable is missing.
func (s Settings) Validate() {
	var missing []string
	if s.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if s.AudioBucket == "" {
		missing = append(missing, "AUDIO_BUCKET")
	}
	if len(missing) > 0 {
		log.Fatalf("Missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(s.JWTSecret) < 32 {
		log.Fatal("JWT_SECRET must be at least 32 characters")
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
