package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"musicquiz/auth"
	"musicquiz/config"
	"musicquiz/models"
	"musicquiz/store"
)

type runner struct {
	store  store.Store
	tables config.Tables
	dryRun bool
}

func (r *runner) logf(format string, args ...any) {
	prefix := ""
	if r.dryRun {
		prefix = "[dry-run] "
	}
	fmt.Printf(prefix+format+"\n", args...)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func defaultTenantCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default-tenant",
		Short: "Create the default tenant if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			r, err := newRunner(ctx)
			if err != nil {
				return err
			}
			return r.defaultTenant(ctx)
		},
	}
}

func (r *runner) defaultTenant(ctx context.Context) error {
	var tenant models.Tenant
	found, err := r.store.Get(ctx, r.tables.Tenants, store.Key{"tenantId": DefaultTenantID}, &tenant)
	if err != nil {
		return err
	}
	if found {
		r.logf("default tenant already exists (status=%s)", tenant.Status)
		return nil
	}
	now := timestamp()
	tenant = models.Tenant{
		TenantID:    DefaultTenantID,
		Name:        "Default",
		Description: "Default tenant for pre-tenancy data",
		Status:      "active",
		CreatedAt:   now,
		UpdatedAt:   now,
		Settings:    map[string]any{},
	}
	r.logf("creating default tenant %s", DefaultTenantID)
	if r.dryRun {
		return nil
	}
	return r.store.Put(ctx, r.tables.Tenants, tenant)
}

func createSuperAdminCmd() *cobra.Command {
	var username, password, email string
	cmd := &cobra.Command{
		Use:   "create-super-admin",
		Short: "Bootstrap a super admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			r, err := newRunner(ctx)
			if err != nil {
				return err
			}
			return r.createSuperAdmin(ctx, username, password, email)
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "admin username")
	cmd.Flags().StringVar(&password, "password", "", "admin password (min 8 chars)")
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

func (r *runner) createSuperAdmin(ctx context.Context, username, password, email string) error {
	if err := auth.ValidatePassword(password); err != nil {
		return err
	}
	var existing []models.Admin
	if err := r.store.Query(ctx, r.tables.Admins, store.IndexUsername, "username", username, &existing); err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("username %q already exists", username)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	now := timestamp()
	admin := models.Admin{
		AdminID:      uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         "super_admin",
		Email:        email,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.logf("creating super admin %s (%s)", username, admin.AdminID)
	if r.dryRun {
		return nil
	}
	return r.store.Put(ctx, r.tables.Admins, admin)
}

func backfillSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill-sessions",
		Short: "Stamp the default tenant on sessions without one",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			r, err := newRunner(ctx)
			if err != nil {
				return err
			}
			return r.backfillSessions(ctx)
		},
	}
}

func (r *runner) backfillSessions(ctx context.Context) error {
	var sessions []models.QuizSession
	if err := r.store.Scan(ctx, r.tables.Sessions, &sessions); err != nil {
		return err
	}
	updated := 0
	for _, s := range sessions {
		if s.TenantID != "" {
			continue
		}
		r.logf("session %s (%q): tenantId -> %s", s.SessionID, s.Title, DefaultTenantID)
		updated++
		if r.dryRun {
			continue
		}
		set := map[string]any{"tenantId": DefaultTenantID}
		if err := r.store.Update(ctx, r.tables.Sessions, store.Key{"sessionId": s.SessionID}, set); err != nil {
			return err
		}
	}
	r.logf("done: %d of %d sessions updated", updated, len(sessions))
	return nil
}

func backfillAdminsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill-admins",
		Short: "Stamp missing role/tenantId on admins, skipping super admins",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			r, err := newRunner(ctx)
			if err != nil {
				return err
			}
			return r.backfillAdmins(ctx)
		},
	}
}

func (r *runner) backfillAdmins(ctx context.Context) error {
	var admins []models.Admin
	if err := r.store.Scan(ctx, r.tables.Admins, &admins); err != nil {
		return err
	}
	updated := 0
	for _, a := range admins {
		if a.Role == "super_admin" {
			continue
		}
		set := map[string]any{}
		if a.Role == "" {
			set["role"] = "tenant_admin"
		}
		if a.TenantID == "" {
			set["tenantId"] = DefaultTenantID
		}
		if len(set) == 0 {
			continue
		}
		r.logf("admin %s (%s): %v", a.AdminID, a.Username, set)
		updated++
		if r.dryRun {
			continue
		}
		if err := r.store.Update(ctx, r.tables.Admins, store.Key{"adminId": a.AdminID}, set); err != nil {
			return err
		}
	}
	r.logf("done: %d of %d admins updated", updated, len(admins))
	return nil
}

func backfillAnswersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill-answers",
		Short: "Resolve missing participationId/tenantId on answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			r, err := newRunner(ctx)
			if err != nil {
				return err
			}
			return r.backfillAnswers(ctx)
		},
	}
}

func (r *runner) backfillAnswers(ctx context.Context) error {
	var answers []models.Answer
	if err := r.store.Scan(ctx, r.tables.Answers, &answers); err != nil {
		return err
	}
	// One participation lookup per participant, not per answer.
	cache := map[string][]models.SessionParticipation{}
	updated, skipped := 0, 0
	for _, a := range answers {
		if a.ParticipationID != "" && a.TenantID != "" {
			continue
		}
		participations, ok := cache[a.ParticipantID]
		if !ok {
			if err := r.store.Query(ctx, r.tables.Participations, store.IndexParticipant, "participantId", a.ParticipantID, &participations); err != nil {
				return err
			}
			cache[a.ParticipantID] = participations
		}
		var match *models.SessionParticipation
		for i := range participations {
			if participations[i].SessionID == a.SessionID {
				match = &participations[i]
				break
			}
		}
		if match == nil {
			r.logf("answer %s: no participation found, skipping", a.AnswerID)
			skipped++
			continue
		}
		set := map[string]any{}
		if a.ParticipationID == "" {
			set["participationId"] = match.ParticipationID
		}
		if a.TenantID == "" && match.TenantID != "" {
			set["tenantId"] = match.TenantID
		}
		if len(set) == 0 {
			continue
		}
		r.logf("answer %s: %v", a.AnswerID, set)
		updated++
		if r.dryRun {
			continue
		}
		if err := r.store.Update(ctx, r.tables.Answers, store.Key{"answerId": a.AnswerID}, set); err != nil {
			return err
		}
	}
	r.logf("done: %d answers updated, %d skipped", updated, skipped)
	return nil
}
