// Command migrate runs one-off data maintenance jobs against the live
// tables: bootstrapping the default tenant and super admin, and
// backfilling tenancy fields on pre-tenancy rows.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"musicquiz/config"
	"musicquiz/store"
)

// DefaultTenantID is the well-known tenant assigned to pre-tenancy data.
const DefaultTenantID = "00000000-0000-0000-0000-000000000001"

var dryRun bool

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env")
	}

	root := &cobra.Command{
		Use:   "migrate",
		Short: "Data migration and bootstrap jobs",
	}
	root.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")

	root.AddCommand(
		defaultTenantCmd(),
		createSuperAdminCmd(),
		backfillSessionsCmd(),
		backfillAdminsCmd(),
		backfillAnswersCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRunner builds the shared job context. Unlike the server, jobs only
// need the store and table names.
func newRunner(ctx context.Context) (*runner, error) {
	cfg := config.Load()
	st, err := store.NewDynamo(ctx, cfg.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}
	return &runner{store: st, tables: cfg.Tables, dryRun: dryRun}, nil
}
