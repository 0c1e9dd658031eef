package main

import (
	"fmt"
	"os"

	"leadqualify_backend/internal/communications"
	"leadqualify_backend/internal/email"
	"leadqualify_backend/internal/events"
	"leadqualify_backend/internal/leads"
	"leadqualify_backend/internal/leads/domain"
	"leadqualify_backend/internal/leads/pipeline"
	"leadqualify_backend/internal/leads/repository"
	"leadqualify_backend/internal/notification"
	"leadqualify_backend/internal/scheduler"
	"leadqualify_backend/migrations"
	"leadqualify_backend/platform/db"
	"leadqualify_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var tenant string
	var limit int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one qualification batch now",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := parseTenant(tenant)
			if err != nil {
				return err
			}

			pool, err := db.NewPool(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			poller, err := buildPoller(pool)
			if err != nil {
				return err
			}

			summary, err := poller.RunBatch(cmd.Context(), pipeline.BatchParams{
				TenantID: tenantID,
				Limit:    limit,
				Trigger:  pipeline.TriggerCLI,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(os.Stdout, summary.Response())
			}
			renderSummary(os.Stdout, summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "", "restrict the batch to one tenant id")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum leads to claim (default from config)")
	return cmd
}

func newPendingCmd() *cobra.Command {
	var tenant, status string
	var limit int
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List leads by status, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := parseTenant(tenant)
			if err != nil {
				return err
			}
			leadStatus := domain.LeadStatus(status)
			if !domain.IsKnownStatus(leadStatus) {
				return fmt.Errorf("unknown status %q", status)
			}

			pool, err := db.NewPool(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			items, err := repository.New(pool).ListByStatus(cmd.Context(), repository.ListParams{
				Status:   leadStatus,
				TenantID: tenantID,
				Limit:    limit,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(os.Stdout, items)
			}
			renderLeads(os.Stdout, items)
			return nil
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant id")
	cmd.Flags().StringVar(&status, "status", string(domain.LeadStatusNew), "lead status")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows")
	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <lead-id>",
		Short: "Show one lead with its communication history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			leadID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid lead id: %w", err)
			}

			pool, err := db.NewPool(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			lead, err := repository.New(pool).GetByID(cmd.Context(), leadID)
			if err != nil {
				return fmt.Errorf("load lead: %w", err)
			}
			comms, err := communications.NewModule(pool, validator.New()).Service().ListByLead(cmd.Context(), leadID, nil)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(os.Stdout, map[string]any{"lead": lead, "communications": comms})
			}
			renderLeads(os.Stdout, []domain.Lead{lead})
			renderCommunications(os.Stdout, comms)
			return nil
		},
	}
}

func newEnqueueCmd() *cobra.Command {
	var tenant string
	var limit int
	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Queue a qualification batch for the scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := parseTenant(tenant)
			if err != nil {
				return err
			}

			client, err := scheduler.NewClient(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			taskID, err := client.EnqueueQualifyBatch(cmd.Context(), tenantID, limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(os.Stdout, map[string]any{"queued": true, "taskId": taskID})
			}
			fmt.Fprintf(os.Stdout, "queued qualification run %s\n", taskID)
			return nil
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "", "restrict the batch to one tenant id")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum leads to claim (default from config)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	migrate := &cobra.Command{Use: "migrate", Short: "Manage database migrations"}
	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.RunMigrations(cmd.Context(), cfg, migrations.FS); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "migrations applied")
			return nil
		},
	})
	migrate.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return db.MigrationStatus(cmd.Context(), cfg, migrations.FS)
		},
	})
	return migrate
}

// buildPoller wires the same pipeline the scheduler runs, including the
// qualified-lead email.
func buildPoller(pool *pgxpool.Pool) (*pipeline.Poller, error) {
	bus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize email sender: %w", err)
	}

	val := validator.New()
	comms := communications.NewModule(pool, val)
	notification.New(sender, comms.Service(), cfg, log).RegisterHandlers(bus)

	module, err := leads.NewModule(pool, bus, val, cfg, log)
	if err != nil {
		return nil, err
	}
	return module.Poller(), nil
}

func parseTenant(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --tenant: %w", err)
	}
	return &id, nil
}

