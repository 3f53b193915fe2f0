package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"voicera-console/internal/audit"
	"voicera-console/internal/config"
	"voicera-console/pkg/utils"
)

func auditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Read the console audit trail",
	}
	cmd.AddCommand(auditRecentCommand(), auditMigrateCommand())
	return cmd
}

// openAudit connects to the postgres audit store named by the environment.
func openAudit(cmd *cobra.Command) (*audit.PostgresRepo, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Audit.Store != config.StorePostgres {
		return nil, nil, fmt.Errorf("AUDIT_STORE is %q; the audit commands need postgres", cfg.Audit.Store)
	}
	db, err := utils.OpenPostgres(cmd.Context(), "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{MaxOpenConns: 2})
	if err != nil {
		return nil, nil, err
	}
	return audit.NewPostgresRepo(db), func() { _ = db.Close() }, nil
}

func auditMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the audit table if it does not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, closeDB, err := openAudit(cmd)
			if err != nil {
				return err
			}
			defer closeDB()
			if err := repo.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func auditRecentCommand() *cobra.Command {
	var (
		org   string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Print the newest audit events for an organization",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, closeDB, err := openAudit(cmd)
			if err != nil {
				return err
			}
			defer closeDB()
			events, err := audit.NewService(repo, nil).Recent(cmd.Context(), org, limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tTYPE\tOUTCOME\tACTOR\tAGENT\tTARGET\tMESSAGE")
			for _, e := range events {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					e.CreatedAt.Format(time.RFC3339), e.Type, e.Outcome, e.ActorEmail, e.AgentType, e.Target, e.Message)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "organization id")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum events")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}
