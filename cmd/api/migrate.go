package main

import (
	"context"
	"fmt"
	"io"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/petclinic/records/migrations"
)

func migrateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	c.AddCommand(
		migrateSubCmd("up", "Apply all pending migrations", func(ctx context.Context, p *goose.Provider, w io.Writer) error {
			results, err := p.Up(ctx)
			printResults(w, results)
			return err
		}),
		migrateSubCmd("down", "Roll back the most recent migration", func(ctx context.Context, p *goose.Provider, w io.Writer) error {
			result, err := p.Down(ctx)
			if result != nil {
				printResults(w, []*goose.MigrationResult{result})
			}
			return err
		}),
		migrateSubCmd("status", "Show which migrations are applied", func(ctx context.Context, p *goose.Provider, w io.Writer) error {
			statuses, err := p.Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				fmt.Fprintf(w, "%-8s %05d %s\n", s.State, s.Source.Version, s.Source.Path)
			}
			return nil
		}),
	)
	return c
}

type migrateFunc func(ctx context.Context, p *goose.Provider, w io.Writer) error

func migrateSubCmd(use, short string, run migrateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.close()

			p, err := migrations.NewProvider(cfg.DatabaseDriver, st.sqlDB)
			if err != nil {
				return err
			}
			if err := run(ctx, p, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("migrate %s: %w", use, err)
			}
			return nil
		},
	}
}

func printResults(w io.Writer, results []*goose.MigrationResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "no migrations to run")
		return
	}
	for _, r := range results {
		fmt.Fprintln(w, r.String())
	}
}
