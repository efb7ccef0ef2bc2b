// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/canonical/console-sync/internal/api"
	"github.com/canonical/console-sync/internal/config"
	"github.com/canonical/console-sync/internal/format"
	"github.com/canonical/console-sync/internal/logging"
	"github.com/canonical/console-sync/internal/monitoring"
	"github.com/canonical/console-sync/internal/tracing"
	"github.com/canonical/console-sync/internal/types"
	"github.com/canonical/console-sync/pkg/store"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
)

var syncTeamID int

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "sync runs a one-shot sync for a team",
	Long:  `Fetch the team's members, invitations and every tenant's resources once, then print the per-tenant outcomes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context())
	},
}

func init() {
	syncCmd.Flags().IntVar(&syncTeamID, "team", 0, "id of the team to sync")
	syncCmd.MarkFlagRequired("team")
	rootCmd.AddCommand(syncCmd)
}

func runSync(ctx context.Context) error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		return fmt.Errorf("issues with environment sourcing: %s", err)
	}

	logger := logging.NewLogger(specs.LogLevel)
	defer logger.Sync()

	// One-shot run: no metrics endpoint or trace collector to report to.
	monitor := monitoring.NewNoopMonitor("console-sync")
	tracer := tracing.NewNoopTracer()

	client := api.NewClient(specs.APIEndpoint, specs.APITimeout, tracer, monitor, logger)
	s := store.New(client, tracer, monitor, logger)

	snap, err := loadSnapshot(specs.SnapshotPath)
	if err != nil {
		return err
	}
	if err := s.Initialize(ctx, snap); err != nil {
		logger.Warnf("store initialization incomplete: %v", err)
	}

	if err := s.SetActiveTeam(syncTeamID); err != nil {
		return err
	}
	if err := s.FetchTeamData(ctx); err != nil {
		return err
	}

	outcomes, err := s.FetchAllTenantData(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "TENANT\tREGION\tSTATUS\tREASON")
	for _, outcome := range outcomes {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", outcome.TenantID, s.RegionNameForTenant(tenantByID(s, outcome.TenantID)), outcome.Status, outcome.Reason)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	images := s.Images().ForActiveTeam()
	var imageBytes float64
	for _, image := range images {
		imageBytes += float64(image.Size)
	}
	fmt.Printf(
		"Synced %d instances, %d volumes, %d images (%s)\n",
		len(s.Instances().ForActiveTeam()),
		len(s.Volumes().ForActiveTeam()),
		len(images),
		format.Bytes(imageBytes, 1),
	)
	return nil
}

func tenantByID(s *store.Store, tenantID int) types.Tenant {
	for _, tenant := range s.Tenants() {
		if tenant.ID == tenantID {
			return tenant
		}
	}
	return types.Tenant{ID: tenantID}
}
