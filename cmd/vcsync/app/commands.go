package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sieteunoseis/vcsync/pkg/apply"
	"github.com/sieteunoseis/vcsync/pkg/diff"
	"github.com/sieteunoseis/vcsync/pkg/errors"
	"github.com/sieteunoseis/vcsync/pkg/netbox"
	"github.com/sieteunoseis/vcsync/pkg/vcenter"
)

// NewServersCommand creates the servers command, listing the configured
// servers and their cache state.
func (a *App) NewServersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "servers",
		Short: "List configured servers and their cache state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.Config()
			if err != nil {
				return err
			}
			r, err := a.Reconciler()
			if err != nil {
				return err
			}

			if len(cfg.Servers) == 0 {
				cmd.Println("No servers configured")
				if cfg.InventoryFile != "" {
					cmd.Printf("Inventory export: %s\n", cfg.InventoryFile)
				}
				return nil
			}

			for _, s := range cfg.Servers {
				cmd.Printf("%s\n", s.Host)
				if s.MFAHint != "" {
					cmd.Printf("  MFA: %s\n", s.MFAHint)
				}
				if snap, ok := r.CachedSnapshot(vcenter.ServerID(s.Host)); ok {
					cmd.Printf("  Cached: %d VMs, fetched %s\n", len(snap.VMs), snap.FetchedAt.Format("2006-01-02 15:04:05 MST"))
				} else {
					cmd.Println("  Cached: no")
				}
			}
			return nil
		},
	}
}

// NewRefreshCommand creates the refresh command.
func (a *App) NewRefreshCommand() *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "refresh [server...]",
		Short: "Fetch server inventories and replace their cached snapshots",
		Long: `Refresh authenticates against each server, pulls its full VM list,
and replaces the cached snapshot. Without arguments every configured
server is refreshed. With --clear the cached snapshots are dropped
instead of refetched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.Reconciler()
			if err != nil {
				return err
			}
			servers, err := a.resolveServers(args)
			if err != nil {
				return err
			}

			if clear {
				for _, server := range servers {
					r.ClearCache(server)
					cmd.Printf("Cleared cache for %s\n", server)
				}
				return nil
			}

			var failed int
			for _, server := range servers {
				a.printMFAHint(cmd, server)
				snap, err := r.Refresh(cmd.Context(), server)
				if err != nil {
					failed++
					cmd.PrintErrf("Refresh failed for %s: %v\n", server, err)
					continue
				}
				cmd.Printf("Refreshed %s: %d VMs\n", server, len(snap.VMs))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d refreshes failed", failed, len(servers))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "drop cached snapshots instead of refetching")
	return cmd
}

// NewCompareCommand creates the compare command.
func (a *App) NewCompareCommand() *cobra.Command {
	var cluster string

	cmd := &cobra.Command{
		Use:   "compare [server]",
		Short: "Compare a server's cached inventory against the asset system",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.Reconciler()
			if err != nil {
				return err
			}
			server, err := a.resolveServer(args)
			if err != nil {
				return err
			}

			result, err := r.Compare(cmd.Context(), server, a.resolveCluster(cluster))
			if err != nil {
				return err
			}
			printResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cluster, "cluster", "c", "", "target cluster (default from config)")
	return cmd
}

// NewImportCommand creates the import command.
func (a *App) NewImportCommand() *cobra.Command {
	var cluster string

	cmd := &cobra.Command{
		Use:   "import [server] vm-name...",
		Short: "Import selected VMs into the asset system",
		Long: `Import writes the named VMs from the server's cached snapshot into the
asset system. VMs that already exist are skipped unless update_existing
is enabled; names not found in the snapshot are reported as skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.Reconciler()
			if err != nil {
				return err
			}
			server, names, err := a.resolveServerAndNames(args)
			if err != nil {
				return err
			}

			report, err := r.ImportSelected(cmd.Context(), server, names, a.resolveCluster(cluster))
			if err != nil {
				return err
			}
			printReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cluster, "cluster", "c", "", "target cluster (default from config)")
	return cmd
}

// NewSyncCommand creates the sync command.
func (a *App) NewSyncCommand() *cobra.Command {
	var (
		cluster string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "sync [server]",
		Short: "Update every asset record that differs from the cached inventory",
		Long: `Sync compares the server's cached inventory against the asset system and
updates every matched record with differing fields. Only the differing
fields are written; records owned fields (tags, roles) are untouched.
Use --dry-run to see the comparison without writing anything.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.Reconciler()
			if err != nil {
				return err
			}
			server, err := a.resolveServer(args)
			if err != nil {
				return err
			}
			target := a.resolveCluster(cluster)

			if dryRun {
				result, err := r.Compare(cmd.Context(), server, target)
				if err != nil {
					return err
				}
				printResult(cmd, result)
				cmd.Println("\nDry run, nothing written")
				return nil
			}

			report, err := r.SyncAllDifferences(cmd.Context(), server, target)
			if err != nil {
				return err
			}
			printReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cluster, "cluster", "c", "", "target cluster (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would change without writing")
	return cmd
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("vcsync %s\n", a.version)
			if a.verbose {
				cmd.Printf("  commit: %s\n", a.commit)
				cmd.Printf("  built:  %s\n", a.date)
			}
		},
	}
}

// resolveServers expands the argument list to server IDs, defaulting to
// every configured server.
func (a *App) resolveServers(args []string) ([]vcenter.ServerID, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		ids := make([]vcenter.ServerID, 0, len(args))
		for _, arg := range args {
			ids = append(ids, vcenter.ServerID(arg))
		}
		return ids, nil
	}
	ids := cfg.ServerIDs()
	if len(ids) == 0 && cfg.InventoryFile != "" {
		ids = []vcenter.ServerID{vcenter.ServerID(cfg.InventoryFile)}
	}
	if len(ids) == 0 {
		return nil, errors.NewValidationError("server", nil, "no servers configured")
	}
	return ids, nil
}

// resolveServer picks the single target server: the argument when given,
// otherwise the sole configured server.
func (a *App) resolveServer(args []string) (vcenter.ServerID, error) {
	if len(args) > 0 {
		return vcenter.ServerID(args[0]), nil
	}
	servers, err := a.resolveServers(nil)
	if err != nil {
		return "", err
	}
	if len(servers) != 1 {
		return "", errors.NewValidationError("server", nil, "multiple servers configured, name one explicitly")
	}
	return servers[0], nil
}

// resolveServerAndNames splits import arguments into a server and VM
// names. With a single configured server the server argument is optional,
// so every argument is a VM name.
func (a *App) resolveServerAndNames(args []string) (vcenter.ServerID, []string, error) {
	cfg, err := a.Config()
	if err != nil {
		return "", nil, err
	}
	for _, s := range cfg.Servers {
		if len(args) > 1 && s.Host == args[0] {
			return vcenter.ServerID(args[0]), args[1:], nil
		}
	}
	server, err := a.resolveServer(nil)
	if err != nil {
		return "", nil, err
	}
	return server, args, nil
}

func (a *App) resolveCluster(flag string) netbox.ClusterID {
	if flag != "" {
		return netbox.ClusterID(flag)
	}
	cfg, err := a.Config()
	if err != nil {
		return ""
	}
	return netbox.ClusterID(cfg.Cluster)
}

func (a *App) printMFAHint(cmd *cobra.Command, server vcenter.ServerID) {
	cfg, err := a.Config()
	if err != nil {
		return
	}
	for _, s := range cfg.Servers {
		if s.Host == server.String() && s.MFAHint != "" {
			cmd.Printf("%s: %s\n", server, s.MFAHint)
		}
	}
}

// printResult renders a comparison for the operator.
func printResult(cmd *cobra.Command, result *diff.Result) {
	for _, w := range result.Warnings {
		cmd.PrintErrf("Warning: %s\n", w)
	}

	if len(result.OnlyInSource) > 0 {
		cmd.Println("Only in source:")
		for _, vm := range result.OnlyInSource {
			cmd.Printf("  + %s (%d vCPU, %d MB, %.0f GB, %s)\n",
				vm.Name, vm.VCPUs, vm.MemoryMB, vm.DiskGB, vm.PowerState)
		}
	}
	if len(result.OnlyInTarget) > 0 {
		cmd.Println("Only in target:")
		for _, vm := range result.OnlyInTarget {
			cmd.Printf("  - %s\n", vm.Name)
		}
	}
	for _, pair := range result.Matched {
		if pair.InSync() {
			continue
		}
		fields := make([]string, 0, len(pair.Diffs))
		for _, f := range pair.Diffs {
			fields = append(fields, string(f))
		}
		cmd.Printf("  ~ %s: %s\n", pair.Key, strings.Join(fields, ", "))
	}

	cmd.Println(result.String())
}

// printReport renders an apply report for the operator.
func printReport(cmd *cobra.Command, report *apply.Report) {
	for _, item := range report.Items {
		switch item.Outcome {
		case apply.OutcomeCreated:
			cmd.Printf("  created %s\n", item.TargetName)
		case apply.OutcomeUpdated:
			cmd.Printf("  updated %s\n", item.TargetName)
		case apply.OutcomeSkipped:
			cmd.Printf("  skipped %s (%s)\n", item.TargetName, item.Reason)
		case apply.OutcomeFailed:
			cmd.PrintErrf("  failed  %s: %s\n", item.TargetName, item.Reason)
		}
	}
	cmd.Println(report.String())
}
