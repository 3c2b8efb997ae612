// Package vcsync reconciles virtual-machine inventory held by a
// vCenter-style virtualization server against inventory records held by an
// infrastructure-asset system, so an operator can detect drift and
// selectively synchronize one into the other.
//
// The Reconciler is the operator-facing surface: it refreshes per-server
// inventory snapshots, compares a snapshot against the asset system, and
// imports or syncs selected VMs. Collaborators (the virtualization session
// provider and the asset client) are wired in through functional options.
package vcsync

import (
	"context"
	"time"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/sieteunoseis/vcsync/internal/cache"
	"github.com/sieteunoseis/vcsync/internal/fetcher"
	"github.com/sieteunoseis/vcsync/pkg/apply"
	"github.com/sieteunoseis/vcsync/pkg/diff"
	"github.com/sieteunoseis/vcsync/pkg/errors"
	"github.com/sieteunoseis/vcsync/pkg/logging"
	"github.com/sieteunoseis/vcsync/pkg/match"
	"github.com/sieteunoseis/vcsync/pkg/netbox"
	"github.com/sieteunoseis/vcsync/pkg/vcenter"
)

// DefaultTimeout bounds fetches and target listings when no timeout is
// configured.
const DefaultTimeout = 30 * time.Second

// Snapshot is one cached inventory pull for a server.
type Snapshot struct {
	Server    vcenter.ServerID
	VMs       []vcenter.VM
	FetchedAt utc.Time
}

// Reconciler coordinates the fetch, cache, compare and apply workflow over
// the wired collaborators. Each operator action is a single workflow; the
// cache is the only shared state between actions.
type Reconciler struct {
	provider    vcenter.SessionProvider
	client      netbox.Client
	cache       *cache.Cache
	matcher     *match.Matcher
	logger      *zerolog.Logger
	timeout     time.Duration
	credentials func(vcenter.ServerID) vcenter.Credentials

	normalizeNames  bool
	updateExisting  bool
	defaultTag      string
	defaultRole     string
	defaultPlatform string
	workers         int
}

// New creates a Reconciler with the given options. A session provider and
// an asset client are required; everything else has working defaults
// (exact matching, 30s timeout, the package default logger).
func New(opts ...Option) (*Reconciler, error) {
	matcher, _ := match.New(match.ModeExact, "")
	r := &Reconciler{
		cache:       cache.New(),
		matcher:     matcher,
		logger:      logging.Default(),
		timeout:     DefaultTimeout,
		credentials: func(vcenter.ServerID) vcenter.Credentials { return vcenter.Credentials{} },
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.provider == nil {
		return nil, errors.NewConfigError("reconciler", "a session provider is required", nil)
	}
	if r.client == nil {
		return nil, errors.NewConfigError("reconciler", "an asset client is required", nil)
	}
	return r, nil
}

// Refresh pulls the server's inventory through the session provider and
// replaces its cache snapshot. On failure the previous snapshot, if any,
// is left untouched.
func (r *Reconciler) Refresh(ctx context.Context, server vcenter.ServerID) (*Snapshot, error) {
	ctx = logging.WithLogger(ctx, r.logger)
	f := fetcher.New(r.provider, r.cache, r.timeout)
	entry, err := f.Fetch(ctx, server, r.credentials(server))
	if err != nil {
		return nil, err
	}
	return snapshotOf(entry), nil
}

// Compare diffs the server's cached inventory against the target cluster.
// When no snapshot is cached the server is refreshed first. Exactly one
// snapshot and one target listing back each comparison.
func (r *Reconciler) Compare(ctx context.Context, server vcenter.ServerID, cluster netbox.ClusterID) (*diff.Result, error) {
	snap, err := r.snapshot(ctx, server)
	if err != nil {
		return nil, err
	}

	target, err := r.listTarget(ctx, cluster)
	if err != nil {
		return nil, err
	}

	result := diff.Compare(snap.VMs, target, r.matcher)
	r.logger.Info().
		Str("server", server.String()).
		Str("cluster", cluster.String()).
		Str("summary", result.String()).
		Msg("Comparison finished")
	return result, nil
}

// ImportSelected applies the named VMs from the server's cached snapshot to
// the target cluster. Names that do not resolve against the snapshot are
// reported as skipped items rather than failing the batch; outcomes keep
// the order of the names argument.
func (r *Reconciler) ImportSelected(ctx context.Context, server vcenter.ServerID, names []string, cluster netbox.ClusterID) (*apply.Report, error) {
	snap, err := r.snapshot(ctx, server)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]vcenter.VM, len(snap.VMs))
	for _, vm := range snap.VMs {
		byName[vm.Name] = vm
	}

	selection := make([]vcenter.VM, 0, len(names))
	known := make([]bool, len(names))
	for i, name := range names {
		if vm, ok := byName[name]; ok {
			selection = append(selection, vm)
			known[i] = true
		}
	}

	applied, err := r.applier(r.updateExisting).Apply(ctx, selection, cluster)
	if err != nil {
		return nil, err
	}
	return weaveUnknown(applied, names, known), nil
}

// SyncAllDifferences compares and then applies every matched source VM that
// differs from its target record. Updates are always enabled here; that is
// the point of the action.
func (r *Reconciler) SyncAllDifferences(ctx context.Context, server vcenter.ServerID, cluster netbox.ClusterID) (*apply.Report, error) {
	result, err := r.Compare(ctx, server, cluster)
	if err != nil {
		return nil, err
	}
	return r.applier(true).Apply(ctx, result.DifferingSources(), cluster)
}

// CachedSnapshot returns the server's cache entry without fetching.
func (r *Reconciler) CachedSnapshot(server vcenter.ServerID) (*Snapshot, bool) {
	entry, found := r.cache.Get(server)
	if !found {
		return nil, false
	}
	return snapshotOf(entry), true
}

// CachedServers returns the IDs of all servers with a cached snapshot.
func (r *Reconciler) CachedServers() []vcenter.ServerID {
	return r.cache.Servers()
}

// ClearCache drops the server's cached snapshot.
func (r *Reconciler) ClearCache(server vcenter.ServerID) {
	r.cache.Clear(server)
}

// ClearAllCaches drops every cached snapshot.
func (r *Reconciler) ClearAllCaches() {
	r.cache.ClearAll()
}

// snapshot returns the cached entry, refreshing when the cache is empty.
func (r *Reconciler) snapshot(ctx context.Context, server vcenter.ServerID) (*Snapshot, error) {
	if entry, found := r.cache.Get(server); found {
		return snapshotOf(entry), nil
	}
	r.logger.Debug().Str("server", server.String()).Msg("No cached inventory, refreshing")
	return r.Refresh(ctx, server)
}

// listTarget takes the target-side listing, bounded by the same timeout as
// source fetches.
func (r *Reconciler) listTarget(ctx context.Context, cluster netbox.ClusterID) ([]netbox.VM, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	vms, err := r.client.ListVMs(ctx, cluster)
	if err != nil {
		return nil, errors.WrapConnection(cluster.String(), err)
	}
	return vms, nil
}

func (r *Reconciler) applier(updateExisting bool) *apply.Applier {
	return apply.New(r.client, apply.Options{
		Matcher:         r.matcher,
		NormalizeNames:  r.normalizeNames,
		UpdateExisting:  updateExisting,
		DefaultTag:      r.defaultTag,
		DefaultRole:     r.defaultRole,
		DefaultPlatform: r.defaultPlatform,
		Workers:         r.workers,
	})
}

func snapshotOf(entry cache.Entry) *Snapshot {
	return &Snapshot{Server: entry.Server, VMs: entry.VMs, FetchedAt: entry.FetchedAt}
}

// weaveUnknown rebuilds the report in the original names order, inserting a
// skipped item for every name that did not resolve.
func weaveUnknown(applied *apply.Report, names []string, known []bool) *apply.Report {
	unknown := 0
	for _, k := range known {
		if !k {
			unknown++
		}
	}
	if unknown == 0 {
		return applied
	}

	report := &apply.Report{
		Items:      make([]apply.ItemResult, 0, len(names)),
		StartedAt:  applied.StartedAt,
		FinishedAt: applied.FinishedAt,
	}
	next := 0
	for i, name := range names {
		if known[i] {
			report.Items = append(report.Items, applied.Items[next])
			next++
			continue
		}
		report.Items = append(report.Items, apply.ItemResult{
			VM:         vcenter.VM{Name: name},
			TargetName: name,
			Outcome:    apply.OutcomeSkipped,
			Reason:     "not found in cached inventory",
		})
	}
	report.Summary = applied.Summary
	report.Summary.Skipped += unknown
	return report
}
