package apply

import (
	"context"

	"github.com/agentstation/utc"
	"golang.org/x/sync/errgroup"

	"github.com/sieteunoseis/vcsync/pkg/diff"
	"github.com/sieteunoseis/vcsync/pkg/errors"
	"github.com/sieteunoseis/vcsync/pkg/logging"
	"github.com/sieteunoseis/vcsync/pkg/match"
	"github.com/sieteunoseis/vcsync/pkg/netbox"
	"github.com/sieteunoseis/vcsync/pkg/vcenter"
)

// defaultWorkers bounds per-batch concurrency against the target system.
const defaultWorkers = 4

// Options configures an apply batch.
type Options struct {
	// Matcher pairs selected VMs with existing target records.
	Matcher *match.Matcher

	// NormalizeNames strips the domain suffix and lowercases the name a
	// VM is created or updated under.
	NormalizeNames bool

	// UpdateExisting allows updating matched records. When false, matched
	// VMs are skipped (import-only mode).
	UpdateExisting bool

	// Defaults applied on create when non-empty. Empty means "do not set".
	DefaultTag      string
	DefaultRole     string
	DefaultPlatform string

	// Workers caps concurrent target writes. Zero means the default.
	Workers int
}

// Applier executes import/sync batches against one asset-system client.
type Applier struct {
	client netbox.Client
	opts   Options
}

// New creates an Applier.
func New(client netbox.Client, opts Options) *Applier {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	return &Applier{client: client, opts: opts}
}

// Apply processes the selection as independent create-or-update operations
// against the target cluster. The target listing is taken once at batch
// start, so all lookups share one snapshot. Per-item failures are recorded
// as OutcomeFailed; only a failure to take that initial listing fails the
// batch as a whole.
func (a *Applier) Apply(ctx context.Context, selection []vcenter.VM, cluster netbox.ClusterID) (*Report, error) {
	log := logging.Ctx(ctx)
	report := &Report{
		Items:     make([]ItemResult, len(selection)),
		StartedAt: utc.Now(),
	}

	existing, err := a.client.ListVMs(ctx, cluster)
	if err != nil {
		return nil, errors.WrapConnection(cluster.String(), err)
	}
	existingByKey := make(map[string]netbox.VM, len(existing))
	for _, vm := range existing {
		existingByKey[a.opts.Matcher.Key(vm.Name)] = vm
	}

	g := &errgroup.Group{}
	g.SetLimit(a.opts.Workers)
	for i, vm := range selection {
		i, vm := i, vm
		g.Go(func() error {
			report.Items[i] = a.applyOne(ctx, vm, cluster, existingByKey)
			return nil
		})
	}
	// Workers record failures in their own slot and never return an error,
	// so this wait cannot fail; the batch always runs to completion.
	_ = g.Wait()

	report.FinishedAt = utc.Now()
	report.summarize()
	log.Info().
		Str("cluster", cluster.String()).
		Int("selected", len(selection)).
		Str("result", report.String()).
		Msg("Apply batch finished")
	return report, nil
}

// applyOne processes a single VM and never panics the batch: any write
// failure comes back as an OutcomeFailed item.
func (a *Applier) applyOne(ctx context.Context, vm vcenter.VM, cluster netbox.ClusterID, existingByKey map[string]netbox.VM) ItemResult {
	item := ItemResult{VM: vm, TargetName: a.targetName(vm)}

	target, found := existingByKey[a.opts.Matcher.Key(vm.Name)]
	if !found {
		id, err := a.client.CreateVM(ctx, netbox.VMSpec{
			Name:       item.TargetName,
			Cluster:    cluster,
			VCPUs:      vm.VCPUs,
			MemoryMB:   vm.MemoryMB,
			DiskGB:     vm.DiskGB,
			PowerState: vm.PowerState,
			Tag:        a.opts.DefaultTag,
			Role:       a.opts.DefaultRole,
			Platform:   a.opts.DefaultPlatform,
		})
		if err != nil {
			item.Outcome = OutcomeFailed
			item.Reason = errors.NewApplyError(item.TargetName, "create", err).Error()
			return item
		}
		item.Outcome = OutcomeCreated
		item.TargetID = id
		return item
	}

	item.TargetID = target.ID
	if !a.opts.UpdateExisting {
		item.Outcome = OutcomeSkipped
		item.Reason = "already exists"
		return item
	}

	fields := updateFields(vm, target)
	if fields.Empty() {
		item.Outcome = OutcomeSkipped
		item.Reason = "already in sync"
		return item
	}

	if err := a.client.UpdateVM(ctx, target.ID, fields); err != nil {
		item.Outcome = OutcomeFailed
		item.Reason = errors.NewApplyError(item.TargetName, "update", err).Error()
		return item
	}
	item.Outcome = OutcomeUpdated
	return item
}

// targetName computes the name a VM is written under.
func (a *Applier) targetName(vm vcenter.VM) string {
	if a.opts.NormalizeNames {
		return match.Hostname(vm.Name)
	}
	return vm.Name
}

// updateFields builds the partial update carrying only the fields that
// differ. Fields outside the comparable set are never written, so
// user-edited target metadata survives a sync.
func updateFields(src vcenter.VM, tgt netbox.VM) netbox.VMFields {
	var fields netbox.VMFields
	for _, field := range diff.Fields(src, tgt) {
		switch field {
		case diff.FieldVCPUs:
			v := src.VCPUs
			fields.VCPUs = &v
		case diff.FieldMemoryMB:
			v := src.MemoryMB
			fields.MemoryMB = &v
		case diff.FieldDiskGB:
			v := src.DiskGB
			fields.DiskGB = &v
		case diff.FieldPowerState:
			v := src.PowerState
			fields.PowerState = &v
		}
	}
	return fields
}
