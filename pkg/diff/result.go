// Package diff compares a cached source inventory snapshot against an
// asset-system listing and partitions every VM into exactly one of three
// buckets: only in source, only in target, or matched with a per-field
// diff set.
package diff

import (
	"fmt"
	"strings"

	"github.com/sieteunoseis/vcsync/pkg/netbox"
	"github.com/sieteunoseis/vcsync/pkg/vcenter"
)

// Field names a comparable spec field.
type Field string

// The comparable field set. Fields outside this set belong to the asset
// system's owner and are never compared or written.
const (
	FieldVCPUs      Field = "vcpus"
	FieldMemoryMB   Field = "memory_mb"
	FieldDiskGB     Field = "disk_gb"
	FieldPowerState Field = "power_state"
)

// Pair is one matched source/target couple with the set of fields that
// differ between them.
type Pair struct {
	Key    string
	Source vcenter.VM
	Target netbox.VM
	Diffs  []Field
}

// InSync reports whether the pair has no differing fields.
func (p Pair) InSync() bool {
	return len(p.Diffs) == 0
}

// Result is one comparison run. It is derived from exactly one cache
// snapshot and one target listing, produced fresh on every run and never
// mutated afterwards. All slices are ordered by match key.
type Result struct {
	OnlyInSource []vcenter.VM
	OnlyInTarget []netbox.VM
	Matched      []Pair

	// Warnings surfaces data-quality conditions (duplicate match keys)
	// that were resolved by last-write-wins rather than failing the run.
	Warnings []string

	Summary Summary
}

// Summary holds counts by partition.
type Summary struct {
	SourceOnly int
	TargetOnly int
	InSync     int
	Differing  int
}

// Total returns the number of comparison results across all partitions.
func (s Summary) Total() int {
	return s.SourceOnly + s.TargetOnly + s.InSync + s.Differing
}

// HasDifferences reports whether anything would change on a full sync.
func (r *Result) HasDifferences() bool {
	return r.Summary.SourceOnly > 0 || r.Summary.Differing > 0
}

// DifferingSources returns the source VMs of every matched pair that has
// at least one differing field, in result order.
func (r *Result) DifferingSources() []vcenter.VM {
	var vms []vcenter.VM
	for _, p := range r.Matched {
		if !p.InSync() {
			vms = append(vms, p.Source)
		}
	}
	return vms
}

// String returns a human-readable summary of the comparison.
func (r *Result) String() string {
	if r.Summary.Total() == 0 {
		return "No VMs to compare"
	}

	parts := []string{}
	if r.Summary.SourceOnly > 0 {
		parts = append(parts, fmt.Sprintf("%d only in source", r.Summary.SourceOnly))
	}
	if r.Summary.TargetOnly > 0 {
		parts = append(parts, fmt.Sprintf("%d only in target", r.Summary.TargetOnly))
	}
	if r.Summary.Differing > 0 {
		parts = append(parts, fmt.Sprintf("%d differing", r.Summary.Differing))
	}
	if r.Summary.InSync > 0 {
		parts = append(parts, fmt.Sprintf("%d in sync", r.Summary.InSync))
	}
	return fmt.Sprintf("Comparison: %s", strings.Join(parts, ", "))
}
