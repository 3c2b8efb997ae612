// Package netbox defines the asset-system collaborator for vcsync: the
// target VM record shape and the minimal client surface the reconciliation
// core needs (list, create, partial update). The asset system's own data
// store and UI are out of scope; this package only models the contract,
// plus in-memory and file-backed implementations for tests and offline use.
package netbox

import (
	"context"

	"github.com/sieteunoseis/vcsync/pkg/vcenter"
)

// ClusterID identifies the target cluster imported VMs are assigned to.
type ClusterID string

// String returns the string representation of a cluster ID.
func (id ClusterID) String() string {
	return string(id)
}

// VM is one asset-system inventory record. The reconciliation core only
// reads these, except through CreateVM/UpdateVM during an apply batch.
// Tag, Role and Platform are operator-owned metadata: the core sets them on
// create (when defaults are configured) and never touches them on update.
type VM struct {
	ID         string             `yaml:"id" json:"id"`
	Name       string             `yaml:"name" json:"name"`
	Cluster    ClusterID          `yaml:"cluster" json:"cluster"`
	VCPUs      int                `yaml:"vcpus" json:"vcpus"`
	MemoryMB   int64              `yaml:"memory_mb" json:"memory_mb"`
	DiskGB     float64            `yaml:"disk_gb" json:"disk_gb"`
	PowerState vcenter.PowerState `yaml:"power_state" json:"power_state"`
	Tag        string             `yaml:"tag,omitempty" json:"tag,omitempty"`
	Role       string             `yaml:"role,omitempty" json:"role,omitempty"`
	Platform   string             `yaml:"platform,omitempty" json:"platform,omitempty"`
}

// VMSpec describes a VM to create in the asset system.
type VMSpec struct {
	Name       string
	Cluster    ClusterID
	VCPUs      int
	MemoryMB   int64
	DiskGB     float64
	PowerState vcenter.PowerState
	Tag        string
	Role       string
	Platform   string
}

// VMFields is a partial update. Nil fields are left untouched on the target
// record, which is how the core avoids overwriting unrelated user edits.
type VMFields struct {
	VCPUs      *int
	MemoryMB   *int64
	DiskGB     *float64
	PowerState *vcenter.PowerState
}

// Empty reports whether the update carries no field changes.
func (f VMFields) Empty() bool {
	return f.VCPUs == nil && f.MemoryMB == nil && f.DiskGB == nil && f.PowerState == nil
}

// Client is the asset-system collaborator contract. Calls are not assumed
// to be transactional across one another.
type Client interface {
	// ListVMs returns the VM records scoped to a cluster. An empty cluster
	// ID returns all records.
	ListVMs(ctx context.Context, cluster ClusterID) ([]VM, error)

	// CreateVM creates a record and returns its new ID.
	CreateVM(ctx context.Context, spec VMSpec) (string, error)

	// UpdateVM applies a partial update to an existing record.
	UpdateVM(ctx context.Context, id string, fields VMFields) error
}
