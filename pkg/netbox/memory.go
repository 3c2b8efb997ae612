package netbox

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/sieteunoseis/vcsync/pkg/errors"
)

// MemoryClient is an in-memory Client implementation. It is the default
// collaborator in tests and backs the file client's working set.
type MemoryClient struct {
	mu  sync.RWMutex
	vms map[string]VM
}

// NewMemoryClient creates an in-memory client seeded with the given VMs.
// Seeded records without an ID are assigned one.
func NewMemoryClient(vms ...VM) *MemoryClient {
	c := &MemoryClient{vms: make(map[string]VM, len(vms))}
	for _, vm := range vms {
		if vm.ID == "" {
			vm.ID = uuid.NewString()
		}
		c.vms[vm.ID] = vm
	}
	return c
}

// ListVMs returns the records scoped to a cluster, ordered by name for
// deterministic output.
func (c *MemoryClient) ListVMs(_ context.Context, cluster ClusterID) ([]VM, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	vms := make([]VM, 0, len(c.vms))
	for _, vm := range c.vms {
		if cluster != "" && vm.Cluster != cluster {
			continue
		}
		vms = append(vms, vm)
	}
	sort.Slice(vms, func(i, j int) bool { return vms[i].Name < vms[j].Name })
	return vms, nil
}

// CreateVM creates a record and returns its new ID.
func (c *MemoryClient) CreateVM(_ context.Context, spec VMSpec) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.NewString()
	c.vms[id] = VM{
		ID:         id,
		Name:       spec.Name,
		Cluster:    spec.Cluster,
		VCPUs:      spec.VCPUs,
		MemoryMB:   spec.MemoryMB,
		DiskGB:     spec.DiskGB,
		PowerState: spec.PowerState,
		Tag:        spec.Tag,
		Role:       spec.Role,
		Platform:   spec.Platform,
	}
	return id, nil
}

// UpdateVM applies a partial update to an existing record.
func (c *MemoryClient) UpdateVM(_ context.Context, id string, fields VMFields) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	vm, ok := c.vms[id]
	if !ok {
		return errors.NewNotFoundError("vm", id)
	}
	if fields.VCPUs != nil {
		vm.VCPUs = *fields.VCPUs
	}
	if fields.MemoryMB != nil {
		vm.MemoryMB = *fields.MemoryMB
	}
	if fields.DiskGB != nil {
		vm.DiskGB = *fields.DiskGB
	}
	if fields.PowerState != nil {
		vm.PowerState = *fields.PowerState
	}
	c.vms[id] = vm
	return nil
}

// Get returns one record by ID.
func (c *MemoryClient) Get(id string) (VM, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vm, ok := c.vms[id]
	return vm, ok
}

// Len returns the number of records.
func (c *MemoryClient) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vms)
}
