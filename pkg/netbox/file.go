package netbox

import (
	"context"
	"os"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/sieteunoseis/vcsync/pkg/errors"
)

const fileMode = 0o644

// inventoryFile is the on-disk document shape of a file-backed inventory.
type inventoryFile struct {
	VMs []VM `yaml:"vms"`
}

// FileClient is a Client backed by a single YAML inventory file. It lets the
// CLI run end to end against an exported asset inventory instead of a live
// system; writes are persisted back to the file after every change.
type FileClient struct {
	mu   sync.Mutex
	path string
	mem  *MemoryClient
}

// NewFileClient loads the inventory file at path. A missing file starts an
// empty inventory that is created on first write.
func NewFileClient(path string) (*FileClient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.WrapIO("read", path, err)
		}
		return &FileClient{path: path, mem: NewMemoryClient()}, nil
	}

	var doc inventoryFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewConfigError("inventory file", "invalid YAML in "+path, err)
	}

	return &FileClient{path: path, mem: NewMemoryClient(doc.VMs...)}, nil
}

// ListVMs returns the records scoped to a cluster.
func (c *FileClient) ListVMs(ctx context.Context, cluster ClusterID) ([]VM, error) {
	return c.mem.ListVMs(ctx, cluster)
}

// CreateVM creates a record and persists the inventory.
func (c *FileClient) CreateVM(ctx context.Context, spec VMSpec) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.mem.CreateVM(ctx, spec)
	if err != nil {
		return "", err
	}
	if err := c.save(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateVM applies a partial update and persists the inventory.
func (c *FileClient) UpdateVM(ctx context.Context, id string, fields VMFields) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mem.UpdateVM(ctx, id, fields); err != nil {
		return err
	}
	return c.save(ctx)
}

// save writes the current working set back to the inventory file.
func (c *FileClient) save(ctx context.Context) error {
	vms, err := c.mem.ListVMs(ctx, "")
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(inventoryFile{VMs: vms})
	if err != nil {
		return errors.WrapIO("write", c.path, err)
	}
	if err := os.WriteFile(c.path, data, fileMode); err != nil {
		return errors.WrapIO("write", c.path, err)
	}
	return nil
}
