package fetcher

import (
	"context"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/sieteunoseis/vcsync/pkg/errors"
	"github.com/sieteunoseis/vcsync/pkg/vcenter"
)

// exportFile is the on-disk shape of a saved inventory export.
type exportFile struct {
	VMs []vcenter.Record `yaml:"vms"`
}

// FileProvider is a SessionProvider backed by a YAML inventory export,
// letting the CLI run without a live virtualization server. Credentials
// are accepted and ignored.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider reading from the given export file.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Authenticate opens the export file and returns a session over its
// records. A missing or unreadable file is reported as a connection
// failure, mirroring an unreachable server.
func (p *FileProvider) Authenticate(ctx context.Context, server vcenter.ServerID, _ vcenter.Credentials) (vcenter.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapConnection(server.String(), err)
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, errors.NewConnectionError(server.String(), "cannot read inventory export "+p.path, err)
	}

	var doc exportFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewConnectionError(server.String(), "invalid inventory export "+p.path, err)
	}

	return &fileSession{records: doc.VMs}, nil
}

type fileSession struct {
	records []vcenter.Record
}

func (s *fileSession) ListVMs(ctx context.Context) ([]vcenter.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.records, nil
}

func (s *fileSession) Close() error {
	return nil
}
