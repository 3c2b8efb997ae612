package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sieteunoseis/vcsync/internal/config"
	"github.com/sieteunoseis/vcsync/pkg/netbox"
	"github.com/sieteunoseis/vcsync/pkg/vcenter"
)

// stubProvider serves a fixed inventory for every server.
type stubProvider struct {
	records []vcenter.Record
}

func (p *stubProvider) Authenticate(_ context.Context, _ vcenter.ServerID, _ vcenter.Credentials) (vcenter.Session, error) {
	return &stubSession{records: p.records}, nil
}

type stubSession struct {
	records []vcenter.Record
}

func (s *stubSession) ListVMs(_ context.Context) ([]vcenter.Record, error) {
	return s.records, nil
}

func (s *stubSession) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Servers:        []config.Server{{Host: "vc1", MFAHint: "approve on your phone"}},
		Cluster:        "prod",
		TimeoutSeconds: 5,
		MatchMode:      "exact",
		Workers:        2,
	}
}

func newTestApp(t *testing.T, client netbox.Client) *App {
	t.Helper()
	provider := &stubProvider{records: []vcenter.Record{
		{Name: "web01", VCPUs: 2, MemoryMB: 4096, DiskGB: 50, PowerState: "poweredOn"},
		{Name: "db01", VCPUs: 4, MemoryMB: 8192, DiskGB: 200, PowerState: "poweredOff"},
	}}

	a, err := New("test", "none", "today",
		WithSessionProvider(provider),
		WithAssetClient(client),
		WithConfig(testConfig()),
	)
	require.NoError(t, err)
	return a
}

// run executes one CLI invocation and returns the combined output.
func run(t *testing.T, a *App, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := a.createRootCommand()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestServersCommand(t *testing.T) {
	a := newTestApp(t, netbox.NewMemoryClient())

	out, err := run(t, a, "servers")
	require.NoError(t, err)
	assert.Contains(t, out, "vc1")
	assert.Contains(t, out, "MFA: approve on your phone")
	assert.Contains(t, out, "Cached: no")
}

func TestRefreshCommand(t *testing.T) {
	a := newTestApp(t, netbox.NewMemoryClient())

	out, err := run(t, a, "refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "approve on your phone")
	assert.Contains(t, out, "Refreshed vc1: 2 VMs")

	out, err = run(t, a, "servers")
	require.NoError(t, err)
	assert.Contains(t, out, "Cached: 2 VMs")
}

func TestRefreshClearCommand(t *testing.T) {
	a := newTestApp(t, netbox.NewMemoryClient())

	_, err := run(t, a, "refresh")
	require.NoError(t, err)

	out, err := run(t, a, "refresh", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared cache for vc1")

	out, err = run(t, a, "servers")
	require.NoError(t, err)
	assert.Contains(t, out, "Cached: no")
}

func TestCompareCommand(t *testing.T) {
	mem := netbox.NewMemoryClient(netbox.VM{
		ID: "t1", Name: "web01", Cluster: "prod",
		VCPUs: 1, MemoryMB: 4096, DiskGB: 50, PowerState: vcenter.PowerOn,
	})
	a := newTestApp(t, mem)

	out, err := run(t, a, "compare")
	require.NoError(t, err)
	assert.Contains(t, out, "Only in source:")
	assert.Contains(t, out, "+ db01")
	assert.Contains(t, out, "~ web01: vcpus")
	assert.Contains(t, out, "1 only in source")
	assert.Contains(t, out, "1 differing")
}

func TestImportCommand(t *testing.T) {
	mem := netbox.NewMemoryClient()
	a := newTestApp(t, mem)

	out, err := run(t, a, "import", "web01", "ghost")
	require.NoError(t, err)
	assert.Contains(t, out, "created web01")
	assert.Contains(t, out, "skipped ghost (not found in cached inventory)")
	assert.Contains(t, out, "1 created, 0 updated, 1 skipped, 0 failed")
	assert.Equal(t, 1, mem.Len())
}

func TestSyncCommand(t *testing.T) {
	mem := netbox.NewMemoryClient(
		netbox.VM{ID: "t1", Name: "web01", Cluster: "prod", VCPUs: 1, MemoryMB: 4096, DiskGB: 50, PowerState: vcenter.PowerOn},
		netbox.VM{ID: "t2", Name: "db01", Cluster: "prod", VCPUs: 4, MemoryMB: 8192, DiskGB: 200, PowerState: vcenter.PowerOff},
	)
	a := newTestApp(t, mem)

	out, err := run(t, a, "sync", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run, nothing written")
	vm, _ := mem.Get("t1")
	assert.Equal(t, 1, vm.VCPUs, "dry run must not write")

	out, err = run(t, a, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "updated web01")
	vm, _ = mem.Get("t1")
	assert.Equal(t, 2, vm.VCPUs)
}

func TestVersionCommand(t *testing.T) {
	a := newTestApp(t, netbox.NewMemoryClient())

	out, err := run(t, a, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "vcsync test")
}

func TestReconcilerRequiresProviderOrExport(t *testing.T) {
	a, err := New("test", "none", "today", WithConfig(testConfig()))
	require.NoError(t, err)

	_, err = a.Reconciler()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no session provider available")
}
