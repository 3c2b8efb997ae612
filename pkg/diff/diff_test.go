package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sieteunoseis/vcsync/pkg/match"
	"github.com/sieteunoseis/vcsync/pkg/netbox"
	"github.com/sieteunoseis/vcsync/pkg/vcenter"
)

func exactMatcher(t *testing.T) *match.Matcher {
	t.Helper()
	m, err := match.New(match.ModeExact, "")
	require.NoError(t, err)
	return m
}

func TestCompareMatchedWithDiff(t *testing.T) {
	source := []vcenter.VM{
		{Name: "app1", VCPUs: 2, MemoryMB: 4096, DiskGB: 50, PowerState: vcenter.PowerOn},
	}
	target := []netbox.VM{
		{ID: "t1", Name: "app1", VCPUs: 4, MemoryMB: 4096, DiskGB: 50, PowerState: vcenter.PowerOn},
	}

	result := Compare(source, target, exactMatcher(t))

	require.Len(t, result.Matched, 1)
	assert.Empty(t, result.OnlyInSource)
	assert.Empty(t, result.OnlyInTarget)
	assert.Equal(t, []Field{FieldVCPUs}, result.Matched[0].Diffs)
	assert.False(t, result.Matched[0].InSync())
	assert.Equal(t, 1, result.Summary.Differing)
	assert.True(t, result.HasDifferences())
}

func TestCompareDisjointInventories(t *testing.T) {
	source := []vcenter.VM{{Name: "only1", VCPUs: 1}}
	target := []netbox.VM{{ID: "t1", Name: "only2"}}

	result := Compare(source, target, exactMatcher(t))

	require.Len(t, result.OnlyInSource, 1)
	require.Len(t, result.OnlyInTarget, 1)
	assert.Empty(t, result.Matched)
	assert.Equal(t, "only1", result.OnlyInSource[0].Name)
	assert.Equal(t, "only2", result.OnlyInTarget[0].Name)
}

func TestCompareCoverage(t *testing.T) {
	// every input VM appears in exactly one partition
	source := []vcenter.VM{
		{Name: "a", VCPUs: 1},
		{Name: "b", VCPUs: 2},
		{Name: "c", VCPUs: 3},
	}
	target := []netbox.VM{
		{ID: "t1", Name: "b", VCPUs: 2},
		{ID: "t2", Name: "c", VCPUs: 9},
		{ID: "t3", Name: "d"},
	}

	result := Compare(source, target, exactMatcher(t))

	assert.Equal(t, len(source)+len(target),
		result.Summary.SourceOnly+result.Summary.TargetOnly+2*(result.Summary.InSync+result.Summary.Differing))
	assert.Equal(t, 1, result.Summary.SourceOnly)
	assert.Equal(t, 1, result.Summary.TargetOnly)
	assert.Equal(t, 1, result.Summary.InSync)
	assert.Equal(t, 1, result.Summary.Differing)
}

func TestCompareOrderIsLexicalByKey(t *testing.T) {
	source := []vcenter.VM{
		{Name: "zeta", VCPUs: 1},
		{Name: "alpha", VCPUs: 1},
		{Name: "mike", VCPUs: 1},
	}

	result := Compare(source, nil, exactMatcher(t))

	require.Len(t, result.OnlyInSource, 3)
	assert.Equal(t, "alpha", result.OnlyInSource[0].Name)
	assert.Equal(t, "mike", result.OnlyInSource[1].Name)
	assert.Equal(t, "zeta", result.OnlyInSource[2].Name)
}

func TestCompareHostnameModeJoinsAcrossDomains(t *testing.T) {
	m, err := match.New(match.ModeHostname, "")
	require.NoError(t, err)

	source := []vcenter.VM{
		{Name: "WebServer01.example.com", VCPUs: 2, MemoryMB: 4096, DiskGB: 50, PowerState: vcenter.PowerOn},
	}
	target := []netbox.VM{
		{ID: "t1", Name: "webserver01", VCPUs: 2, MemoryMB: 4096, DiskGB: 50, PowerState: vcenter.PowerOn},
	}

	result := Compare(source, target, m)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, "webserver01", result.Matched[0].Key)
	assert.True(t, result.Matched[0].InSync())
}

func TestCompareDuplicateKeysLastWriteWins(t *testing.T) {
	m, err := match.New(match.ModeHostname, "")
	require.NoError(t, err)

	source := []vcenter.VM{
		{Name: "web01.old.example.com", VCPUs: 2},
		{Name: "web01.new.example.com", VCPUs: 8},
	}

	result := Compare(source, nil, m)

	require.Len(t, result.OnlyInSource, 1)
	assert.Equal(t, "web01.new.example.com", result.OnlyInSource[0].Name)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], `duplicate match key "web01"`)
}

func TestFields(t *testing.T) {
	src := vcenter.VM{Name: "a", VCPUs: 2, MemoryMB: 4096, DiskGB: 50, PowerState: vcenter.PowerOn}

	t.Run("identical", func(t *testing.T) {
		tgt := netbox.VM{VCPUs: 2, MemoryMB: 4096, DiskGB: 50, PowerState: vcenter.PowerOn}
		assert.Empty(t, Fields(src, tgt))
	})

	t.Run("all fields differ", func(t *testing.T) {
		tgt := netbox.VM{VCPUs: 4, MemoryMB: 8192, DiskGB: 100, PowerState: vcenter.PowerOff}
		assert.Equal(t, []Field{FieldVCPUs, FieldMemoryMB, FieldDiskGB, FieldPowerState}, Fields(src, tgt))
	})

	t.Run("no tolerance on numeric fields", func(t *testing.T) {
		tgt := netbox.VM{VCPUs: 2, MemoryMB: 4096, DiskGB: 50.0001, PowerState: vcenter.PowerOn}
		assert.Equal(t, []Field{FieldDiskGB}, Fields(src, tgt))
	})
}

func TestResultString(t *testing.T) {
	empty := &Result{}
	assert.Equal(t, "No VMs to compare", empty.String())

	r := &Result{Summary: Summary{SourceOnly: 2, Differing: 1, InSync: 3}}
	s := r.String()
	assert.Contains(t, s, "2 only in source")
	assert.Contains(t, s, "1 differing")
	assert.Contains(t, s, "3 in sync")
}

func TestDifferingSources(t *testing.T) {
	source := []vcenter.VM{
		{Name: "a", VCPUs: 1},
		{Name: "b", VCPUs: 2},
	}
	target := []netbox.VM{
		{ID: "t1", Name: "a", VCPUs: 1},
		{ID: "t2", Name: "b", VCPUs: 4},
	}

	result := Compare(source, target, exactMatcher(t))

	vms := result.DifferingSources()
	require.Len(t, vms, 1)
	assert.Equal(t, "b", vms[0].Name)
}
