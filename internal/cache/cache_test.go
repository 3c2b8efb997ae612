package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sieteunoseis/vcsync/pkg/vcenter"
)

func TestCacheRoundTrip(t *testing.T) {
	c := New()
	vms := []vcenter.VM{
		{Name: "web01", VCPUs: 2, MemoryMB: 4096, DiskGB: 50, PowerState: vcenter.PowerOn},
		{Name: "db01", VCPUs: 4, MemoryMB: 8192, DiskGB: 200, PowerState: vcenter.PowerOff},
	}

	c.Put("vcenter01", vms)

	entry, found := c.Get("vcenter01")
	require.True(t, found)
	assert.Equal(t, vcenter.ServerID("vcenter01"), entry.Server)
	assert.Equal(t, vms, entry.VMs)
	assert.False(t, entry.FetchedAt.IsZero())
}

func TestCacheGetMissing(t *testing.T) {
	c := New()
	_, found := c.Get("nowhere")
	assert.False(t, found)
}

func TestCachePutReplacesWholesale(t *testing.T) {
	c := New()
	c.Put("vc1", []vcenter.VM{{Name: "old", VCPUs: 1}})
	c.Put("vc1", []vcenter.VM{{Name: "new", VCPUs: 2}})

	entry, found := c.Get("vc1")
	require.True(t, found)
	require.Len(t, entry.VMs, 1)
	assert.Equal(t, "new", entry.VMs[0].Name)
}

func TestCacheSnapshotsAreIsolated(t *testing.T) {
	c := New()
	vms := []vcenter.VM{{Name: "web01", VCPUs: 2}}
	c.Put("vc1", vms)

	// mutating the slice we put must not affect the snapshot
	vms[0].Name = "mutated"

	entry, _ := c.Get("vc1")
	assert.Equal(t, "web01", entry.VMs[0].Name)

	// mutating what Get returned must not affect later readers
	entry.VMs[0].Name = "mutated-again"
	entry2, _ := c.Get("vc1")
	assert.Equal(t, "web01", entry2.VMs[0].Name)
}

func TestCacheClear(t *testing.T) {
	c := New()
	c.Put("vc1", nil)
	c.Put("vc2", nil)

	c.Clear("vc1")
	_, found := c.Get("vc1")
	assert.False(t, found)
	_, found = c.Get("vc2")
	assert.True(t, found)

	c.ClearAll()
	assert.Equal(t, 0, c.Len())
}

func TestCacheServers(t *testing.T) {
	c := New()
	c.Put("zulu", nil)
	c.Put("alpha", nil)

	assert.Equal(t, []vcenter.ServerID{"alpha", "zulu"}, c.Servers())
}

func TestCacheConcurrentReadersDuringPut(t *testing.T) {
	c := New()
	old := []vcenter.VM{{Name: "gen1", VCPUs: 1}, {Name: "gen1-b", VCPUs: 1}}
	updated := []vcenter.VM{{Name: "gen2", VCPUs: 2}, {Name: "gen2-b", VCPUs: 2}}
	c.Put("vc1", old)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				entry, found := c.Get("vc1")
				if !found {
					continue
				}
				// readers must see a complete generation, never a mix
				if !assert.Len(t, entry.VMs, 2) {
					continue
				}
				gen := entry.VMs[0].Name[:4]
				assert.Equal(t, gen, entry.VMs[1].Name[:4])
			}
		}()
	}

	for j := 0; j < 50; j++ {
		if j%2 == 0 {
			c.Put("vc1", updated)
		} else {
			c.Put("vc1", old)
		}
	}
	wg.Wait()
}
