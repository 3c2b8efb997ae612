// Package cache holds the most recent fetched inventory for each server.
// Entries never expire on their own: inventories change out of band and the
// operator is the sole authority on freshness, so invalidation is always an
// explicit refresh or clear. It wraps patrickmn/go-cache with expiration
// disabled, storing immutable snapshots so concurrent readers observe
// either the old or the new entry, never a mix.
package cache

import (
	"sort"

	"github.com/agentstation/utc"
	gocache "github.com/patrickmn/go-cache"

	"github.com/sieteunoseis/vcsync/pkg/vcenter"
)

// Entry is one immutable inventory snapshot for a server.
type Entry struct {
	Server    vcenter.ServerID
	VMs       []vcenter.VM
	FetchedAt utc.Time
}

// Cache is the per-server inventory store. Safe for concurrent use.
type Cache struct {
	store *gocache.Cache
}

// New creates an empty cache.
func New() *Cache {
	// NoExpiration on both knobs: entries live until replaced or cleared.
	return &Cache{
		store: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get returns the snapshot for a server, or false when none is cached.
// The returned VM slice is a copy; callers may not mutate the snapshot.
func (c *Cache) Get(server vcenter.ServerID) (Entry, bool) {
	v, found := c.store.Get(server.String())
	if !found {
		return Entry{}, false
	}
	entry := v.(Entry)
	entry.VMs = copyVMs(entry.VMs)
	return entry, true
}

// Put replaces the snapshot for a server atomically. The incoming slice is
// copied, so later mutation by the caller cannot corrupt the snapshot.
func (c *Cache) Put(server vcenter.ServerID, vms []vcenter.VM) Entry {
	entry := Entry{
		Server:    server,
		VMs:       copyVMs(vms),
		FetchedAt: utc.Now(),
	}
	c.store.Set(server.String(), entry, gocache.NoExpiration)
	return entry
}

// Clear removes the snapshot for a server.
func (c *Cache) Clear(server vcenter.ServerID) {
	c.store.Delete(server.String())
}

// ClearAll removes every snapshot.
func (c *Cache) ClearAll() {
	c.store.Flush()
}

// Servers returns the IDs of all cached servers, sorted.
func (c *Cache) Servers() []vcenter.ServerID {
	items := c.store.Items()
	servers := make([]vcenter.ServerID, 0, len(items))
	for key := range items {
		servers = append(servers, vcenter.ServerID(key))
	}
	sort.Slice(servers, func(i, j int) bool { return servers[i] < servers[j] })
	return servers
}

// Len returns the number of cached servers.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

func copyVMs(vms []vcenter.VM) []vcenter.VM {
	out := make([]vcenter.VM, len(vms))
	copy(out, vms)
	return out
}
