// Package fetcher pulls the full VM list from a virtualization server
// through a session provider, normalizes each record into the internal VM
// shape, and atomically replaces the per-server cache entry.
package fetcher

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/sieteunoseis/vcsync/internal/cache"
	"github.com/sieteunoseis/vcsync/pkg/errors"
	"github.com/sieteunoseis/vcsync/pkg/logging"
	"github.com/sieteunoseis/vcsync/pkg/vcenter"
)

// Fetcher retrieves and caches source inventories.
type Fetcher struct {
	provider vcenter.SessionProvider
	cache    *cache.Cache
	timeout  time.Duration
}

// New creates a Fetcher. The timeout bounds the whole fetch including
// session authentication and any MFA approval latency hidden inside it.
func New(provider vcenter.SessionProvider, c *cache.Cache, timeout time.Duration) *Fetcher {
	return &Fetcher{provider: provider, cache: c, timeout: timeout}
}

// Fetch authenticates, lists the server's VMs, normalizes them and
// replaces the cache entry on success. A single malformed record is logged
// and skipped; it never fails the whole inventory pull.
func (f *Fetcher) Fetch(ctx context.Context, server vcenter.ServerID, creds vcenter.Credentials) (cache.Entry, error) {
	log := logging.Ctx(ctx)

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	session, err := f.provider.Authenticate(ctx, server, creds)
	if err != nil {
		return cache.Entry{}, classify(server, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Warn().Err(cerr).Str("server", server.String()).Msg("Failed to close session")
		}
	}()

	records, err := session.ListVMs(ctx)
	if err != nil {
		return cache.Entry{}, classify(server, err)
	}

	vms := make([]vcenter.VM, 0, len(records))
	skipped := 0
	for _, rec := range records {
		vm, err := rec.Normalize()
		if err != nil {
			skipped++
			log.Warn().
				Err(err).
				Str("server", server.String()).
				Str("record", rec.Name).
				Msg("Skipping malformed inventory record")
			continue
		}
		vms = append(vms, vm)
	}

	entry := f.cache.Put(server, vms)
	log.Info().
		Str("server", server.String()).
		Int("vms", len(vms)).
		Int("skipped", skipped).
		Msg("Inventory refreshed")
	return entry, nil
}

// classify maps collaborator failures onto the vcsync error taxonomy.
// Auth failures pass through untouched; context expiry becomes a timeout;
// everything else is a connection failure.
func classify(server vcenter.ServerID, err error) error {
	switch {
	case errors.IsAuth(err):
		return err
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewTimeoutError(server.String(), "inventory fetch exceeded configured timeout", err)
	case stderrors.Is(err, context.Canceled):
		return errors.NewConnectionError(server.String(), "inventory fetch canceled", err)
	case errors.IsConnection(err):
		return err
	default:
		return errors.WrapConnection(server.String(), err)
	}
}
