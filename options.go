package vcsync

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/sieteunoseis/vcsync/pkg/errors"
	"github.com/sieteunoseis/vcsync/pkg/match"
	"github.com/sieteunoseis/vcsync/pkg/netbox"
	"github.com/sieteunoseis/vcsync/pkg/vcenter"
)

// Option configures a Reconciler during construction.
type Option func(*Reconciler) error

// WithSessionProvider wires the virtualization-server collaborator.
// Required.
func WithSessionProvider(p vcenter.SessionProvider) Option {
	return func(r *Reconciler) error {
		if p == nil {
			return errors.NewConfigError("reconciler", "session provider cannot be nil", nil)
		}
		r.provider = p
		return nil
	}
}

// WithAssetClient wires the asset-system collaborator. Required.
func WithAssetClient(c netbox.Client) Option {
	return func(r *Reconciler) error {
		if c == nil {
			return errors.NewConfigError("reconciler", "asset client cannot be nil", nil)
		}
		r.client = c
		return nil
	}
}

// WithMatcher sets the identity matcher used for comparisons and applies.
func WithMatcher(m *match.Matcher) Option {
	return func(r *Reconciler) error {
		if m == nil {
			return errors.NewConfigError("reconciler", "matcher cannot be nil", nil)
		}
		r.matcher = m
		return nil
	}
}

// WithMatchMode builds and sets the matcher from a mode and pattern. A bad
// regex fails construction here rather than during a later comparison.
func WithMatchMode(mode match.Mode, pattern string) Option {
	return func(r *Reconciler) error {
		m, err := match.New(mode, pattern)
		if err != nil {
			return err
		}
		r.matcher = m
		return nil
	}
}

// WithLogger sets the logger used by all reconciler actions.
func WithLogger(logger *zerolog.Logger) Option {
	return func(r *Reconciler) error {
		if logger == nil {
			return errors.NewConfigError("reconciler", "logger cannot be nil", nil)
		}
		r.logger = logger
		return nil
	}
}

// WithTimeout bounds each fetch and target listing. Zero disables the
// bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Reconciler) error {
		if d < 0 {
			return errors.NewConfigError("reconciler", "timeout cannot be negative", nil)
		}
		r.timeout = d
		return nil
	}
}

// WithCredentials uses one set of credentials for every server.
func WithCredentials(creds vcenter.Credentials) Option {
	return func(r *Reconciler) error {
		r.credentials = func(vcenter.ServerID) vcenter.Credentials { return creds }
		return nil
	}
}

// WithCredentialsFunc resolves credentials per server at fetch time.
func WithCredentialsFunc(fn func(vcenter.ServerID) vcenter.Credentials) Option {
	return func(r *Reconciler) error {
		if fn == nil {
			return errors.NewConfigError("reconciler", "credentials func cannot be nil", nil)
		}
		r.credentials = fn
		return nil
	}
}

// WithNormalizeNames strips the domain suffix and lowercases names when
// creating or updating target records.
func WithNormalizeNames(enabled bool) Option {
	return func(r *Reconciler) error {
		r.normalizeNames = enabled
		return nil
	}
}

// WithUpdateExisting allows imports to update matched records. When off,
// imports skip VMs that already exist in the target. SyncAllDifferences
// updates regardless of this setting.
func WithUpdateExisting(enabled bool) Option {
	return func(r *Reconciler) error {
		r.updateExisting = enabled
		return nil
	}
}

// WithDefaults sets the tag, role and platform stamped onto newly created
// target records. Empty values are not set.
func WithDefaults(tag, role, platform string) Option {
	return func(r *Reconciler) error {
		r.defaultTag = tag
		r.defaultRole = role
		r.defaultPlatform = platform
		return nil
	}
}

// WithWorkers caps concurrent target writes per apply batch.
func WithWorkers(n int) Option {
	return func(r *Reconciler) error {
		if n < 0 {
			return errors.NewConfigError("reconciler", "workers cannot be negative", nil)
		}
		r.workers = n
		return nil
	}
}
