package vcenter

import "context"

// Credentials carries the operator-supplied login for one server. The
// password never appears in logs or configuration files.
type Credentials struct {
	Username string
	Password string
}

// Session is an authenticated handle onto one virtualization server,
// capable of listing its VM inventory.
type Session interface {
	// ListVMs returns the raw inventory rows for the whole server.
	ListVMs(ctx context.Context) ([]Record, error)

	// Close releases the session. Safe to call more than once.
	Close() error
}

// SessionProvider authenticates against a virtualization server and returns
// a session. Implementations may perform an out-of-band approval step (MFA
// push, Duo prompt) before returning; the core treats that purely as added
// latency bounded by the caller's context deadline. Failures surface as
// AuthError or ConnectionError from pkg/errors.
type SessionProvider interface {
	Authenticate(ctx context.Context, server ServerID, creds Credentials) (Session, error)
}
