package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/sieteunoseis/vcsync/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestAuthError(t *testing.T) {
	t.Run("with server", func(t *testing.T) {
		err := &pkgerrors.AuthError{
			Server:  "vcenter01.example.com",
			Message: "bad credentials",
		}
		assert.Equal(t, "authentication failed for vcenter01.example.com: bad credentials", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrAuth))
	})

	t.Run("without server", func(t *testing.T) {
		err := &pkgerrors.AuthError{Message: "MFA denied"}
		assert.Equal(t, "authentication failed: MFA denied", err.Error())
		assert.True(t, pkgerrors.IsAuth(err))
	})

	t.Run("constructor and unwrap", func(t *testing.T) {
		base := errors.New("401 unauthorized")
		err := pkgerrors.NewAuthError("vc1", "rejected", base)
		assert.True(t, pkgerrors.IsAuth(err))
		assert.Equal(t, base, errors.Unwrap(err))
	})

	t.Run("wrap helper returns nil on nil", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapAuth("vc1", nil))
	})
}

func TestConnectionError(t *testing.T) {
	t.Run("plain failure", func(t *testing.T) {
		err := pkgerrors.NewConnectionError("vc1", "no route to host", nil)
		assert.Equal(t, "connection to vc1 failed: no route to host", err.Error())
		assert.True(t, pkgerrors.IsConnection(err))
		assert.False(t, pkgerrors.IsTimeout(err))
	})

	t.Run("timeout matches both sentinels", func(t *testing.T) {
		err := pkgerrors.NewTimeoutError("vc1", "deadline exceeded", nil)
		assert.Equal(t, "connection to vc1 timed out: deadline exceeded", err.Error())
		assert.True(t, pkgerrors.IsConnection(err))
		assert.True(t, pkgerrors.IsTimeout(err))
	})

	t.Run("never matches auth", func(t *testing.T) {
		err := pkgerrors.NewConnectionError("vc1", "refused", nil)
		assert.False(t, pkgerrors.IsAuth(err))
	})
}

func TestDataQualityError(t *testing.T) {
	t.Run("with record", func(t *testing.T) {
		err := pkgerrors.NewDataQualityError("web01", "duplicate match key")
		assert.Equal(t, `data quality problem with record "web01": duplicate match key`, err.Error())
		assert.True(t, pkgerrors.IsDataQuality(err))
	})

	t.Run("without record", func(t *testing.T) {
		err := &pkgerrors.DataQualityError{Message: "empty name"}
		assert.Equal(t, "data quality problem: empty name", err.Error())
	})
}

func TestApplyError(t *testing.T) {
	base := errors.New("409 conflict")
	err := pkgerrors.NewApplyError("web01", "create", base)
	assert.Equal(t, "failed to create web01: 409 conflict", err.Error())
	assert.Equal(t, base, errors.Unwrap(err))
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "timeout",
			Message: "must be positive",
		}
		assert.Equal(t, "validation failed for field timeout: must be positive", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("constructor", func(t *testing.T) {
		err := pkgerrors.NewValidationError("name_match_mode", "fuzzy", "unknown mode")
		assert.Contains(t, err.Error(), "name_match_mode")
		assert.Contains(t, err.Error(), "unknown mode")
	})
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("servers", "at least one server required", nil)
	assert.Equal(t, "configuration error in servers: at least one server required", err.Error())
}

func TestNotFoundError(t *testing.T) {
	err := pkgerrors.NewNotFoundError("cluster", "prod-east")
	assert.Equal(t, "cluster with ID prod-east not found", err.Error())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestWrapHelpers(t *testing.T) {
	t.Run("nil in nil out", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapValidation("field", nil))
		assert.NoError(t, pkgerrors.WrapIO("read", "/tmp/x", nil))
		assert.NoError(t, pkgerrors.WrapConnection("vc1", nil))
	})

	t.Run("wrap connection", func(t *testing.T) {
		base := errors.New("dial tcp: i/o timeout")
		err := pkgerrors.WrapConnection("vc1", base)
		assert.True(t, pkgerrors.IsConnection(err))
		assert.Contains(t, err.Error(), "vc1")
	})
}
