package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sieteunoseis/vcsync/pkg/errors"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		raw     string
		want    Mode
		wantErr bool
	}{
		{"exact", ModeExact, false},
		{"hostname", ModeHostname, false},
		{"regex", ModeRegex, false},
		{" Hostname ", ModeHostname, false},
		{"fuzzy", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			mode, err := ParseMode(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("regex requires pattern", func(t *testing.T) {
		_, err := New(ModeRegex, "")
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("invalid regex fails fast", func(t *testing.T) {
		_, err := New(ModeRegex, "([unclosed")
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("pattern rejected outside regex mode", func(t *testing.T) {
		_, err := New(ModeExact, "^x")
		require.Error(t, err)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := New(Mode("fuzzy"), "")
		require.Error(t, err)
	})
}

func TestKeyExact(t *testing.T) {
	m, err := New(ModeExact, "")
	require.NoError(t, err)

	assert.Equal(t, "WebServer01.example.com", m.Key("WebServer01.example.com"))
	assert.Equal(t, "web01", m.Key("web01"))
	// exact mode is case-sensitive
	assert.NotEqual(t, m.Key("WEB01"), m.Key("web01"))
}

func TestKeyHostname(t *testing.T) {
	m, err := New(ModeHostname, "")
	require.NoError(t, err)

	tests := []struct {
		name string
		want string
	}{
		{"WebServer01.example.com", "webserver01"},
		{"db-01.corp.local", "db-01"},
		{"plain", "plain"},
		{"MIXED.Case.Domain", "mixed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Key(tt.name))
		})
	}
}

func TestKeyRegex(t *testing.T) {
	t.Run("first capture group wins", func(t *testing.T) {
		m, err := New(ModeRegex, `^([^.]+)`)
		require.NoError(t, err)
		assert.Equal(t, "db-01", m.Key("db-01.corp.local"))
	})

	t.Run("non-matching pattern falls back to raw name", func(t *testing.T) {
		m, err := New(ModeRegex, `^vm-(\d+)$`)
		require.NoError(t, err)
		assert.Equal(t, "db-01.corp.local", m.Key("db-01.corp.local"))
	})

	t.Run("pattern without capture group falls back to raw name", func(t *testing.T) {
		m, err := New(ModeRegex, `^[^.]+`)
		require.NoError(t, err)
		assert.Equal(t, "db-01.corp.local", m.Key("db-01.corp.local"))
	})

	t.Run("deterministic across repeated calls", func(t *testing.T) {
		m, err := New(ModeRegex, `^([a-z]+)`)
		require.NoError(t, err)
		first := m.Key("app42.example.com")
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, m.Key("app42.example.com"))
		}
	})
}

func TestHostname(t *testing.T) {
	assert.Equal(t, "webserver01", Hostname("WebServer01.EXAMPLE.com"))
	assert.Equal(t, "short", Hostname("short"))
	assert.Equal(t, "", Hostname(""))
}
