// Package match derives the identity key used to pair a source VM with an
// asset-system record. Naming conventions differ between systems (FQDN vs
// short name vs custom slug), so one configurable normalization step
// replaces bespoke matching logic per deployment.
package match

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sieteunoseis/vcsync/pkg/errors"
)

// Mode selects how a VM name is reduced to a match key.
type Mode string

// Matching modes.
const (
	// ModeExact compares names unchanged, case-sensitively.
	ModeExact Mode = "exact"
	// ModeHostname strips the domain suffix and lowercases.
	ModeHostname Mode = "hostname"
	// ModeRegex extracts the first capture group of a configured pattern.
	ModeRegex Mode = "regex"
)

// ParseMode validates a mode string from configuration.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeExact:
		return ModeExact, nil
	case ModeHostname:
		return ModeHostname, nil
	case ModeRegex:
		return ModeRegex, nil
	default:
		return "", errors.NewValidationError("name_match_mode", raw, "must be one of exact, hostname, regex")
	}
}

// Matcher computes match keys under a fixed mode. The regex pattern is
// compiled once at construction so an invalid pattern fails fast instead of
// at first comparison. A Matcher is safe for concurrent use.
type Matcher struct {
	mode    Mode
	pattern *regexp.Regexp
}

// New creates a Matcher. A pattern is required for ModeRegex and rejected
// for the other modes.
func New(mode Mode, pattern string) (*Matcher, error) {
	m := &Matcher{mode: mode}

	switch mode {
	case ModeExact, ModeHostname:
		if pattern != "" {
			return nil, errors.NewValidationError("name_match_pattern", pattern, "pattern is only valid with regex mode")
		}
	case ModeRegex:
		if pattern == "" {
			return nil, errors.NewValidationError("name_match_pattern", pattern, "regex mode requires a pattern")
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, errors.NewValidationError("name_match_pattern", pattern, err.Error())
		}
		m.pattern = re
	default:
		return nil, errors.NewValidationError("name_match_mode", string(mode), "unknown mode")
	}

	return m, nil
}

// Mode returns the configured matching mode.
func (m *Matcher) Mode() Mode {
	return m.mode
}

// Key derives the match key for a VM name. The same derivation is applied
// to both source and target names so pairing is a pure equality join. The
// result is deterministic for a fixed mode and pattern.
func (m *Matcher) Key(name string) string {
	switch m.mode {
	case ModeHostname:
		return Hostname(name)
	case ModeRegex:
		// A non-matching pattern or one without a capture group degrades
		// to exact-name comparison rather than excluding the VM.
		sub := m.pattern.FindStringSubmatch(name)
		if len(sub) >= 2 && sub[1] != "" {
			return sub[1]
		}
		return name
	default:
		return name
	}
}

// Hostname reduces a VM name to its lowercase short hostname: everything
// before the first dot, Unicode case-folded.
func Hostname(name string) string {
	host, _, _ := strings.Cut(name, ".")
	return cases.Lower(language.Und).String(host)
}
