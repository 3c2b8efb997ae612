// Package vcenter defines the source-side domain types for vcsync: the
// normalized virtual machine shape reported by a virtualization management
// server, and the collaborator interfaces used to obtain it.
package vcenter

import (
	"strings"

	"github.com/sieteunoseis/vcsync/pkg/errors"
)

// ServerID identifies one virtualization server (typically its hostname).
// It is the cache partition key and is immutable once a session exists.
type ServerID string

// String returns the string representation of a server ID.
func (id ServerID) String() string {
	return string(id)
}

// PowerState is the normalized power state of a virtual machine.
type PowerState string

// Power states recognized by the reconciliation core.
const (
	PowerOn        PowerState = "on"
	PowerOff       PowerState = "off"
	PowerSuspended PowerState = "suspended"
	PowerUnknown   PowerState = "unknown"
)

// ParsePowerState coerces a raw power state string into the fixed enum.
// It accepts the vSphere runtime forms (poweredOn, poweredOff, suspended)
// as well as bare on/off, case-insensitively. Anything else maps to
// PowerUnknown rather than failing the record.
func ParsePowerState(raw string) PowerState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "poweredon", "powered_on", "running":
		return PowerOn
	case "off", "poweredoff", "powered_off", "stopped":
		return PowerOff
	case "suspended":
		return PowerSuspended
	default:
		return PowerUnknown
	}
}

// VM is the normalized shape of one source virtual machine. Instances are
// created by the inventory fetcher and are read-only afterwards; a refresh
// replaces the whole slice, never patches entries in place.
type VM struct {
	Name       string     `yaml:"name" json:"name"`
	VCPUs      int        `yaml:"vcpus" json:"vcpus"`
	MemoryMB   int64      `yaml:"memory_mb" json:"memory_mb"`
	DiskGB     float64    `yaml:"disk_gb" json:"disk_gb"`
	PowerState PowerState `yaml:"power_state" json:"power_state"`
}

// Record is one raw inventory row as reported by a session, before
// normalization. The power state is still a free-form string here.
type Record struct {
	Name       string  `yaml:"name" json:"name"`
	VCPUs      int     `yaml:"vcpus" json:"vcpus"`
	MemoryMB   int64   `yaml:"memory_mb" json:"memory_mb"`
	DiskGB     float64 `yaml:"disk_gb" json:"disk_gb"`
	PowerState string  `yaml:"power_state" json:"power_state"`
}

// Normalize converts a raw record into the internal VM shape. It trims
// incidental whitespace and coerces the power state. Malformed records
// (empty name, non-positive vCPU count, negative sizes) return a
// DataQualityError so the caller can skip them without failing the fetch.
func (r Record) Normalize() (VM, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return VM{}, errors.NewDataQualityError(r.Name, "empty VM name")
	}
	if r.VCPUs <= 0 {
		return VM{}, errors.NewDataQualityError(name, "vCPU count must be positive")
	}
	if r.MemoryMB < 0 {
		return VM{}, errors.NewDataQualityError(name, "memory size must not be negative")
	}
	if r.DiskGB < 0 {
		return VM{}, errors.NewDataQualityError(name, "disk size must not be negative")
	}

	return VM{
		Name:       name,
		VCPUs:      r.VCPUs,
		MemoryMB:   r.MemoryMB,
		DiskGB:     r.DiskGB,
		PowerState: ParsePowerState(r.PowerState),
	}, nil
}
