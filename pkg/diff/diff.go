package diff

import (
	"fmt"
	"sort"

	"github.com/sieteunoseis/vcsync/pkg/match"
	"github.com/sieteunoseis/vcsync/pkg/netbox"
	"github.com/sieteunoseis/vcsync/pkg/vcenter"
)

// Compare joins the two inventories on their match keys and classifies
// every VM. Iteration order of all result slices follows the lexical order
// of the match keys, so output is stable and testable. Duplicate keys
// within one side are resolved last-write-wins in input order and surfaced
// as warnings.
func Compare(source []vcenter.VM, target []netbox.VM, m *match.Matcher) *Result {
	result := &Result{}

	sourceByKey := make(map[string]vcenter.VM, len(source))
	for _, vm := range source {
		key := m.Key(vm.Name)
		if prev, dup := sourceByKey[key]; dup {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("duplicate match key %q in source inventory: %q replaces %q", key, vm.Name, prev.Name))
		}
		sourceByKey[key] = vm
	}

	targetByKey := make(map[string]netbox.VM, len(target))
	for _, vm := range target {
		key := m.Key(vm.Name)
		if prev, dup := targetByKey[key]; dup {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("duplicate match key %q in target inventory: %q replaces %q", key, vm.Name, prev.Name))
		}
		targetByKey[key] = vm
	}

	keys := make([]string, 0, len(sourceByKey)+len(targetByKey))
	seen := make(map[string]bool, len(sourceByKey))
	for key := range sourceByKey {
		keys = append(keys, key)
		seen[key] = true
	}
	for key := range targetByKey {
		if !seen[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		src, inSource := sourceByKey[key]
		tgt, inTarget := targetByKey[key]

		switch {
		case inSource && inTarget:
			pair := Pair{Key: key, Source: src, Target: tgt, Diffs: Fields(src, tgt)}
			result.Matched = append(result.Matched, pair)
			if pair.InSync() {
				result.Summary.InSync++
			} else {
				result.Summary.Differing++
			}
		case inSource:
			result.OnlyInSource = append(result.OnlyInSource, src)
			result.Summary.SourceOnly++
		default:
			result.OnlyInTarget = append(result.OnlyInTarget, tgt)
			result.Summary.TargetOnly++
		}
	}

	return result
}

// Fields returns the comparable fields that differ between a source VM and
// a target record, in a fixed order. Comparison is exact equality per
// field; cache values come from authoritative sources, so there is no
// tolerance on the numeric fields.
func Fields(src vcenter.VM, tgt netbox.VM) []Field {
	var diffs []Field
	if src.VCPUs != tgt.VCPUs {
		diffs = append(diffs, FieldVCPUs)
	}
	if src.MemoryMB != tgt.MemoryMB {
		diffs = append(diffs, FieldMemoryMB)
	}
	if src.DiskGB != tgt.DiskGB {
		diffs = append(diffs, FieldDiskGB)
	}
	if src.PowerState != tgt.PowerState {
		diffs = append(diffs, FieldPowerState)
	}
	return diffs
}
