// Package apply writes selected source VMs into the asset system as a
// batch of independent create-or-update operations. Items may run
// concurrently, but outcomes are reported in selection order and one
// failure never aborts the rest of the batch.
package apply

import (
	"fmt"

	"github.com/agentstation/utc"

	"github.com/sieteunoseis/vcsync/pkg/vcenter"
)

// Outcome classifies what happened to one VM in a batch.
type Outcome string

// Per-item outcomes.
const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// ItemResult is the outcome for one VM of the selection.
type ItemResult struct {
	VM         vcenter.VM
	TargetName string
	TargetID   string
	Outcome    Outcome
	Reason     string
}

// Summary holds counts by outcome.
type Summary struct {
	Created int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of items in the batch.
func (s Summary) Total() int {
	return s.Created + s.Updated + s.Skipped + s.Failed
}

// Report is the outcome of one apply batch. Items preserve the input
// selection's order regardless of completion order.
type Report struct {
	Items      []ItemResult
	Summary    Summary
	StartedAt  utc.Time
	FinishedAt utc.Time
}

// String returns a human-readable summary of the batch.
func (r *Report) String() string {
	return fmt.Sprintf("%d created, %d updated, %d skipped, %d failed",
		r.Summary.Created, r.Summary.Updated, r.Summary.Skipped, r.Summary.Failed)
}

// summarize recounts the summary from the items.
func (r *Report) summarize() {
	r.Summary = Summary{}
	for _, item := range r.Items {
		switch item.Outcome {
		case OutcomeCreated:
			r.Summary.Created++
		case OutcomeUpdated:
			r.Summary.Updated++
		case OutcomeSkipped:
			r.Summary.Skipped++
		case OutcomeFailed:
			r.Summary.Failed++
		}
	}
}
