// Package reporter defines the contract between the reconciliation loop and
// the downstream result-reporting path.
package reporter

import "context"

// Report carries one finalized data request result. It is produced during a
// single reconciliation pass, handed to the Reporter exactly once as part of
// that pass's batch, and not retained afterwards.
type Report struct {
	DrID      uint64
	Timestamp int64
	DrTxHash  string
	Result    []byte
}

// Reporter accepts the batch of reports collected by one reconciliation
// pass. It is called exactly once per pass, possibly with an empty batch.
// Delivery is fire-and-forget from the caller's perspective; downstream is
// expected to provide at-least-once semantics.
type Reporter interface {
	ReportTallies(ctx context.Context, reports []Report) error
}
