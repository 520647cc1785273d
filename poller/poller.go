// Package poller implements the reconciliation loop of the bridge: it
// periodically checks the state of submitted data requests on the oracle
// network and forwards finalized tallies to the reporter.
package poller

import (
	"context"
	"errors"
	"log"
	"time"

	"witbridge/chain"
	"witbridge/node"
	"witbridge/reporter"
	"witbridge/storage/store"
)

// Store is the slice of the persistence layer the poller consumes: the full
// pending fetch and the single-record reset rewrite.
type Store interface {
	GetAllPendingDrs(ctx context.Context) ([]store.PendingDr, error)
	SetDrInfoBridge(ctx context.Context, drID uint64, info store.DrInfoBridge) error
}

// Config carries the poller settings.
type Config struct {
	// TallyPollingRate is the pause between the completion of one
	// reconciliation pass and the start of the next.
	TallyPollingRate time.Duration
	// UnresolvedTimeout enables the reset safety net: a data request that
	// keeps failing on the node for longer than this is rewritten back to
	// StateNew so the submitter retries it. Zero disables resets entirely.
	UnresolvedTimeout time.Duration
	// EpochConstants convert block epochs to result timestamps.
	EpochConstants chain.EpochConstants
}

// Poller drives one reconciliation pass per polling interval.
//
// Passes never overlap: the next pass is armed only after the previous one
// has fully completed, including the reporter send. A pass that takes longer
// than the polling rate therefore delays the cadence instead of stacking.
type Poller struct {
	store    Store
	node     node.Client
	reporter reporter.Reporter
	logger   *log.Logger

	pollingRate       time.Duration
	unresolvedTimeout time.Duration
	epochConstants    chain.EpochConstants

	// now returns the current Unix timestamp; swapped out in tests.
	now func() int64
}

// New wires a Poller to its collaborators. All handles are injected here;
// the poller performs no global lookups.
func New(cfg Config, st Store, nd node.Client, rep reporter.Reporter, logger *log.Logger) *Poller {
	return &Poller{
		store:             st,
		node:              nd,
		reporter:          rep,
		logger:            logger,
		pollingRate:       cfg.TallyPollingRate,
		unresolvedTimeout: cfg.UnresolvedTimeout,
		epochConstants:    cfg.EpochConstants,
		now:               func() int64 { return time.Now().Unix() },
	}
}

// Run blocks until ctx is cancelled, executing reconciliation passes in a
// sleep-after-completion loop. The first pass starts immediately.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Printf("Poller started, checking pending data requests every %s", p.pollingRate)
	for {
		p.poll(ctx)
		select {
		case <-ctx.Done():
			p.logger.Println("Poller stopped")
			return
		case <-time.After(p.pollingRate):
		}
	}
}

// poll runs one complete reconciliation pass over all pending data requests.
//
// Per record, exactly one of three dispositions happens: a report is
// accumulated, a reset to StateNew is written, or the record is left
// untouched for the next pass. A transport failure aborts the remainder of
// the pass; reports accumulated before the abort are still flushed.
func (p *Poller) poll(ctx context.Context) {
	pending, err := p.store.GetAllPendingDrs(ctx)
	if err != nil {
		p.logger.Printf("Failed to fetch pending data requests, will retry later: %v", err)
		return
	}

	currentTimestamp := p.now()
	reports := []reporter.Report{}

scan:
	for _, dr := range pending {
		report, err := p.node.DataRequestReport(ctx, dr.DrTxHash)
		if err != nil {
			var rpcErr *node.RPCError
			var decErr *node.DecodeError
			switch {
			case errors.As(err, &rpcErr):
				p.logger.Printf("[%d] dataRequestReport call error: %v", dr.DrID, rpcErr)
				p.maybeResetToNew(ctx, dr, currentTimestamp)
				continue
			case errors.As(err, &decErr):
				p.logger.Printf("[%d] dataRequestReport decode error: %v", dr.DrID, decErr)
				continue
			default:
				p.logger.Printf("Failed to connect to oracle node, will retry later: %v", err)
				break scan
			}
		}

		if report == nil || report.Tally == nil || report.BlockHashDrTx == nil {
			// No problem, the data request has not been resolved yet.
			p.logger.Printf("[%d] data request not resolved yet", dr.DrID)
			continue
		}

		p.logger.Printf("[%d] found possible tally to be reported for dr_tx_hash %s", dr.DrID, dr.DrTxHash)

		block, err := p.node.GetBlock(ctx, *report.BlockHashDrTx)
		if err != nil {
			var rpcErr *node.RPCError
			var decErr *node.DecodeError
			switch {
			case errors.As(err, &rpcErr):
				p.logger.Printf("[%d] getBlock call error (%s): %v", dr.DrID, *report.BlockHashDrTx, rpcErr)
				continue
			case errors.As(err, &decErr):
				p.logger.Printf("[%d] getBlock decode error: %v", dr.DrID, decErr)
				continue
			default:
				p.logger.Printf("Failed to connect to oracle node, will retry later: %v", err)
				break scan
			}
		}

		// The result timestamp is approximated by the epoch of the block
		// that included the data request. The true first block with commits
		// is one epoch later; that fixed offset is not applied here.
		timestamp := p.epochConstants.EpochTimestamp(block.BlockHeader.Beacon.Checkpoint)

		reports = append(reports, reporter.Report{
			DrID:      dr.DrID,
			Timestamp: timestamp,
			DrTxHash:  dr.DrTxHash,
			Result:    report.Tally.Tally,
		})
	}

	// The batch is sent even when empty, and even after an aborted pass:
	// reports collected before the abort must still reach the reporter.
	if err := p.reporter.ReportTallies(ctx, reports); err != nil {
		p.logger.Printf("Failed to report %d tallies: %v", len(reports), err)
	}
}

// maybeResetToNew rewrites a data request back to StateNew, clearing its
// transaction hash and creation timestamp, when the reset safety net is
// configured and the record has been unresolved for strictly longer than the
// threshold.
func (p *Poller) maybeResetToNew(ctx context.Context, dr store.PendingDr, currentTimestamp int64) {
	if p.unresolvedTimeout <= 0 {
		return
	}
	// Age accounting is in whole seconds with a strict comparison, matching
	// the node-side timestamp resolution.
	if currentTimestamp-dr.DrTxCreationTimestamp <= int64(p.unresolvedTimeout/time.Second) {
		return
	}

	p.logger.Printf("[%d] has been unresolved after more than %s, setting to New", dr.DrID, p.unresolvedTimeout)
	info := store.DrInfoBridge{
		DrBytes: dr.DrBytes,
		DrState: store.StateNew,
	}
	if err := p.store.SetDrInfoBridge(ctx, dr.DrID, info); err != nil {
		p.logger.Printf("[%d] failed to reset data request to New: %v", dr.DrID, err)
	}
}
