package store

import (
	"context"
	"errors"
)

// Store-level errors
var (
	ErrDrNotFound       = errors.New("data request not found")
	ErrUnpairedBridgeTx = errors.New("dr_tx_hash and dr_tx_creation_timestamp must be set together")
)

// DrState is the lifecycle state of a data request tracked by the bridge.
type DrState string

const (
	// StateNew: recorded by the submitter, not yet posted to the oracle network.
	StateNew DrState = "NEW"
	// StatePending: posted to the oracle network; the transaction hash and
	// creation timestamp are populated.
	StatePending DrState = "PENDING"
	// StateFinished: tally reported downstream; terminal.
	StateFinished DrState = "FINISHED"
)

// PendingDr is one element of the pending set scanned by the poller. For a
// record in StatePending both DrTxHash and DrTxCreationTimestamp are set.
type PendingDr struct {
	DrID                  uint64
	DrBytes               []byte
	DrTxHash              string
	DrTxCreationTimestamp int64
}

// DrInfoBridge is the bridge-visible slice of a data request record.
//
// Invariant: DrTxHash and DrTxCreationTimestamp are both set or both nil;
// together they describe when and where the request was last submitted for
// resolution.
type DrInfoBridge struct {
	DrBytes               []byte
	DrState               DrState
	DrTxHash              *string
	DrTxCreationTimestamp *int64
}

// Validate checks the paired hash/timestamp invariant.
func (i DrInfoBridge) Validate() error {
	if (i.DrTxHash == nil) != (i.DrTxCreationTimestamp == nil) {
		return ErrUnpairedBridgeTx
	}
	return nil
}

// DataRequest is a full data request record.
type DataRequest struct {
	DrID uint64
	DrInfoBridge
}

// Store is the data request persistence interface.
//
// The poller is the only writer performing resets; concurrent mutation of
// the same records by another writer is unsupported.
type Store interface {

	// GetAllPendingDrs returns every data request in StatePending.
	GetAllPendingDrs(ctx context.Context) ([]PendingDr, error)

	// SetDrInfoBridge overwrites the bridge-visible fields of one record.
	// Idempotent; the poller uses it only to reset a record to StateNew with
	// the transaction hash and creation timestamp cleared.
	SetDrInfoBridge(ctx context.Context, drID uint64, info DrInfoBridge) error

	// GetDataRequest returns one record, or ErrDrNotFound.
	GetDataRequest(ctx context.Context, drID uint64) (*DataRequest, error)

	// InsertDataRequest records a new data request in StateNew and returns
	// its id. Used by the upstream submission path, not by the poller.
	InsertDataRequest(ctx context.Context, drBytes []byte) (uint64, error)

	// CountDrsByState returns the number of records in the given state.
	CountDrsByState(ctx context.Context, state DrState) (int64, error)

	// Close closes the database connection
	Close()
}
