package chain

// Wire structures returned by the oracle node's JSON-RPC interface.
// Only the fields the bridge reads are declared; every other field in the
// node's responses is ignored on decode.

// TallyTx is the tally transaction attached to a resolved data request.
type TallyTx struct {
	// Tally is the raw result payload settled by the oracle network.
	Tally []byte `json:"tally"`
}

// DataRequestReport is the node's view of a submitted data request.
// A nil report means the request is not known to be resolved yet; a report
// with both Tally and BlockHashDrTx set describes a finalized result.
type DataRequestReport struct {
	Tally         *TallyTx `json:"tally"`
	BlockHashDrTx *string  `json:"block_hash_dr_tx"`
}

// Block is a block of the oracle network chain.
type Block struct {
	BlockHeader BlockHeader `json:"block_header"`
}

// BlockHeader carries the beacon that anchors the block to an epoch.
type BlockHeader struct {
	Beacon CheckpointBeacon `json:"beacon"`
}

// CheckpointBeacon identifies the consensus time slot a block belongs to.
type CheckpointBeacon struct {
	Checkpoint    uint32 `json:"checkpoint"`
	HashPrevBlock string `json:"hash_prev_block"`
}
