package chain

import "math"

// EpochConstants ties the network's epoch numbering to wall-clock time.
// Both values are fixed at genesis and never change at runtime.
type EpochConstants struct {
	// CheckpointZeroTimestamp is the Unix timestamp of epoch 0.
	CheckpointZeroTimestamp int64
	// CheckpointsPeriod is the duration of one epoch in seconds.
	CheckpointsPeriod uint16
}

// MainnetEpochConstants is the genesis of the main oracle network:
// Wednesday, 14-Oct-2020, 09:00 UTC, 45-second epochs.
var MainnetEpochConstants = EpochConstants{
	CheckpointZeroTimestamp: 1_602_666_000,
	CheckpointsPeriod:       45,
}

// EpochTimestamp converts an epoch number to the Unix timestamp at which
// that epoch starts. The conversion is pure; on arithmetic overflow or a
// negative result it returns the sentinel value 0 instead of failing.
func (c EpochConstants) EpochTimestamp(epoch uint32) int64 {
	offset := int64(epoch) * int64(c.CheckpointsPeriod)
	if c.CheckpointZeroTimestamp > math.MaxInt64-offset {
		return 0
	}
	ts := c.CheckpointZeroTimestamp + offset
	if ts < 0 {
		return 0
	}
	return ts
}
