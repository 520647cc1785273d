package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrInfoBridgeValidate(t *testing.T) {
	hash := "0xabc"
	ts := int64(1000)

	tests := []struct {
		name    string
		info    DrInfoBridge
		wantErr bool
	}{
		{
			name: "both set",
			info: DrInfoBridge{DrState: StatePending, DrTxHash: &hash, DrTxCreationTimestamp: &ts},
		},
		{
			name: "both cleared",
			info: DrInfoBridge{DrState: StateNew},
		},
		{
			name:    "hash without timestamp",
			info:    DrInfoBridge{DrState: StatePending, DrTxHash: &hash},
			wantErr: true,
		},
		{
			name:    "timestamp without hash",
			info:    DrInfoBridge{DrState: StatePending, DrTxCreationTimestamp: &ts},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.info.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnpairedBridgeTx)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
