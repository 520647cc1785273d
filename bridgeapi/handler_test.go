package bridgeapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"witbridge/storage/store"
)

type fakeDrStore struct {
	drs map[uint64]*store.DataRequest
}

func (f *fakeDrStore) GetDataRequest(ctx context.Context, drID uint64) (*store.DataRequest, error) {
	if dr, ok := f.drs[drID]; ok {
		return dr, nil
	}
	return nil, store.ErrDrNotFound
}

func newTestHandler(drs map[uint64]*store.DataRequest) *Handler {
	return NewHandler(&fakeDrStore{drs: drs}, log.New(io.Discard, "", 0))
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func TestGetDataRequest(t *testing.T) {
	handler := newTestHandler(map[uint64]*store.DataRequest{
		7: {
			DrID: 7,
			DrInfoBridge: store.DrInfoBridge{
				DrState:               store.StatePending,
				DrTxHash:              strPtr("0xabc"),
				DrTxCreationTimestamp: int64Ptr(1000),
			},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/drs/7", nil)
	w := httptest.NewRecorder()
	handler.GetDataRequest(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		DrID                  uint64  `json:"dr_id"`
		DrState               string  `json:"dr_state"`
		DrTxHash              *string `json:"dr_tx_hash"`
		DrTxCreationTimestamp *int64  `json:"dr_tx_creation_timestamp"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint64(7), resp.DrID)
	assert.Equal(t, "PENDING", resp.DrState)
	require.NotNil(t, resp.DrTxHash)
	assert.Equal(t, "0xabc", *resp.DrTxHash)
	require.NotNil(t, resp.DrTxCreationTimestamp)
	assert.Equal(t, int64(1000), *resp.DrTxCreationTimestamp)
}

func TestGetDataRequestPathValidation(t *testing.T) {
	handler := newTestHandler(nil)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{
			name:           "unknown id",
			path:           "/v1/drs/42",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "missing id",
			path:           "/v1/drs/",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "non-numeric id",
			path:           "/v1/drs/abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative id",
			path:           "/v1/drs/-1",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "path traversal with ..",
			path:           "/v1/drs/../../../etc/passwd",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "path with forward slash",
			path:           "/v1/drs/7/extra",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			handler.GetDataRequest(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestGetDataRequestMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/drs/7", nil)
	w := httptest.NewRecorder()
	handler.GetDataRequest(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
