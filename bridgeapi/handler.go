// Package bridgeapi exposes a read-only HTTP view of bridge state for
// operators.
package bridgeapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"witbridge/storage/store"
)

// DataRequestGetter is the slice of the store the handler reads from.
type DataRequestGetter interface {
	GetDataRequest(ctx context.Context, drID uint64) (*store.DataRequest, error)
}

// Handler wraps the store with HTTP handlers
type Handler struct {
	drs    DataRequestGetter
	logger *log.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(drs DataRequestGetter, logger *log.Logger) *Handler {
	return &Handler{drs: drs, logger: logger}
}

// RegisterRoutes registers all bridge API routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/drs/", h.GetDataRequest)
}

type dataRequestResponse struct {
	DrID                  uint64  `json:"dr_id"`
	DrState               string  `json:"dr_state"`
	DrTxHash              *string `json:"dr_tx_hash,omitempty"`
	DrTxCreationTimestamp *int64  `json:"dr_tx_creation_timestamp,omitempty"`
}

// GetDataRequest handles GET /v1/drs/{dr_id}
func (h *Handler) GetDataRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Extract dr_id from path
	path := strings.TrimPrefix(r.URL.Path, "/v1/drs/")
	rawID := strings.TrimSpace(path)
	if rawID == "" {
		writeError(w, http.StatusBadRequest, "missing dr_id")
		return
	}

	// Validate dr_id to prevent path traversal
	if strings.Contains(rawID, "..") || strings.Contains(rawID, "/") {
		writeError(w, http.StatusBadRequest, "invalid dr_id: path traversal characters not allowed")
		return
	}

	drID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dr_id: must be a decimal integer")
		return
	}

	dr, err := h.drs.GetDataRequest(r.Context(), drID)
	if err != nil {
		if errors.Is(err, store.ErrDrNotFound) {
			writeError(w, http.StatusNotFound, "data request not found")
			return
		}
		h.logger.Printf("Failed to query dr_id=%d: %v", drID, err)
		writeError(w, http.StatusInternalServerError, "failed to query data request")
		return
	}

	writeJSON(w, http.StatusOK, dataRequestResponse{
		DrID:                  dr.DrID,
		DrState:               string(dr.DrState),
		DrTxHash:              dr.DrTxHash,
		DrTxCreationTimestamp: dr.DrTxCreationTimestamp,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
