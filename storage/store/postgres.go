package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PostgresStore implements the Store interface.
//
// Expected schema (managed out of band):
//
//	CREATE TABLE tbl_data_requests (
//	    dr_id                    BIGSERIAL PRIMARY KEY,
//	    dr_bytes                 BYTEA NOT NULL,
//	    dr_state                 TEXT NOT NULL,
//	    dr_tx_hash               TEXT,
//	    dr_tx_creation_timestamp BIGINT,
//	    CHECK ((dr_tx_hash IS NULL) = (dr_tx_creation_timestamp IS NULL))
//	);
type PostgresStore struct {
	db     *pgxpool.Pool
	logger *log.Logger
}

const queryTimeout = 15 * time.Second

// NewPostgresStore creates a new PostgresStore instance
func NewPostgresStore(ctx context.Context, dsn string, maxConns, minConns int, logger *log.Logger) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database connection string: %w", err)
	}

	if maxConns > 0 {
		poolConfig.MaxConns = int32(maxConns)
	} else {
		poolConfig.MaxConns = 20 // Default
	}

	if minConns > 0 {
		poolConfig.MinConns = int32(minConns)
	} else {
		poolConfig.MinConns = 2 // Default
	}

	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbpool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := dbpool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Println("Successfully connected to PostgreSQL database")
	return &PostgresStore{db: dbpool, logger: logger}, nil
}

// Close closes the database connection pool
func (s *PostgresStore) Close() {
	s.db.Close()
	s.logger.Println("PostgreSQL database connection closed")
}

// GetAllPendingDrs returns every data request currently in StatePending.
// Rows violating the hash/timestamp pairing invariant are logged and skipped
// rather than aborting the whole fetch.
func (s *PostgresStore) GetAllPendingDrs(ctx context.Context) ([]PendingDr, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.Query(queryCtx, `
        SELECT dr_id, dr_bytes, dr_tx_hash, dr_tx_creation_timestamp
        FROM tbl_data_requests
        WHERE dr_state = $1
        ORDER BY dr_id`,
		StatePending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending data requests: %w", err)
	}
	defer rows.Close()

	var pending []PendingDr
	for rows.Next() {
		var (
			dr        PendingDr
			txHash    *string
			createdAt *int64
		)
		if err := rows.Scan(&dr.DrID, &dr.DrBytes, &txHash, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending data request row: %w", err)
		}
		if txHash == nil || createdAt == nil {
			s.logger.Printf("Skipping pending dr_id=%d with missing tx hash or creation timestamp", dr.DrID)
			continue
		}
		dr.DrTxHash = *txHash
		dr.DrTxCreationTimestamp = *createdAt
		pending = append(pending, dr)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating pending data requests: %w", rows.Err())
	}

	return pending, nil
}

// SetDrInfoBridge overwrites the bridge-visible fields of a single record.
// The write is idempotent: repeating it with the same info is a no-op.
func (s *PostgresStore) SetDrInfoBridge(ctx context.Context, drID uint64, info DrInfoBridge) error {
	if err := info.Validate(); err != nil {
		return err
	}

	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return s.db.BeginFunc(queryCtx, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(queryCtx, `
            UPDATE tbl_data_requests
            SET dr_bytes = $2,
                dr_state = $3,
                dr_tx_hash = $4,
                dr_tx_creation_timestamp = $5
            WHERE dr_id = $1`,
			int64(drID),
			info.DrBytes,
			info.DrState,
			info.DrTxHash,
			info.DrTxCreationTimestamp,
		)
		if err != nil {
			return fmt.Errorf("failed to update dr_id=%d: %w", drID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return ErrDrNotFound
		}
		return nil
	})
}

// GetDataRequest returns one record by id.
func (s *PostgresStore) GetDataRequest(ctx context.Context, drID uint64) (*DataRequest, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var dr DataRequest
	err := s.db.QueryRow(queryCtx, `
        SELECT dr_id, dr_bytes, dr_state, dr_tx_hash, dr_tx_creation_timestamp
        FROM tbl_data_requests
        WHERE dr_id = $1`,
		int64(drID),
	).Scan(&dr.DrID, &dr.DrBytes, &dr.DrState, &dr.DrTxHash, &dr.DrTxCreationTimestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDrNotFound
		}
		return nil, fmt.Errorf("failed to query dr_id=%d: %w", drID, err)
	}

	return &dr, nil
}

// InsertDataRequest records a new data request in StateNew.
func (s *PostgresStore) InsertDataRequest(ctx context.Context, drBytes []byte) (uint64, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var drID int64
	err := s.db.QueryRow(queryCtx, `
        INSERT INTO tbl_data_requests (dr_bytes, dr_state)
        VALUES ($1, $2)
        RETURNING dr_id`,
		drBytes,
		StateNew,
	).Scan(&drID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert data request: %w", err)
	}

	return uint64(drID), nil
}

// CountDrsByState returns the number of records in the given state.
func (s *PostgresStore) CountDrsByState(ctx context.Context, state DrState) (int64, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var count int64
	err := s.db.QueryRow(queryCtx, `
        SELECT COUNT(*) FROM tbl_data_requests WHERE dr_state = $1`,
		state,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count data requests in state %s: %w", state, err)
	}

	return count, nil
}
