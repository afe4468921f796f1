// Package store persists navmesh snapshots in SQLite so a session can be
// resumed without rescanning.
package store

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Faultbox/arnav/internal/logger"
	"github.com/Faultbox/arnav/internal/navmesh"
)

// ErrNotFound is returned when no snapshot matches a lookup.
var ErrNotFound = errors.New("snapshot not found")

const schema = `
CREATE TABLE IF NOT EXISTS navmesh_snapshots (
	snapshot_id   TEXT PRIMARY KEY,
	session_id    TEXT NOT NULL,
	created_at_ns INTEGER NOT NULL,
	tile_size     REAL NOT NULL,
	node_count    INTEGER NOT NULL,
	area          REAL NOT NULL,
	nodes_blob    BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_navmesh_snapshots_session
	ON navmesh_snapshots (session_id, created_at_ns);
`

// Summary describes a stored snapshot without its nodes.
type Summary struct {
	SnapshotID string
	SessionID  string
	CreatedAt  int64 // unix nanoseconds
	TileSize   float32
	NodeCount  int
	Area       float32
}

// Record is a stored snapshot with its nodes.
type Record struct {
	Summary
	Snapshot navmesh.Snapshot
}

// SnapshotStore reads and writes snapshots.
type SnapshotStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	s, err := NewSnapshotStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("snapshot store opened", zap.String("path", path))
	return s, nil
}

// NewSnapshotStore wraps an open database and creates the schema.
func NewSnapshotStore(db *sql.DB) (*SnapshotStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create snapshot schema: %w", err)
	}
	return &SnapshotStore{db: db}, nil
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.New().String()
}

// Close closes the database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// Insert stores snap under sessionID and returns the new snapshot ID.
func (s *SnapshotStore) Insert(sessionID string, snap navmesh.Snapshot) (string, error) {
	blob, err := encodeSnapshot(snap)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	_, err = s.db.Exec(`
		INSERT INTO navmesh_snapshots (
			snapshot_id, session_id, created_at_ns, tile_size, node_count, area, nodes_blob
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, sessionID, time.Now().UnixNano(), snap.Settings.TileSize, len(snap.Nodes), snap.Area(), blob,
	)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	logger.Named("store").Debug("snapshot stored",
		zap.String("id", id),
		zap.String("session", sessionID),
		zap.Int("nodes", len(snap.Nodes)),
		zap.Int("bytes", len(blob)),
	)
	return id, nil
}

// Get returns the snapshot with the given ID.
func (s *SnapshotStore) Get(snapshotID string) (*Record, error) {
	row := s.db.QueryRow(`
		SELECT snapshot_id, session_id, created_at_ns, tile_size, node_count, area, nodes_blob
		FROM navmesh_snapshots
		WHERE snapshot_id = ?`, snapshotID)
	return scanRecord(row)
}

// Latest returns the most recent snapshot of a session.
func (s *SnapshotStore) Latest(sessionID string) (*Record, error) {
	row := s.db.QueryRow(`
		SELECT snapshot_id, session_id, created_at_ns, tile_size, node_count, area, nodes_blob
		FROM navmesh_snapshots
		WHERE session_id = ?
		ORDER BY created_at_ns DESC, rowid DESC
		LIMIT 1`, sessionID)
	return scanRecord(row)
}

// List returns the summaries of a session, newest first.
func (s *SnapshotStore) List(sessionID string) ([]Summary, error) {
	rows, err := s.db.Query(`
		SELECT snapshot_id, session_id, created_at_ns, tile_size, node_count, area
		FROM navmesh_snapshots
		WHERE session_id = ?
		ORDER BY created_at_ns DESC, rowid DESC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.SnapshotID, &sum.SessionID, &sum.CreatedAt, &sum.TileSize, &sum.NodeCount, &sum.Area); err != nil {
			return nil, fmt.Errorf("scan snapshot summary: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes a snapshot.
func (s *SnapshotStore) Delete(snapshotID string) error {
	res, err := s.db.Exec(`DELETE FROM navmesh_snapshots WHERE snapshot_id = ?`, snapshotID)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, snapshotID)
	}
	return nil
}

func scanRecord(row *sql.Row) (*Record, error) {
	var rec Record
	var blob []byte
	err := row.Scan(&rec.SnapshotID, &rec.SessionID, &rec.CreatedAt, &rec.TileSize, &rec.NodeCount, &rec.Area, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}
	rec.Snapshot, err = decodeSnapshot(blob)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// encodeSnapshot compresses a snapshot using gob encoding and gzip compression.
func encodeSnapshot(snap navmesh.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(gz).Encode(snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeSnapshot reverses encodeSnapshot.
func decodeSnapshot(blob []byte) (navmesh.Snapshot, error) {
	var snap navmesh.Snapshot
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return snap, fmt.Errorf("decompress snapshot: %w", err)
	}
	defer gz.Close()
	if err := gob.NewDecoder(gz).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
