package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openav/multizone-core/internal/protocol"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Snapshot sources.
const (
	SourcePoll    = "poll"
	SourceQuery   = "query"
	SourceCommand = "command"
)

// ErrNotFound indicates no snapshot exists for the requested zone.
var ErrNotFound = errors.New("history: not found")

// Entry is one recorded zone status snapshot.
type Entry struct {
	ID        int64               `json:"id"`
	DeviceID  string              `json:"device_id"`
	Zone      int                 `json:"zone"`
	Status    protocol.ZoneStatus `json:"status"`
	Source    string              `json:"source"`
	CreatedAt time.Time           `json:"created_at"`
}

// Repository stores zone status snapshots in SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repository over an open SQLite connection.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Record inserts a snapshot for a device zone.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - deviceID: Configured device identifier
//   - st: Zone status as decoded from the amplifier
//   - source: Origin of the snapshot (poll, query, command)
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
func (r *Repository) Record(ctx context.Context, deviceID string, st protocol.ZoneStatus, source string) error {
	if deviceID == "" {
		return fmt.Errorf("history: device id is required")
	}
	if source == "" {
		source = SourcePoll
	}

	statusJSON, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshalling status: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO zone_status_history (device_id, zone, status, source, created_at) VALUES (?, ?, ?, ?, ?)",
		deviceID,
		st.Zone,
		string(statusJSON),
		source,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting zone status: %w", err)
	}

	return nil
}

// Zone returns recent snapshots for one device zone, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - deviceID: Configured device identifier
//   - zone: Zone id within the device
//   - limit: Maximum entries to return (default 50, max 200)
//
// Returns:
//   - []Entry: Snapshots ordered by created_at DESC
//   - error: nil on success, otherwise the underlying query error
func (r *Repository) Zone(ctx context.Context, deviceID string, zone, limit int) ([]Entry, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("history: device id is required")
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device_id, zone, status, source, created_at
		 FROM zone_status_history
		 WHERE device_id = ? AND zone = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		deviceID,
		zone,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying zone status history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating zone status history: %w", err)
	}

	return entries, nil
}

// Latest returns the most recent snapshot for one device zone, used to
// restore zone state after an amplifier power cycle.
func (r *Repository) Latest(ctx context.Context, deviceID string, zone int) (*Entry, error) {
	entries, err := r.Zone(ctx, deviceID, zone, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s zone %d", ErrNotFound, deviceID, zone)
	}
	return &entries[0], nil
}

// Prune deletes snapshots older than the given duration.
//
// Returns:
//   - int64: Number of rows deleted
//   - error: nil on success, otherwise the underlying database error
func (r *Repository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("history: olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM zone_status_history WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting zone status history: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

// scanEntry decodes one history row.
func scanEntry(rows *sql.Rows) (Entry, error) {
	var entry Entry
	var statusJSON string
	var createdAt string

	if err := rows.Scan(&entry.ID, &entry.DeviceID, &entry.Zone, &statusJSON, &entry.Source, &createdAt); err != nil {
		return Entry{}, fmt.Errorf("scanning zone status history: %w", err)
	}

	if err := json.Unmarshal([]byte(statusJSON), &entry.Status); err != nil {
		return Entry{}, fmt.Errorf("unmarshalling status: %w", err)
	}

	timestamp, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing created_at: %w", err)
	}
	entry.CreatedAt = timestamp

	return entry, nil
}
