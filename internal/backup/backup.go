package backup

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"boutique/internal/log"
)

// ErrNoSnapshots is returned when a restore is requested but the index
// holds no entries.
var ErrNoSnapshots = errors.New("no snapshots available")

// ErrSnapshotNotFound is returned when the requested snapshot id is not
// in the index.
var ErrSnapshotNotFound = errors.New("snapshot not found")

const indexFile = "snapshots.json"

// Snapshot is one entry of the index. CreatedAt is authoritative for
// ordering: file modification times are not trusted because copies and
// restores rewrite them.
type Snapshot struct {
	ID        string    `json:"id"`
	File      string    `json:"file"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

// DB is the slice of the database handle the manager needs. It is an
// interface so callers can hand over a repository that swaps its
// underlying handle on restore.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Manager produces consistent database snapshots into a directory and
// tracks them in a JSON index next to the files.
type Manager struct {
	db     DB
	dbPath string
	dir    string
	logger *log.Logger
	now    func() time.Time
}

// NewManager creates a manager writing into dir. db may be nil for a
// restore-only manager.
func NewManager(db DB, dbPath, dir string, logger *log.Logger) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &Manager{
		db:     db,
		dbPath: dbPath,
		dir:    dir,
		logger: logger.WithComponent(log.ComponentBackup),
		now:    time.Now,
	}, nil
}

// Snapshot writes a consistent copy of the live database via VACUUM INTO
// and records it in the index. The copy sees a single point in time even
// with concurrent writers.
func (m *Manager) Snapshot(ctx context.Context) (Snapshot, error) {
	if m.db == nil {
		return Snapshot{}, errors.New("snapshot manager has no database handle")
	}

	index, err := m.readIndex()
	if err != nil {
		return Snapshot{}, err
	}

	// Ids have one-second granularity. A second snapshot inside the same
	// second would reuse the id and overwrite the first file, so bump the
	// timestamp until it is free.
	created := m.now().UTC()
	id := created.Format("20060102T150405Z")
	for indexHas(index, id) {
		created = created.Add(time.Second)
		id = created.Format("20060102T150405Z")
	}
	file := filepath.Join(m.dir, "boutique_"+id+".db")

	// VACUUM INTO refuses to overwrite; a stale partial file from a
	// crashed run would block the snapshot forever.
	if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
		return Snapshot{}, fmt.Errorf("clear stale snapshot file: %w", err)
	}

	// VACUUM INTO does not reliably accept bound parameters, so the
	// path is inlined with quotes escaped.
	stmt := fmt.Sprintf("VACUUM INTO '%s'", strings.ReplaceAll(file, "'", "''"))
	if _, err := m.db.ExecContext(ctx, stmt); err != nil {
		return Snapshot{}, fmt.Errorf("vacuum into %s: %w", file, err)
	}

	info, err := os.Stat(file)
	if err != nil {
		return Snapshot{}, fmt.Errorf("stat snapshot file: %w", err)
	}

	snap := Snapshot{
		ID:        id,
		File:      filepath.Base(file),
		CreatedAt: created,
		SizeBytes: info.Size(),
	}

	index = append(index, snap)
	if err := m.writeIndex(index); err != nil {
		return Snapshot{}, err
	}

	m.logger.InfoContext(ctx, "Snapshot created",
		log.FieldSnapshotID, snap.ID,
		"size_bytes", snap.SizeBytes)

	return snap, nil
}

// List returns all known snapshots, newest first.
func (m *Manager) List() ([]Snapshot, error) {
	index, err := m.readIndex()
	if err != nil {
		return nil, err
	}
	sort.Slice(index, func(i, j int) bool {
		return index[i].CreatedAt.After(index[j].CreatedAt)
	})
	return index, nil
}

// Latest returns the snapshot with the most recent CreatedAt.
func (m *Manager) Latest() (Snapshot, error) {
	index, err := m.List()
	if err != nil {
		return Snapshot{}, err
	}
	if len(index) == 0 {
		return Snapshot{}, ErrNoSnapshots
	}
	return index[0], nil
}

// Restore copies the identified snapshot over the live database path.
// The caller must have closed the live handle first.
func (m *Manager) Restore(id string) (Snapshot, error) {
	index, err := m.readIndex()
	if err != nil {
		return Snapshot{}, err
	}
	for _, snap := range index {
		if snap.ID == id {
			if err := copyFile(filepath.Join(m.dir, snap.File), m.dbPath); err != nil {
				return Snapshot{}, fmt.Errorf("restore snapshot %s: %w", id, err)
			}
			m.logger.Info("Snapshot restored", log.FieldSnapshotID, id)
			return snap, nil
		}
	}
	return Snapshot{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
}

// RestoreLatest restores the most recent snapshot.
func (m *Manager) RestoreLatest() (Snapshot, error) {
	latest, err := m.Latest()
	if err != nil {
		return Snapshot{}, err
	}
	return m.Restore(latest.ID)
}

// Prune keeps the newest keep snapshots and deletes the rest, files and
// index entries both. keep < 1 is a no-op.
func (m *Manager) Prune(keep int) (int, error) {
	if keep < 1 {
		return 0, nil
	}
	index, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(index) <= keep {
		return 0, nil
	}

	var removed int
	for _, snap := range index[keep:] {
		if err := os.Remove(filepath.Join(m.dir, snap.File)); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove snapshot file %s: %w", snap.File, err)
		}
		removed++
	}
	if err := m.writeIndex(index[:keep]); err != nil {
		return removed, err
	}
	m.logger.Info("Snapshots pruned", "removed", removed, "kept", keep)
	return removed, nil
}

func indexHas(index []Snapshot, id string) bool {
	for _, snap := range index {
		if snap.ID == id {
			return true
		}
	}
	return false
}

func (m *Manager) readIndex() ([]Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(m.dir, indexFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot index: %w", err)
	}
	var index []Snapshot
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse snapshot index: %w", err)
	}
	return index, nil
}

func (m *Manager) writeIndex(index []Snapshot) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot index: %w", err)
	}
	tmp := filepath.Join(m.dir, indexFile+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot index: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(m.dir, indexFile)); err != nil {
		return fmt.Errorf("replace snapshot index: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
