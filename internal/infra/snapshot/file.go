package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/campaignops/campaign-status-alerts/internal/domain"
)

// FallbackPath is used when the configured snapshot path is not
// writable, typically on read-only container filesystems.
const FallbackPath = "/tmp/tracking.json"

// FileRepository stores the tracking snapshot as a JSON file. Writes
// go through a temp file that is re-parsed and renamed into place, so
// a crash mid-write never leaves a corrupt snapshot behind.
type FileRepository struct {
	path         string
	fallbackPath string
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path:         path,
		fallbackPath: FallbackPath,
	}
}

// Load reads the snapshot from the primary path, falling back to the
// fallback path when the primary is absent or unreadable. A corrupt
// primary snapshot is reported, never silently replaced.
func (r *FileRepository) Load(ctx context.Context) (map[string]*domain.TrackingRecord, error) {
	records, err := r.loadFrom(ctx, r.path)
	if err == nil {
		return records, nil
	}
	if errors.Is(err, domain.ErrSnapshotCorrupt) {
		return nil, err
	}

	records, fallbackErr := r.loadFrom(ctx, r.fallbackPath)
	if fallbackErr == nil {
		slog.WarnContext(ctx, "loaded tracking snapshot from fallback path",
			slog.String("path", r.fallbackPath),
		)
		return records, nil
	}
	return nil, err
}

func (r *FileRepository) loadFrom(ctx context.Context, path string) (map[string]*domain.TrackingRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	// An empty file is a fresh start, not a corrupt snapshot.
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, domain.ErrSnapshotNotFound
	}

	records, err := decodeSnapshot(data)
	if err != nil {
		slog.ErrorContext(ctx, "tracking snapshot is corrupt",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return records, nil
}

// Save writes the snapshot to the primary path. When the primary path
// is not writable it falls down to the fallback path and reports
// success, so alerting keeps running on hosts without a durable disk.
func (r *FileRepository) Save(ctx context.Context, records map[string]*domain.TrackingRecord) error {
	data, err := encodeSnapshot(records)
	if err != nil {
		return err
	}

	if err := writeAtomic(r.path, data); err != nil {
		slog.WarnContext(ctx, "failed to write snapshot to primary path, using fallback",
			slog.String("path", r.path),
			slog.String("fallback", r.fallbackPath),
			slog.String("error", err.Error()),
		)
		if fallbackErr := writeAtomic(r.fallbackPath, data); fallbackErr != nil {
			return fmt.Errorf("failed to write snapshot: %w", fallbackErr)
		}
	}
	return nil
}

// writeAtomic writes data to a sibling temp file, verifies the bytes
// parse back, then renames over the target.
func writeAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}

	written, err := os.ReadFile(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to verify temp snapshot: %w", err)
	}
	if _, err := decodeSnapshot(written); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("temp snapshot failed verification: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp snapshot: %w", err)
	}
	return nil
}
