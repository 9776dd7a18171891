package domain

import "context"

//go:generate mockgen -source=snapshot_repository.go -destination=snapshot_repository_mock.go -package=domain

// SnapshotRepository persists the full tracking map as one durable
// snapshot. Save replaces the previous snapshot atomically; Load
// returns ErrSnapshotNotFound when no snapshot has been written yet.
type SnapshotRepository interface {
	Load(ctx context.Context) (map[string]*TrackingRecord, error)
	Save(ctx context.Context, records map[string]*TrackingRecord) error
}
