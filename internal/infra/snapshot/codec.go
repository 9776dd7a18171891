package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/campaignops/campaign-status-alerts/internal/domain"
)

// collectionName is the top-level key the snapshot document nests its
// records under.
const collectionName = "campaign"

// snapshotRecord is the wire form of one tracking record.
// LastAlertTime serializes as an explicit null before the first alert.
type snapshotRecord struct {
	Status        string          `json:"status"`
	StartTime     time.Time       `json:"startTime"`
	LastAlertTime *time.Time      `json:"lastAlertTime"`
	Summary       string          `json:"summary,omitempty"`
	Assignee      string          `json:"assignee,omitempty"`
	LatestComment *domain.Comment `json:"latestComment,omitempty"`
}

type snapshotDocument struct {
	Campaign map[string]snapshotRecord `json:"campaign"`
}

func encodeSnapshot(records map[string]*domain.TrackingRecord) ([]byte, error) {
	doc := snapshotDocument{
		Campaign: make(map[string]snapshotRecord, len(records)),
	}
	for key, record := range records {
		doc.Campaign[key] = snapshotRecord{
			Status:        record.Status,
			StartTime:     record.StartTime,
			LastAlertTime: record.LastAlertTime,
			Summary:       record.Summary,
			Assignee:      record.Assignee,
			LatestComment: record.LatestComment,
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (map[string]*domain.TrackingRecord, error) {
	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSnapshotCorrupt, err)
	}

	records := make(map[string]*domain.TrackingRecord, len(doc.Campaign))
	for key, rec := range doc.Campaign {
		records[key] = &domain.TrackingRecord{
			Key:           key,
			Status:        rec.Status,
			StartTime:     rec.StartTime,
			LastAlertTime: rec.LastAlertTime,
			Summary:       rec.Summary,
			Assignee:      rec.Assignee,
			LatestComment: rec.LatestComment,
		}
	}
	return records, nil
}
