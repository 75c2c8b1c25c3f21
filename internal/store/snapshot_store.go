package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"strength-tracker/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Supported history windows.
const (
	WindowWeek  = 7 * 24 * time.Hour
	WindowMonth = 30 * 24 * time.Hour
)

// ErrInvalidWindow is returned by Range for any duration other than the
// week/month windows.
var ErrInvalidWindow = errors.New("unsupported history window")

// SnapshotStore is the append-only log of market snapshots.
type SnapshotStore interface {
	Append(payload models.Payload) (uint, error)
	Latest() (*models.MarketSnapshot, error)
	Range(since time.Duration) ([]models.HistoryEntry, error)
}

type gormSnapshotStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSnapshotStore builds the gorm-backed store.
func NewSnapshotStore(db *gorm.DB) SnapshotStore {
	return &gormSnapshotStore{db: db, now: time.Now}
}

func (s *gormSnapshotStore) Append(payload models.Payload) (uint, error) {
	blob, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encode snapshot payload: %w", err)
	}
	snapshot := models.MarketSnapshot{
		CapturedAt: s.now(),
		Payload:    string(blob),
	}
	if err := s.db.Create(&snapshot).Error; err != nil {
		return 0, fmt.Errorf("append snapshot: %w", err)
	}
	return snapshot.ID, nil
}

// Latest returns the snapshot with the greatest id, or (nil, nil) on an
// empty store.
func (s *gormSnapshotStore) Latest() (*models.MarketSnapshot, error) {
	var snapshot models.MarketSnapshot
	err := s.db.Order("id desc").First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest snapshot: %w", err)
	}
	return &snapshot, nil
}

// Range returns every snapshot captured within the window, newest first.
// Rows whose payload fails to decode are dropped from the result.
func (s *gormSnapshotStore) Range(since time.Duration) ([]models.HistoryEntry, error) {
	if since != WindowWeek && since != WindowMonth {
		return nil, ErrInvalidWindow
	}

	var rows []models.MarketSnapshot
	cutoff := s.now().Add(-since)
	// id desc keeps entries ordered even when captured_at collides.
	err := s.db.Where("captured_at >= ?", cutoff).Order("id desc").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load snapshot range: %w", err)
	}

	entries := make([]models.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		payload, err := models.DecodePayload(row.Payload)
		if err != nil {
			logrus.WithError(err).WithField("snapshot_id", row.ID).Warn("skipping malformed snapshot row")
			continue
		}
		entries = append(entries, models.HistoryEntry{
			Timestamp: row.CapturedAt,
			Metadata:  payload.Metadata,
			Series:    payload.Series,
			Scores:    payload.Scores,
			Setups:    payload.Setups,
		})
	}
	return entries, nil
}
