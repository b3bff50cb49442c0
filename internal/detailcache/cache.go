// Package detailcache stores normalized facility detail payloads in object
// storage so repeat visits skip the slow upstream open-data APIs.
package detailcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mompick/backend/internal/logger"
	"github.com/mompick/backend/internal/metrics"
	"github.com/mompick/backend/internal/storage"
	"go.uber.org/zap"
)

const (
	// MaxAge is how long a cached detail stays servable
	MaxAge = 7 * 24 * time.Hour

	// saveTimeout bounds a cache write so slow storage never blocks a response path
	saveTimeout = 5 * time.Second

	apiVersion = "v1"
)

// Meta describes when and for which facility a cached payload was written
type Meta struct {
	FacilityCode string    `json:"facility_code"`
	LastSyncedAt time.Time `json:"lastSyncedAt"`
	APIVersion   string    `json:"apiVersion"`
}

// Envelope wraps a cached detail payload with its sync metadata
type Envelope struct {
	Meta Meta            `json:"meta"`
	Data json.RawMessage `json:"data"`
}

// Manager reads and writes facility detail envelopes against a blob store
type Manager struct {
	blobs  storage.BlobStore
	prefix string
	maxAge time.Duration

	// now is swappable in tests
	now func() time.Time
}

// NewManager creates a cache manager over the given blob store
func NewManager(blobs storage.BlobStore) *Manager {
	return &Manager{
		blobs:  blobs,
		prefix: "facility-details",
		maxAge: MaxAge,
		now:    time.Now,
	}
}

func (m *Manager) latestKey(facilityType, code string) string {
	return fmt.Sprintf("%s/%s/%s/latest.json", m.prefix, facilityType, code)
}

func (m *Manager) snapshotKey(facilityType, code string, at time.Time) string {
	return fmt.Sprintf("%s/%s/%s/%s.json", m.prefix, facilityType, code, at.Format("2006-01-02"))
}

// Get returns the cached envelope for a facility, or nil on a miss.
// Freshness is decided from object metadata alone: a HEAD older than the
// TTL is a miss and the stale body is never downloaded. Any storage error
// also degrades to a miss so the caller falls through to the upstream fetch.
func (m *Manager) Get(ctx context.Context, facilityType, code string) *Envelope {
	key := m.latestKey(facilityType, code)

	info, err := m.blobs.Head(ctx, key)
	if err != nil {
		if err != storage.ErrNotFound {
			logger.Warn("Detail cache head failed",
				zap.Error(err), zap.String("key", key))
		}
		metrics.RecordCacheMiss("facility_detail")
		return nil
	}

	if m.now().Sub(info.LastModified) > m.maxAge {
		metrics.RecordCacheMiss("facility_detail")
		return nil
	}

	data, err := m.blobs.Get(ctx, key)
	if err != nil {
		logger.Warn("Detail cache read failed",
			zap.Error(err), zap.String("key", key))
		metrics.RecordCacheMiss("facility_detail")
		return nil
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		logger.Warn("Detail cache payload corrupt",
			zap.Error(err), zap.String("key", key))
		metrics.RecordCacheMiss("facility_detail")
		return nil
	}

	metrics.RecordCacheHit("facility_detail")
	return &env
}

// Save writes a fresh envelope for a facility. The latest pointer is written
// first; the dated snapshot is best-effort and its failure is only logged.
// Save never returns an error: a failed write means the next reader refetches.
func (m *Manager) Save(facilityType, code string, payload json.RawMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	now := m.now()
	env := Envelope{
		Meta: Meta{
			FacilityCode: code,
			LastSyncedAt: now,
			APIVersion:   apiVersion,
		},
		Data: payload,
	}

	body, err := json.Marshal(env)
	if err != nil {
		logger.Error("Detail cache marshal failed",
			zap.Error(err), logger.WithFacility(facilityType, code))
		return
	}

	latest := m.latestKey(facilityType, code)
	if err := m.blobs.Put(ctx, latest, body, "application/json"); err != nil {
		logger.Warn("Detail cache save failed",
			zap.Error(err), zap.String("key", latest))
		return
	}

	snapshot := m.snapshotKey(facilityType, code, now)
	if err := m.blobs.Put(ctx, snapshot, body, "application/json"); err != nil {
		logger.Warn("Detail cache snapshot save failed",
			zap.Error(err), zap.String("key", snapshot))
	}
}
