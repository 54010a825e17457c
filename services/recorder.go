package services

import (
	"context"
	"fmt"

	"exoplanet-finder-api/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ObservationRecorder persists one prediction outcome keyed by the exact
// feature tuple. Implementations must be atomic: concurrent identical
// submissions may not produce duplicate rows.
type ObservationRecorder interface {
	Record(ctx context.Context, features []float64, disposition string, userID *uint) error
}

// LiveUpdate is published to the live channel after each recorded disposition.
type LiveUpdate struct {
	Schema      string             `json:"schema"`
	Features    map[string]float64 `json:"features"`
	Disposition string             `json:"disposition"`
}

// FullObservationRecorder upserts seven-feature observations. The conflict
// target is the composite unique index over the feature columns, so the write
// is a single INSERT ... ON CONFLICT DO UPDATE. The owner column is only
// assigned when the caller is authenticated; an anonymous resubmission never
// clears an existing owner.
type FullObservationRecorder struct {
	db    *gorm.DB
	cache *CacheService
}

func NewFullObservationRecorder(db *gorm.DB, cache *CacheService) *FullObservationRecorder {
	return &FullObservationRecorder{db: db, cache: cache}
}

var fullConflictColumns = []clause.Column{
	{Name: "period"}, {Name: "duration"}, {Name: "depth"},
	{Name: "prad"}, {Name: "steff"}, {Name: "srad"}, {Name: "mag"},
}

func (r *FullObservationRecorder) Record(ctx context.Context, features []float64, disposition string, userID *uint) error {
	if len(features) != 7 {
		return fmt.Errorf("record full observation: got %d features, want 7", len(features))
	}

	obs := models.Observation{
		Period:      features[0],
		Duration:    features[1],
		Depth:       features[2],
		Prad:        features[3],
		Steff:       features[4],
		Srad:        features[5],
		Mag:         features[6],
		Disposition: disposition,
		UserID:      userID,
	}

	assign := []string{"disposition"}
	if userID != nil {
		assign = append(assign, "user_id")
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   fullConflictColumns,
		DoUpdates: clause.AssignmentColumns(assign),
	}).Create(&obs).Error
	if err != nil {
		return fmt.Errorf("upsert observation: %w", err)
	}

	publishLive(r.cache, LiveUpdate{
		Schema:      "full",
		Features:    map[string]float64{"period": obs.Period, "duration": obs.Duration, "depth": obs.Depth, "prad": obs.Prad, "steff": obs.Steff, "srad": obs.Srad, "mag": obs.Mag},
		Disposition: disposition,
	})
	return nil
}

// ReducedObservationRecorder is the four-feature counterpart. Both schemas
// upsert by feature tuple; the source's always-create behavior on this path
// was an inconsistency, not a feature.
type ReducedObservationRecorder struct {
	db    *gorm.DB
	cache *CacheService
}

func NewReducedObservationRecorder(db *gorm.DB, cache *CacheService) *ReducedObservationRecorder {
	return &ReducedObservationRecorder{db: db, cache: cache}
}

var reducedConflictColumns = []clause.Column{
	{Name: "period"}, {Name: "duration"}, {Name: "depth"}, {Name: "kepmag"},
}

func (r *ReducedObservationRecorder) Record(ctx context.Context, features []float64, disposition string, userID *uint) error {
	if len(features) != 4 {
		return fmt.Errorf("record reduced observation: got %d features, want 4", len(features))
	}

	obs := models.ReducedObservation{
		Period:      features[0],
		Duration:    features[1],
		Depth:       features[2],
		Kepmag:      features[3],
		Disposition: disposition,
		UserID:      userID,
	}

	assign := []string{"disposition"}
	if userID != nil {
		assign = append(assign, "user_id")
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   reducedConflictColumns,
		DoUpdates: clause.AssignmentColumns(assign),
	}).Create(&obs).Error
	if err != nil {
		return fmt.Errorf("upsert reduced observation: %w", err)
	}

	publishLive(r.cache, LiveUpdate{
		Schema:      "reduced",
		Features:    map[string]float64{"period": obs.Period, "duration": obs.Duration, "depth": obs.Depth, "kepmag": obs.Kepmag},
		Disposition: disposition,
	})
	return nil
}

func publishLive(cache *CacheService, update LiveUpdate) {
	if cache == nil {
		return
	}
	go func() {
		if err := cache.Publish(context.Background(), LiveChannel, update); err != nil {
			log.Warn().Err(err).Msg("live publish failed")
		}
	}()
}
