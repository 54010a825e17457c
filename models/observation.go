package models

import "time"

// Observation is a labeled full-schema candidate. The composite unique index
// over the seven feature columns is what makes the recorder's upsert atomic:
// two identical submissions collapse to one row.
type Observation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Period      float64   `gorm:"column:period;uniqueIndex:idx_observations_features" json:"period"`
	Duration    float64   `gorm:"column:duration;uniqueIndex:idx_observations_features" json:"duration"`
	Depth       float64   `gorm:"column:depth;uniqueIndex:idx_observations_features" json:"depth"`
	Prad        float64   `gorm:"column:prad;uniqueIndex:idx_observations_features" json:"prad"`
	Steff       float64   `gorm:"column:steff;uniqueIndex:idx_observations_features" json:"steff"`
	Srad        float64   `gorm:"column:srad;uniqueIndex:idx_observations_features" json:"srad"`
	Mag         float64   `gorm:"column:mag;uniqueIndex:idx_observations_features" json:"mag"`
	Disposition string    `gorm:"column:disposition;size:100" json:"disposition"`
	UserID      *uint     `gorm:"column:user_id" json:"user_id,omitempty"`
	User        *User     `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Observation) TableName() string { return "observations" }

// ReducedObservation is the four-feature variant. The stored magnitude column
// is named kepmag while the request field stays "mag".
type ReducedObservation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Period      float64   `gorm:"column:period;uniqueIndex:idx_observations_reduced_features" json:"period"`
	Duration    float64   `gorm:"column:duration;uniqueIndex:idx_observations_reduced_features" json:"duration"`
	Depth       float64   `gorm:"column:depth;uniqueIndex:idx_observations_reduced_features" json:"depth"`
	Kepmag      float64   `gorm:"column:kepmag;uniqueIndex:idx_observations_reduced_features" json:"kepmag"`
	Disposition string    `gorm:"column:disposition;size:100" json:"disposition"`
	UserID      *uint     `gorm:"column:user_id" json:"user_id,omitempty"`
	User        *User     `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (ReducedObservation) TableName() string { return "observations_reduced" }
