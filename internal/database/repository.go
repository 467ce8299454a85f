package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/obscura-collective/obscura-score/internal/pipeline"
)

// PredictionRecord is one persisted scoring run
type PredictionRecord struct {
	ID                       string    `json:"id"`
	Latitude                 float64   `json:"latitude"`
	Longitude                float64   `json:"longitude"`
	Month                    int       `json:"month"`
	ClimateRaw               *float64  `json:"climate_raw,omitempty"`
	GeographicRaw            *float64  `json:"geographic_raw,omitempty"`
	EconomicRaw              *float64  `json:"economic_raw,omitempty"`
	ClimateNorm              *float64  `json:"climate_norm,omitempty"`
	GeographicNorm           *float64  `json:"geographic_norm,omitempty"`
	EconomicNorm             *float64  `json:"economic_norm,omitempty"`
	EnvironmentChangeOutcome *float64  `json:"environment_change_outcome,omitempty"`
	FailureReason            *string   `json:"failure_reason,omitempty"`
	ConfigVersion            *int      `json:"config_version,omitempty"`
	CreatedAt                time.Time `json:"created_at"`
}

// Repository stores and retrieves prediction history
type Repository struct {
	db *DB
}

// NewRepository creates a repository over the given database
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// SavePrediction persists one pipeline result
func (r *Repository) SavePrediction(pred pipeline.Prediction) error {
	rec := recordFromPrediction(pred)

	_, err := r.db.Exec(`
		INSERT INTO predictions (
			id, latitude, longitude, month,
			climate_raw, geographic_raw, economic_raw,
			climate_norm, geographic_norm, economic_norm,
			environment_change_outcome, failure_reason, config_version, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Latitude, rec.Longitude, rec.Month,
		rec.ClimateRaw, rec.GeographicRaw, rec.EconomicRaw,
		rec.ClimateNorm, rec.GeographicNorm, rec.EconomicNorm,
		rec.EnvironmentChangeOutcome, rec.FailureReason, rec.ConfigVersion, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	return nil
}

// ListRecent returns the most recent predictions, newest first
func (r *Repository) ListRecent(limit int) ([]PredictionRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT id, latitude, longitude, month,
			climate_raw, geographic_raw, economic_raw,
			climate_norm, geographic_norm, economic_norm,
			environment_change_outcome, failure_reason, config_version, created_at
		FROM predictions
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	records := make([]PredictionRecord, 0, limit)
	for rows.Next() {
		var rec PredictionRecord
		if err := rows.Scan(
			&rec.ID, &rec.Latitude, &rec.Longitude, &rec.Month,
			&rec.ClimateRaw, &rec.GeographicRaw, &rec.EconomicRaw,
			&rec.ClimateNorm, &rec.GeographicNorm, &rec.EconomicNorm,
			&rec.EnvironmentChangeOutcome, &rec.FailureReason, &rec.ConfigVersion, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetPrediction looks up a single prediction by id
func (r *Repository) GetPrediction(id string) (*PredictionRecord, error) {
	row := r.db.QueryRow(`
		SELECT id, latitude, longitude, month,
			climate_raw, geographic_raw, economic_raw,
			climate_norm, geographic_norm, economic_norm,
			environment_change_outcome, failure_reason, config_version, created_at
		FROM predictions WHERE id = ?`, id)

	var rec PredictionRecord
	if err := row.Scan(
		&rec.ID, &rec.Latitude, &rec.Longitude, &rec.Month,
		&rec.ClimateRaw, &rec.GeographicRaw, &rec.EconomicRaw,
		&rec.ClimateNorm, &rec.GeographicNorm, &rec.EconomicNorm,
		&rec.EnvironmentChangeOutcome, &rec.FailureReason, &rec.ConfigVersion, &rec.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan prediction: %w", err)
	}
	return &rec, nil
}

func recordFromPrediction(pred pipeline.Prediction) PredictionRecord {
	rec := PredictionRecord{
		ID:        pred.ID,
		Latitude:  pred.Latitude,
		Longitude: pred.Longitude,
		Month:     pred.Month,
		CreatedAt: pred.GeneratedAt,
	}

	o := pred.Outcome
	if o.Failure != nil {
		reason := o.Failure.Reason
		rec.FailureReason = &reason
		return rec
	}
	if o.Scores != nil {
		rec.ClimateRaw = &o.Scores.Climate
		rec.GeographicRaw = &o.Scores.Geographic
		rec.EconomicRaw = &o.Scores.Economic
	}
	if o.Normalized != nil {
		rec.ClimateNorm = &o.Normalized.Climate
		rec.GeographicNorm = &o.Normalized.Geographic
		rec.EconomicNorm = &o.Normalized.Economic
	}
	rec.EnvironmentChangeOutcome = o.EnvironmentChangeOutcome
	if o.Metadata != nil {
		version := o.Metadata.ConfigVersion
		rec.ConfigVersion = &version
	}
	return rec
}
