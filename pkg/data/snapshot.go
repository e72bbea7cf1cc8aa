package data

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/velocitymatch/vmctl/pkg/carrier"
	"github.com/velocitymatch/vmctl/pkg/score"
)

const (
	insertSnapshotSQL = `INSERT INTO snapshot (id, seed, record_count, created_at)
		VALUES (?, ?, ?, ?)
	`

	insertCarrierSQL = `INSERT INTO snapshot_carrier (
			snapshot_id, carrier_id, name, state, city, fleet_size,
			safety_score, out_of_service_rate, crash_rate,
			wage_percentile, cargo_type, violation_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	insertScoreSQL = `INSERT INTO snapshot_score (
			snapshot_id, carrier_id, churn_risk, estimated_annual_savings,
			safety_component, wage_component, fleet_component)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	selectSnapshotSQL = `SELECT id, seed, record_count, created_at
		FROM snapshot
		WHERE id = ?
	`

	selectSnapshotsSQL = `SELECT id, seed, record_count, created_at
		FROM snapshot
		ORDER BY created_at DESC, id
	`

	selectCarriersSQL = `SELECT carrier_id, name, state, city, fleet_size,
			safety_score, out_of_service_rate, crash_rate,
			wage_percentile, cargo_type, violation_count
		FROM snapshot_carrier
		WHERE snapshot_id = ?
		ORDER BY carrier_id
	`

	selectScoresSQL = `SELECT carrier_id, churn_risk, estimated_annual_savings,
			safety_component, wage_component, fleet_component
		FROM snapshot_score
		WHERE snapshot_id = ?
	`

	deleteScoresSQL   = `DELETE FROM snapshot_score WHERE snapshot_id = ?`
	deleteCarriersSQL = `DELETE FROM snapshot_carrier WHERE snapshot_id = ?`
	deleteSnapshotSQL = `DELETE FROM snapshot WHERE id = ?`
)

// Snapshot identifies one persisted cohort.
type Snapshot struct {
	ID          string `json:"id" yaml:"id"`
	Seed        int64  `json:"seed" yaml:"seed"`
	RecordCount int    `json:"record_count" yaml:"recordCount"`
	CreatedAt   string `json:"created_at" yaml:"createdAt"`
}

// SnapshotData is a snapshot with its records and scores.
type SnapshotData struct {
	Snapshot Snapshot                   `json:"snapshot" yaml:"snapshot"`
	Records  []carrier.Record           `json:"records" yaml:"records"`
	Scores   map[string]score.RiskScore `json:"scores,omitempty" yaml:"scores,omitempty"`
}

// SaveSnapshot persists a cohort and its scores in one transaction and
// returns the stored snapshot metadata. Scores may be nil when only
// records are being kept.
func (s *Store) SaveSnapshot(seed int64, records []carrier.Record, scores map[string]score.RiskScore) (*Snapshot, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotInitialized
	}
	if len(records) == 0 {
		return nil, errors.New("no records to save")
	}

	snap := &Snapshot{
		ID:          uuid.New().String(),
		Seed:        seed,
		RecordCount: len(records),
		CreatedAt:   time.Now().UTC().Format(timeFormat),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting snapshot tx: %w", err)
	}

	if _, err := tx.Exec(s.rebind(insertSnapshotSQL), snap.ID, snap.Seed, snap.RecordCount, snap.CreatedAt); err != nil {
		rollbackTransaction(tx)
		return nil, fmt.Errorf("error inserting snapshot: %w", err)
	}

	carrierStmt, err := tx.Prepare(s.rebind(insertCarrierSQL))
	if err != nil {
		rollbackTransaction(tx)
		return nil, fmt.Errorf("error preparing carrier insert: %w", err)
	}

	scoreStmt, err := tx.Prepare(s.rebind(insertScoreSQL))
	if err != nil {
		rollbackTransaction(tx)
		return nil, fmt.Errorf("error preparing score insert: %w", err)
	}

	for _, r := range records {
		if _, err := carrierStmt.Exec(snap.ID, r.CarrierID, r.Name, r.State, r.City, r.FleetSize,
			r.SafetyScore, r.OutOfServiceRate, r.CrashRate, r.WagePercentile,
			r.CargoType, r.ViolationCount); err != nil {
			rollbackTransaction(tx)
			return nil, fmt.Errorf("error inserting carrier %s: %w", r.CarrierID, err)
		}

		sc, ok := scores[r.CarrierID]
		if !ok {
			continue
		}
		if _, err := scoreStmt.Exec(snap.ID, sc.CarrierID, sc.ChurnRisk, sc.EstimatedAnnualSavings,
			sc.Components[score.FactorSafety], sc.Components[score.FactorWage],
			sc.Components[score.FactorFleet]); err != nil {
			rollbackTransaction(tx)
			return nil, fmt.Errorf("error inserting score for %s: %w", sc.CarrierID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing snapshot tx: %w", err)
	}

	slog.Debug("snapshot saved", "id", snap.ID, "records", snap.RecordCount)

	return snap, nil
}

// GetSnapshot loads a stored cohort with its records and scores.
func (s *Store) GetSnapshot(id string) (*SnapshotData, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotInitialized
	}
	if id == "" {
		return nil, errors.New("snapshot id required")
	}

	d := &SnapshotData{}

	err := s.db.QueryRow(s.rebind(selectSnapshotSQL), id).
		Scan(&d.Snapshot.ID, &d.Snapshot.Seed, &d.Snapshot.RecordCount, &d.Snapshot.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot %s: %w", id, err)
	}

	records, err := s.getSnapshotRecords(id)
	if err != nil {
		return nil, err
	}
	d.Records = records

	scores, err := s.getSnapshotScores(id)
	if err != nil {
		return nil, err
	}
	d.Scores = scores

	return d, nil
}

// ListSnapshots returns stored snapshot metadata, newest first.
func (s *Store) ListSnapshots() ([]Snapshot, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.Query(selectSnapshotsSQL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	list := make([]Snapshot, 0)
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Seed, &snap.RecordCount, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		list = append(list, snap)
	}

	return list, nil
}

// DeleteSnapshot removes a snapshot and its records and scores.
func (s *Store) DeleteSnapshot(id string) error {
	if s == nil || s.db == nil {
		return ErrNotInitialized
	}
	if id == "" {
		return errors.New("snapshot id required")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting delete tx: %w", err)
	}

	if _, err := tx.Exec(s.rebind(deleteScoresSQL), id); err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("error deleting snapshot scores: %w", err)
	}

	if _, err := tx.Exec(s.rebind(deleteCarriersSQL), id); err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("error deleting snapshot carriers: %w", err)
	}

	res, err := tx.Exec(s.rebind(deleteSnapshotSQL), id)
	if err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("error deleting snapshot: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("error checking delete result: %w", err)
	}
	if affected == 0 {
		rollbackTransaction(tx)
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing delete tx: %w", err)
	}

	slog.Debug("snapshot deleted", "id", id)

	return nil
}

func (s *Store) getSnapshotRecords(id string) ([]carrier.Record, error) {
	rows, err := s.db.Query(s.rebind(selectCarriersSQL), id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query snapshot carriers: %w", err)
	}
	defer rows.Close()

	list := make([]carrier.Record, 0)
	for rows.Next() {
		var r carrier.Record
		if err := rows.Scan(&r.CarrierID, &r.Name, &r.State, &r.City, &r.FleetSize,
			&r.SafetyScore, &r.OutOfServiceRate, &r.CrashRate, &r.WagePercentile,
			&r.CargoType, &r.ViolationCount); err != nil {
			return nil, fmt.Errorf("failed to scan carrier row: %w", err)
		}
		list = append(list, r)
	}

	return list, nil
}

func (s *Store) getSnapshotScores(id string) (map[string]score.RiskScore, error) {
	rows, err := s.db.Query(s.rebind(selectScoresSQL), id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query snapshot scores: %w", err)
	}
	defer rows.Close()

	out := make(map[string]score.RiskScore)
	for rows.Next() {
		var sc score.RiskScore
		var safety, wage, fleet float64
		if err := rows.Scan(&sc.CarrierID, &sc.ChurnRisk, &sc.EstimatedAnnualSavings,
			&safety, &wage, &fleet); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		sc.Components = map[string]float64{
			score.FactorSafety: safety,
			score.FactorWage:   wage,
			score.FactorFleet:  fleet,
		}
		out[sc.CarrierID] = sc
	}

	return out, nil
}
