package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	RunStatusBuilding   = "building"
	RunStatusDispatched = "dispatched"
	RunStatusAbandoned  = "abandoned"
)

// Run represents one campaign run.
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CreateRun creates a new campaign run record and returns its ID.
func (db *DB) CreateRun(ctx context.Context, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO campaign_runs (name, status) VALUES ($1, $2) RETURNING id`,
		name, RunStatusBuilding,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a campaign run with a terminal status.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE campaign_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun loads one campaign run.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, status, created_at, completed_at FROM campaign_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Name, &run.Status, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// SaveArtifact stores a stage artifact as JSON, replacing any previous snapshot for
// the same run and stage.
func (db *DB) SaveArtifact(ctx context.Context, runID uuid.UUID, stage string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO run_artifacts (run_id, stage, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, stage) DO UPDATE SET content = $3, updated_at = NOW()`,
		runID, stage, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact: %w", err)
	}
	return nil
}

// GetArtifact loads a stage artifact's raw JSON, or nil when none is stored.
func (db *DB) GetArtifact(ctx context.Context, runID uuid.UUID, stage string) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM run_artifacts WHERE run_id = $1 AND stage = $2`,
		runID, stage,
	).Scan(&content)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	return content, nil
}
