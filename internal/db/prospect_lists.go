package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/campaign-composer/internal/prospects"
)

// GetList loads a prospect list and its members in insertion order. Implements
// prospects.Provider.
func (db *DB) GetList(ctx context.Context, id string) (*prospects.List, error) {
	listID, err := uuid.Parse(id)
	if err != nil {
		return nil, &prospects.ListNotFoundError{ListID: id}
	}

	var name string
	err = db.pool.QueryRow(ctx,
		`SELECT name FROM prospect_lists WHERE id = $1`, listID,
	).Scan(&name)
	if err != nil {
		if isNoRows(err) {
			return nil, &prospects.ListNotFoundError{ListID: id}
		}
		return nil, fmt.Errorf("failed to get prospect list: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, email, first_name, last_name, company, title, website, industry
		 FROM prospects WHERE list_id = $1 ORDER BY ordinal, id`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get prospects: %w", err)
	}
	defer rows.Close()

	list := &prospects.List{ID: id, Name: name}
	for rows.Next() {
		var pid uuid.UUID
		var p prospects.Prospect
		if err := rows.Scan(&pid, &p.Email, &p.FirstName, &p.LastName, &p.Company, &p.Title, &p.Website, &p.Industry); err != nil {
			return nil, fmt.Errorf("failed to scan prospect: %w", err)
		}
		p.ID = pid.String()
		list.Prospects = append(list.Prospects, p)
	}
	return list, rows.Err()
}

// CreateList stores a prospect list and its members, returning the new list id.
func (db *DB) CreateList(ctx context.Context, name string, members []prospects.Prospect) (uuid.UUID, error) {
	var listID uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO prospect_lists (name) VALUES ($1) RETURNING id`, name,
	).Scan(&listID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create prospect list: %w", err)
	}

	for i, p := range members {
		_, err := db.pool.Exec(ctx,
			`INSERT INTO prospects (list_id, email, first_name, last_name, company, title, website, industry, ordinal)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			listID, p.Email, p.FirstName, p.LastName, p.Company, p.Title, p.Website, p.Industry, i,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert prospect: %w", err)
		}
	}
	return listID, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
