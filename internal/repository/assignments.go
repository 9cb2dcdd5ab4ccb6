package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mr1hm/go-disaster-response/internal/models"
)

// Assign inserts a new assignment. The partial unique index on active rows
// makes this an atomic insert-if-absent: under concurrent attempts exactly
// one insert wins and the rest fail the constraint.
func (s *SQLiteDB) Assign(ctx context.Context, disasterID, responderID string) (*models.Assignment, error) {
	a := &models.Assignment{
		ID:          uuid.NewString(),
		DisasterID:  disasterID,
		ResponderID: responderID,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assignments (id, disaster_id, responder_id, created_at) VALUES (?, ?, ?, ?)`,
		a.ID, a.DisasterID, a.ResponderID, a.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("error inserting assignment: %w", err)
	}
	return a, nil
}

func (s *SQLiteDB) Unassign(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE assignments SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("error removing assignment: %w", err)
	}
	ok, err := applied(res)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteDB) GetAssignment(ctx context.Context, id string) (*models.Assignment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, disaster_id, responder_id, created_at, deleted_at FROM assignments WHERE id = ?`, id)
	return scanAssignment(row)
}

func (s *SQLiteDB) IsAssigned(ctx context.Context, disasterID, responderID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM assignments WHERE disaster_id = ? AND responder_id = ? AND deleted_at IS NULL`,
		disasterID, responderID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("error checking assignment: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteDB) AssignmentFor(ctx context.Context, disasterID, responderID string) (*models.Assignment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, disaster_id, responder_id, created_at, deleted_at
		FROM assignments
		WHERE disaster_id = ? AND responder_id = ? AND deleted_at IS NULL`,
		disasterID, responderID)
	return scanAssignment(row)
}

func (s *SQLiteDB) ListAssignments(ctx context.Context, disasterID string) ([]models.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, disaster_id, responder_id, created_at, deleted_at
		FROM assignments
		WHERE disaster_id = ? AND deleted_at IS NULL
		ORDER BY created_at DESC`,
		disasterID)
	if err != nil {
		return nil, fmt.Errorf("error listing assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

func scanAssignment(row rowScanner) (*models.Assignment, error) {
	var (
		a         models.Assignment
		deletedAt sql.NullTime
	)
	err := row.Scan(&a.ID, &a.DisasterID, &a.ResponderID, &a.CreatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning assignment: %w", err)
	}
	if deletedAt.Valid {
		a.DeletedAt = &deletedAt.Time
	}
	return &a, nil
}
