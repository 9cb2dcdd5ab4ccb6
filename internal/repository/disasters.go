package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mr1hm/go-disaster-response/internal/models"
)

const disasterColumns = `id, source, type, status, title, description, occurred_at, location,
	lat, long, magnitude, depth, external_id, reported_by,
	cancelled_reason, cancelled_at, cancelled_by, completed_at, completed_by,
	created_at, updated_at`

func (s *SQLiteDB) Add(ctx context.Context, d *models.Disaster) error {
	return insertDisaster(ctx, s.db, d)
}

func (s *SQLiteDB) AddWithAssignment(ctx context.Context, d *models.Disaster, responderID string) (*models.Assignment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertDisaster(ctx, tx, d); err != nil {
		return nil, err
	}

	a := &models.Assignment{
		ID:          uuid.NewString(),
		DisasterID:  d.ID,
		ResponderID: responderID,
		CreatedAt:   d.CreatedAt,
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO assignments (id, disaster_id, responder_id, created_at) VALUES (?, ?, ?, ?)`,
		a.ID, a.DisasterID, a.ResponderID, a.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("error inserting assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing transaction: %w", err)
	}
	return a, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertDisaster(ctx context.Context, db execer, d *models.Disaster) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO disasters (id, source, type, status, title, description, occurred_at, location,
			lat, long, magnitude, depth, external_id, reported_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Source, d.Type, d.Status, d.Title, nullStr(d.Description), d.OccurredAt,
		nullStr(d.Location), nullFloat(d.Lat), nullFloat(d.Long), nullFloat(d.Magnitude),
		nullFloat(d.Depth), nullStr(d.ExternalID), nullStr(d.ReportedBy), d.CreatedAt, d.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("error inserting disaster: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetByID(ctx context.Context, id string) (*models.Disaster, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+disasterColumns+` FROM disasters WHERE id = ?`, id)
	return scanDisaster(row)
}

func (s *SQLiteDB) ExistsExternal(ctx context.Context, externalID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM disasters WHERE external_id = ?`, externalID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("error checking external id: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteDB) List(ctx context.Context, f DisasterFilter) ([]models.Disaster, error) {
	query := `SELECT ` + disasterColumns + ` FROM disasters WHERE 1=1`
	var args []any

	if f.Status != nil {
		query += ` AND status = ?`
		args = append(args, *f.Status)
	}
	if f.Type != nil {
		query += ` AND type = ?`
		args = append(args, *f.Type)
	}
	if f.Search != "" {
		query += ` AND (title LIKE ? OR location LIKE ? OR description LIKE ?)`
		like := "%" + f.Search + "%"
		args = append(args, like, like, like)
	}
	query += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing disasters: %w", err)
	}
	defer rows.Close()

	var disasters []models.Disaster
	for rows.Next() {
		d, err := scanDisaster(rows)
		if err != nil {
			return nil, err
		}
		disasters = append(disasters, *d)
	}
	return disasters, rows.Err()
}

// UpdateFields overwrites the mutable fields while the row is still ongoing.
// The status guard lives in the WHERE clause so two racing writers cannot
// both get past a stale read.
func (s *SQLiteDB) UpdateFields(ctx context.Context, d *models.Disaster) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE disasters
		SET source = ?, type = ?, title = ?, description = ?, occurred_at = ?, location = ?,
			lat = ?, long = ?, magnitude = ?, depth = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		d.Source, d.Type, d.Title, nullStr(d.Description), d.OccurredAt, nullStr(d.Location),
		nullFloat(d.Lat), nullFloat(d.Long), nullFloat(d.Magnitude), nullFloat(d.Depth),
		d.UpdatedAt, d.ID, models.StatusOngoing,
	)
	if err != nil {
		return false, fmt.Errorf("error updating disaster: %w", err)
	}
	return applied(res)
}

func (s *SQLiteDB) Cancel(ctx context.Context, id, reason, byAssignment string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE disasters
		SET status = ?, cancelled_reason = ?, cancelled_at = ?, cancelled_by = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		models.StatusCancelled, reason, at, byAssignment, at, id, models.StatusOngoing,
	)
	if err != nil {
		return false, fmt.Errorf("error cancelling disaster: %w", err)
	}
	return applied(res)
}

func (s *SQLiteDB) Complete(ctx context.Context, id, byAssignment string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE disasters
		SET status = ?, completed_at = ?, completed_by = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		models.StatusCompleted, at, byAssignment, at, id, models.StatusOngoing,
	)
	if err != nil {
		return false, fmt.Errorf("error completing disaster: %w", err)
	}
	return applied(res)
}

func applied(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDisaster(row rowScanner) (*models.Disaster, error) {
	var (
		d                           models.Disaster
		description, location       sql.NullString
		lat, long, magnitude, depth sql.NullFloat64
		externalID, reportedBy      sql.NullString
		cancelledReason             sql.NullString
		cancelledBy, completedBy    sql.NullString
		cancelledAt, completedAt    sql.NullTime
	)

	err := row.Scan(
		&d.ID, &d.Source, &d.Type, &d.Status, &d.Title, &description, &d.OccurredAt, &location,
		&lat, &long, &magnitude, &depth, &externalID, &reportedBy,
		&cancelledReason, &cancelledAt, &cancelledBy, &completedAt, &completedBy,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning disaster: %w", err)
	}

	d.Description = description.String
	d.Location = location.String
	d.Lat = floatPtr(lat)
	d.Long = floatPtr(long)
	d.Magnitude = floatPtr(magnitude)
	d.Depth = floatPtr(depth)
	d.ExternalID = externalID.String
	d.ReportedBy = reportedBy.String
	d.CancelledReason = cancelledReason.String
	d.CancelledBy = cancelledBy.String
	d.CompletedBy = completedBy.String
	if cancelledAt.Valid {
		d.CancelledAt = &cancelledAt.Time
	}
	if completedAt.Valid {
		d.CompletedAt = &completedAt.Time
	}
	return &d, nil
}
