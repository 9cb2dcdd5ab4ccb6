package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mr1hm/go-disaster-response/internal/models"
)

// Reports

func (s *SQLiteDB) AddReport(ctx context.Context, r *models.Report) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (id, disaster_id, reported_by, title, description, is_final_stage, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.DisasterID, r.ReportedBy, r.Title, nullStr(r.Description), r.IsFinalStage, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting report: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetReport(ctx context.Context, disasterID, id string) (*models.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, disaster_id, reported_by, title, description, is_final_stage, created_at, updated_at
		FROM reports WHERE disaster_id = ? AND id = ?`,
		disasterID, id)
	return scanReport(row)
}

func (s *SQLiteDB) ListReports(ctx context.Context, disasterID string) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, disaster_id, reported_by, title, description, is_final_stage, created_at, updated_at
		FROM reports WHERE disaster_id = ? ORDER BY created_at DESC`,
		disasterID)
	if err != nil {
		return nil, fmt.Errorf("error listing reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

func (s *SQLiteDB) UpdateReport(ctx context.Context, r *models.Report) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reports SET title = ?, description = ?, is_final_stage = ?, updated_at = ?
		WHERE disaster_id = ? AND id = ?`,
		r.Title, nullStr(r.Description), r.IsFinalStage, r.UpdatedAt, r.DisasterID, r.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating report: %w", err)
	}
	return mustApply(res)
}

func (s *SQLiteDB) DeleteReport(ctx context.Context, disasterID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM reports WHERE disaster_id = ? AND id = ?`, disasterID, id)
	if err != nil {
		return fmt.Errorf("error deleting report: %w", err)
	}
	return mustApply(res)
}

func scanReport(row rowScanner) (*models.Report, error) {
	var (
		r           models.Report
		description sql.NullString
	)
	err := row.Scan(&r.ID, &r.DisasterID, &r.ReportedBy, &r.Title, &description, &r.IsFinalStage, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning report: %w", err)
	}
	r.Description = description.String
	return &r, nil
}

// Victims

func (s *SQLiteDB) AddVictim(ctx context.Context, v *models.Victim) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO victims (id, disaster_id, reported_by, nik, name, date_of_birth, gender,
			contact_info, description, is_evacuated, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.DisasterID, v.ReportedBy, v.NIK, v.Name, v.DateOfBirth, v.Gender,
		nullStr(v.ContactInfo), nullStr(v.Description), v.IsEvacuated, v.Status, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting victim: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetVictim(ctx context.Context, disasterID, id string) (*models.Victim, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, disaster_id, reported_by, nik, name, date_of_birth, gender,
			contact_info, description, is_evacuated, status, created_at, updated_at
		FROM victims WHERE disaster_id = ? AND id = ?`,
		disasterID, id)
	return scanVictim(row)
}

func (s *SQLiteDB) ListVictims(ctx context.Context, disasterID string) ([]models.Victim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, disaster_id, reported_by, nik, name, date_of_birth, gender,
			contact_info, description, is_evacuated, status, created_at, updated_at
		FROM victims WHERE disaster_id = ? ORDER BY created_at DESC`,
		disasterID)
	if err != nil {
		return nil, fmt.Errorf("error listing victims: %w", err)
	}
	defer rows.Close()

	var victims []models.Victim
	for rows.Next() {
		v, err := scanVictim(rows)
		if err != nil {
			return nil, err
		}
		victims = append(victims, *v)
	}
	return victims, rows.Err()
}

func (s *SQLiteDB) UpdateVictim(ctx context.Context, v *models.Victim) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE victims SET nik = ?, name = ?, date_of_birth = ?, gender = ?, contact_info = ?,
			description = ?, is_evacuated = ?, status = ?, updated_at = ?
		WHERE disaster_id = ? AND id = ?`,
		v.NIK, v.Name, v.DateOfBirth, v.Gender, nullStr(v.ContactInfo),
		nullStr(v.Description), v.IsEvacuated, v.Status, v.UpdatedAt, v.DisasterID, v.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating victim: %w", err)
	}
	return mustApply(res)
}

func (s *SQLiteDB) DeleteVictim(ctx context.Context, disasterID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM victims WHERE disaster_id = ? AND id = ?`, disasterID, id)
	if err != nil {
		return fmt.Errorf("error deleting victim: %w", err)
	}
	return mustApply(res)
}

func scanVictim(row rowScanner) (*models.Victim, error) {
	var (
		v                        models.Victim
		contactInfo, description sql.NullString
	)
	err := row.Scan(&v.ID, &v.DisasterID, &v.ReportedBy, &v.NIK, &v.Name, &v.DateOfBirth, &v.Gender,
		&contactInfo, &description, &v.IsEvacuated, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning victim: %w", err)
	}
	v.ContactInfo = contactInfo.String
	v.Description = description.String
	return &v, nil
}

// Aids

func (s *SQLiteDB) AddAid(ctx context.Context, a *models.Aid) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO aids (id, disaster_id, reported_by, title, description, category, quantity, unit, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.DisasterID, a.ReportedBy, a.Title, nullStr(a.Description), a.Category, a.Quantity, a.Unit, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting aid: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetAid(ctx context.Context, disasterID, id string) (*models.Aid, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, disaster_id, reported_by, title, description, category, quantity, unit, created_at, updated_at
		FROM aids WHERE disaster_id = ? AND id = ?`,
		disasterID, id)
	return scanAid(row)
}

func (s *SQLiteDB) ListAids(ctx context.Context, disasterID string) ([]models.Aid, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, disaster_id, reported_by, title, description, category, quantity, unit, created_at, updated_at
		FROM aids WHERE disaster_id = ? ORDER BY created_at DESC`,
		disasterID)
	if err != nil {
		return nil, fmt.Errorf("error listing aids: %w", err)
	}
	defer rows.Close()

	var aids []models.Aid
	for rows.Next() {
		a, err := scanAid(rows)
		if err != nil {
			return nil, err
		}
		aids = append(aids, *a)
	}
	return aids, rows.Err()
}

func (s *SQLiteDB) UpdateAid(ctx context.Context, a *models.Aid) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE aids SET title = ?, description = ?, category = ?, quantity = ?, unit = ?, updated_at = ?
		WHERE disaster_id = ? AND id = ?`,
		a.Title, nullStr(a.Description), a.Category, a.Quantity, a.Unit, a.UpdatedAt, a.DisasterID, a.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating aid: %w", err)
	}
	return mustApply(res)
}

func (s *SQLiteDB) DeleteAid(ctx context.Context, disasterID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM aids WHERE disaster_id = ? AND id = ?`, disasterID, id)
	if err != nil {
		return fmt.Errorf("error deleting aid: %w", err)
	}
	return mustApply(res)
}

func scanAid(row rowScanner) (*models.Aid, error) {
	var (
		a           models.Aid
		description sql.NullString
	)
	err := row.Scan(&a.ID, &a.DisasterID, &a.ReportedBy, &a.Title, &description, &a.Category, &a.Quantity, &a.Unit, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning aid: %w", err)
	}
	a.Description = description.String
	return &a, nil
}

func mustApply(res sql.Result) error {
	ok, err := applied(res)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
