package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mr1hm/go-disaster-response/internal/models"
)

func (s *SQLiteDB) GetResponder(ctx context.Context, id string) (*models.Responder, error) {
	var r models.Responder
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, type, status FROM responders WHERE id = ?`, id).
		Scan(&r.ID, &r.Name, &r.Email, &r.Type, &r.Status)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning responder: %w", err)
	}
	return &r, nil
}

func (s *SQLiteDB) AddResponder(ctx context.Context, r *models.Responder) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO responders (id, name, email, type, status) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Email, r.Type, r.Status,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("error inserting responder: %w", err)
	}
	return nil
}
