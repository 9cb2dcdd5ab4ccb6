package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mr1hm/go-disaster-response/internal/models"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate")
)

type DisasterFilter struct {
	Status *models.DisasterStatus
	Type   *models.DisasterType
	Search string // matches title, location or description
	Limit  int
}

type DisasterRepository interface {
	// Add inserts a disaster without creating any assignment (feed path).
	Add(ctx context.Context, d *models.Disaster) error
	// AddWithAssignment inserts the disaster and the creator's assignment in
	// one transaction (manual creation path).
	AddWithAssignment(ctx context.Context, d *models.Disaster, responderID string) (*models.Assignment, error)
	GetByID(ctx context.Context, id string) (*models.Disaster, error)
	List(ctx context.Context, f DisasterFilter) ([]models.Disaster, error)
	ExistsExternal(ctx context.Context, externalID string) (bool, error)

	// UpdateFields overwrites the mutable fields of d. The write is
	// conditional on status still being ongoing; it returns false when the
	// guard did not hold (terminal or missing row).
	UpdateFields(ctx context.Context, d *models.Disaster) (bool, error)
	// Cancel and Complete are atomic compare-and-set transitions out of
	// ongoing. They return false when zero rows matched.
	Cancel(ctx context.Context, id, reason, byAssignment string, at time.Time) (bool, error)
	Complete(ctx context.Context, id, byAssignment string, at time.Time) (bool, error)
}

type AssignmentRepository interface {
	// Assign inserts an assignment, failing with ErrDuplicate when an active
	// one already exists for the (disaster, responder) pair.
	Assign(ctx context.Context, disasterID, responderID string) (*models.Assignment, error)
	// Unassign soft-deletes an active assignment by id.
	Unassign(ctx context.Context, id string, at time.Time) error
	GetAssignment(ctx context.Context, id string) (*models.Assignment, error)
	IsAssigned(ctx context.Context, disasterID, responderID string) (bool, error)
	// AssignmentFor returns the active assignment for the pair, or ErrNotFound.
	AssignmentFor(ctx context.Context, disasterID, responderID string) (*models.Assignment, error)
	ListAssignments(ctx context.Context, disasterID string) ([]models.Assignment, error)
}

type ReportRepository interface {
	AddReport(ctx context.Context, r *models.Report) error
	GetReport(ctx context.Context, disasterID, id string) (*models.Report, error)
	ListReports(ctx context.Context, disasterID string) ([]models.Report, error)
	UpdateReport(ctx context.Context, r *models.Report) error
	DeleteReport(ctx context.Context, disasterID, id string) error
}

type VictimRepository interface {
	AddVictim(ctx context.Context, v *models.Victim) error
	GetVictim(ctx context.Context, disasterID, id string) (*models.Victim, error)
	ListVictims(ctx context.Context, disasterID string) ([]models.Victim, error)
	UpdateVictim(ctx context.Context, v *models.Victim) error
	DeleteVictim(ctx context.Context, disasterID, id string) error
}

type AidRepository interface {
	AddAid(ctx context.Context, a *models.Aid) error
	GetAid(ctx context.Context, disasterID, id string) (*models.Aid, error)
	ListAids(ctx context.Context, disasterID string) ([]models.Aid, error)
	UpdateAid(ctx context.Context, a *models.Aid) error
	DeleteAid(ctx context.Context, disasterID, id string) error
}

type ResponderRepository interface {
	GetResponder(ctx context.Context, id string) (*models.Responder, error)
	AddResponder(ctx context.Context, r *models.Responder) error
}
