// Package service owns the disaster lifecycle: the status state machine, the
// assignment registry, the assigned-to-disaster access gate and the
// field-record submission pipeline. Handlers stay thin; all rules live here.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mr1hm/go-disaster-response/internal/models"
	"github.com/mr1hm/go-disaster-response/internal/notify"
	"github.com/mr1hm/go-disaster-response/internal/repository"
)

const (
	maxTitleLen  = 45
	maxReasonLen = 500
)

// Store is the persistence surface the service needs. *repository.SQLiteDB
// satisfies it.
type Store interface {
	repository.DisasterRepository
	repository.AssignmentRepository
	repository.ReportRepository
	repository.VictimRepository
	repository.AidRepository
}

type Service struct {
	store    Store
	notifier notify.Notifier
	now      func() time.Time
}

func New(store Store, notifier notify.Notifier) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) emit(t notify.EventType, disasterID, title, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(notify.Event{
		Type:       t,
		DisasterID: disasterID,
		Title:      title,
		Message:    message,
		CreatedAt:  s.now(),
	})
}

// getDisaster maps the repository's ErrNotFound into the service taxonomy.
func (s *Service) getDisaster(ctx context.Context, id string) (*models.Disaster, error) {
	d, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Disaster not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("error loading disaster: %w", err)
	}
	return d, nil
}

// guardAccess is the access gate: the disaster must exist and the caller must
// hold an active assignment on it. Used by reads on disaster-scoped
// sub-resources.
func (s *Service) guardAccess(ctx context.Context, callerID, disasterID string) (*models.Disaster, error) {
	d, err := s.getDisaster(ctx, disasterID)
	if err != nil {
		return nil, err
	}
	assigned, err := s.store.IsAssigned(ctx, disasterID, callerID)
	if err != nil {
		return nil, fmt.Errorf("error checking assignment: %w", err)
	}
	if !assigned {
		return nil, accessDenied("Access denied. You are not assigned to this disaster.")
	}
	return d, nil
}

// guardSubmission is the mutating-path gate: on top of guardAccess it
// resolves the caller's assignment (the provenance stamp) and rejects
// submissions against a disaster that is no longer ongoing.
func (s *Service) guardSubmission(ctx context.Context, callerID, disasterID string) (*models.Assignment, error) {
	d, err := s.getDisaster(ctx, disasterID)
	if err != nil {
		return nil, err
	}
	asg, err := s.store.AssignmentFor(ctx, disasterID, callerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, accessDenied("Access denied. You are not assigned to this disaster.")
	}
	if err != nil {
		return nil, fmt.Errorf("error resolving assignment: %w", err)
	}
	if d.Status != models.StatusOngoing {
		return nil, invalidTransition("Disaster is already " + string(d.Status) + ".")
	}
	return asg, nil
}

// complete performs the ONGOING -> COMPLETED transition as an atomic
// conditional write. Repeating it on an already-completed disaster is a
// no-op; on a cancelled one it fails.
func (s *Service) complete(ctx context.Context, disasterID, byAssignment string) error {
	ok, err := s.store.Complete(ctx, disasterID, byAssignment, s.now())
	if err != nil {
		return fmt.Errorf("error completing disaster: %w", err)
	}
	if ok {
		s.emit(notify.EventStatusChanged, disasterID, "Disaster completed",
			"The disaster response effort has been completed.")
		return nil
	}

	d, err := s.getDisaster(ctx, disasterID)
	if err != nil {
		return err
	}
	if d.Status == models.StatusCompleted {
		return nil
	}
	return invalidTransition("Disaster is already " + string(d.Status) + ".")
}
