package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mr1hm/go-disaster-response/internal/models"
	"github.com/mr1hm/go-disaster-response/internal/repository"
)

// AssignSelf volunteers the caller for a disaster. At most one active
// assignment per (disaster, responder) pair; the storage constraint decides
// the winner under concurrent attempts.
func (s *Service) AssignSelf(ctx context.Context, callerID, disasterID string) (*models.Assignment, error) {
	if _, err := s.getDisaster(ctx, disasterID); err != nil {
		return nil, err
	}

	asg, err := s.store.Assign(ctx, disasterID, callerID)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, conflict("You are already volunteering for this disaster.")
	}
	if err != nil {
		return nil, fmt.Errorf("error assigning volunteer: %w", err)
	}
	return asg, nil
}

// UnassignSelf removes the caller's own assignment. Removal is a soft
// delete: records already stamped with the assignment id keep resolving.
func (s *Service) UnassignSelf(ctx context.Context, callerID, disasterID, assignmentID string) error {
	if _, err := s.getDisaster(ctx, disasterID); err != nil {
		return err
	}

	asg, err := s.store.GetAssignment(ctx, assignmentID)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("You are not volunteering for this disaster.")
	}
	if err != nil {
		return fmt.Errorf("error loading assignment: %w", err)
	}
	if asg.DisasterID != disasterID || !asg.Active() {
		return notFound("You are not volunteering for this disaster.")
	}
	if asg.ResponderID != callerID {
		return accessDenied("You can only remove yourself from volunteering.")
	}

	if err := s.store.Unassign(ctx, assignmentID, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("You are not volunteering for this disaster.")
		}
		return fmt.Errorf("error removing assignment: %w", err)
	}
	return nil
}

// ListVolunteers returns the active assignments on a disaster. Gated: only
// assigned responders may see the roster.
func (s *Service) ListVolunteers(ctx context.Context, callerID, disasterID string) ([]models.Assignment, error) {
	if _, err := s.guardAccess(ctx, callerID, disasterID); err != nil {
		return nil, err
	}
	assignments, err := s.store.ListAssignments(ctx, disasterID)
	if err != nil {
		return nil, fmt.Errorf("error listing volunteers: %w", err)
	}
	return assignments, nil
}
