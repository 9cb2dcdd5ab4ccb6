package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mr1hm/go-disaster-response/internal/models"
	"github.com/mr1hm/go-disaster-response/internal/notify"
	"github.com/mr1hm/go-disaster-response/internal/repository"
)

type CreateDisasterInput struct {
	Title       string
	Description string
	Source      models.DisasterSource
	Type        models.DisasterType
	OccurredAt  time.Time
	Location    string
	Lat         *float64
	Long        *float64
	Magnitude   *float64
	Depth       *float64
}

// UpdateDisasterInput carries only the fields present in the request. There
// is deliberately no status field: Cancel and Complete are the only
// sanctioned terminal transitions.
type UpdateDisasterInput struct {
	Title       *string
	Description *string
	Source      *models.DisasterSource
	Type        *models.DisasterType
	OccurredAt  *time.Time
	Location    *string
	Lat         *float64
	Long        *float64
	Magnitude   *float64
	Depth       *float64
}

func validateDisasterFields(fe fieldErrors, title string, source models.DisasterSource, typ models.DisasterType,
	location string, lat, long, magnitude, depth *float64) {
	if strings.TrimSpace(title) == "" {
		fe.add("title", "title is required")
	} else if len(title) > maxTitleLen {
		fe.add("title", fmt.Sprintf("title must be at most %d characters", maxTitleLen))
	}
	if !source.Valid() {
		fe.add("source", "source must be one of: official_feed, manual")
	}
	if !typ.Valid() {
		fe.add("type", "type is not a recognized disaster type")
	}
	if len(location) > maxTitleLen {
		fe.add("location", fmt.Sprintf("location must be at most %d characters", maxTitleLen))
	}
	if lat != nil && (*lat < -90 || *lat > 90) {
		fe.add("lat", "lat must be between -90 and 90")
	}
	if long != nil && (*long < -180 || *long > 180) {
		fe.add("long", "long must be between -180 and 180")
	}
	if magnitude != nil && *magnitude < 0 {
		fe.add("magnitude", "magnitude must be at least 0")
	}
	if depth != nil && *depth < 0 {
		fe.add("depth", "depth must be at least 0")
	}
}

// CreateDisaster registers a new ongoing disaster and auto-assigns the
// creator, in a single transaction. Returns the creator's assignment.
func (s *Service) CreateDisaster(ctx context.Context, callerID string, in CreateDisasterInput) (*models.Disaster, *models.Assignment, error) {
	fe := fieldErrors{}
	validateDisasterFields(fe, in.Title, in.Source, in.Type, in.Location, in.Lat, in.Long, in.Magnitude, in.Depth)
	if in.OccurredAt.IsZero() {
		fe.add("date", "date and time of occurrence are required")
	}
	if err := fe.err(); err != nil {
		return nil, nil, err
	}

	now := s.now()
	d := &models.Disaster{
		ID:          uuid.NewString(),
		Source:      in.Source,
		Type:        in.Type,
		Status:      models.StatusOngoing,
		Title:       in.Title,
		Description: in.Description,
		OccurredAt:  in.OccurredAt,
		Location:    in.Location,
		Lat:         in.Lat,
		Long:        in.Long,
		Magnitude:   in.Magnitude,
		Depth:       in.Depth,
		ReportedBy:  callerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	asg, err := s.store.AddWithAssignment(ctx, d, callerID)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating disaster: %w", err)
	}

	s.emit(notify.EventNewDisaster, d.ID, "New disaster reported", d.Title)
	return d, asg, nil
}

func (s *Service) GetDisaster(ctx context.Context, id string) (*models.Disaster, error) {
	return s.getDisaster(ctx, id)
}

func (s *Service) ListDisasters(ctx context.Context, f repository.DisasterFilter) ([]models.Disaster, error) {
	return s.store.List(ctx, f)
}

// UpdateDisaster overwrites mutable fields while the disaster is ongoing.
// The caller must be assigned. Status cannot be changed through this path.
func (s *Service) UpdateDisaster(ctx context.Context, callerID, id string, in UpdateDisasterInput) (*models.Disaster, error) {
	d, err := s.getDisaster(ctx, id)
	if err != nil {
		return nil, err
	}

	assigned, err := s.store.IsAssigned(ctx, id, callerID)
	if err != nil {
		return nil, fmt.Errorf("error checking assignment: %w", err)
	}
	if !assigned {
		return nil, accessDenied("Access denied. You are not assigned to this disaster.")
	}

	if d.Status.Terminal() {
		return nil, invalidTransition("Cannot modify disaster. Disaster is already " + string(d.Status) + ".")
	}

	updated := *d
	if in.Title != nil {
		updated.Title = *in.Title
	}
	if in.Description != nil {
		updated.Description = *in.Description
	}
	if in.Source != nil {
		updated.Source = *in.Source
	}
	if in.Type != nil {
		updated.Type = *in.Type
	}
	if in.OccurredAt != nil {
		updated.OccurredAt = *in.OccurredAt
	}
	if in.Location != nil {
		updated.Location = *in.Location
	}
	if in.Lat != nil {
		updated.Lat = in.Lat
	}
	if in.Long != nil {
		updated.Long = in.Long
	}
	if in.Magnitude != nil {
		updated.Magnitude = in.Magnitude
	}
	if in.Depth != nil {
		updated.Depth = in.Depth
	}

	fe := fieldErrors{}
	validateDisasterFields(fe, updated.Title, updated.Source, updated.Type, updated.Location,
		updated.Lat, updated.Long, updated.Magnitude, updated.Depth)
	if err := fe.err(); err != nil {
		return nil, err
	}

	updated.UpdatedAt = s.now()
	ok, err := s.store.UpdateFields(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("error updating disaster: %w", err)
	}
	if !ok {
		// Lost the race against a terminal transition.
		current, err := s.getDisaster(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, invalidTransition("Cannot modify disaster. Disaster is already " + string(current.Status) + ".")
	}
	return &updated, nil
}

// CancelDisaster moves an ongoing disaster to cancelled, stamping the
// caller's assignment as provenance.
func (s *Service) CancelDisaster(ctx context.Context, callerID, id, reason string) (*models.Disaster, error) {
	d, err := s.getDisaster(ctx, id)
	if err != nil {
		return nil, err
	}

	// The access gate applies regardless of status, so it runs first.
	asg, err := s.store.AssignmentFor(ctx, id, callerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, accessDenied("You are not assigned to this disaster.")
	}
	if err != nil {
		return nil, fmt.Errorf("error resolving assignment: %w", err)
	}

	if d.Status != models.StatusOngoing {
		return nil, invalidTransition("Only ongoing disasters can be cancelled. Current status: " + string(d.Status))
	}

	fe := fieldErrors{}
	if strings.TrimSpace(reason) == "" {
		fe.add("cancelled_reason", "cancelled_reason is required")
	} else if len(reason) > maxReasonLen {
		fe.add("cancelled_reason", fmt.Sprintf("cancelled_reason must be at most %d characters", maxReasonLen))
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	ok, err := s.store.Cancel(ctx, id, reason, asg.ID, s.now())
	if err != nil {
		return nil, fmt.Errorf("error cancelling disaster: %w", err)
	}
	if !ok {
		current, err := s.getDisaster(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, invalidTransition("Only ongoing disasters can be cancelled. Current status: " + string(current.Status))
	}

	s.emit(notify.EventStatusChanged, id, "Disaster cancelled", reason)
	return s.getDisaster(ctx, id)
}

// CompleteDisaster is the direct completion path (officer action). The
// indirect path is a final-stage report; both share the same guard.
func (s *Service) CompleteDisaster(ctx context.Context, callerID, id string) (*models.Disaster, error) {
	if _, err := s.getDisaster(ctx, id); err != nil {
		return nil, err
	}
	asg, err := s.store.AssignmentFor(ctx, id, callerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, accessDenied("You are not assigned to this disaster.")
	}
	if err != nil {
		return nil, fmt.Errorf("error resolving assignment: %w", err)
	}

	if err := s.complete(ctx, id, asg.ID); err != nil {
		return nil, err
	}
	return s.getDisaster(ctx, id)
}

type FeedDisasterInput struct {
	ExternalID  string
	Type        models.DisasterType
	Title       string
	Description string
	OccurredAt  time.Time
	Location    string
	Lat         *float64
	Long        *float64
	Magnitude   *float64
	Depth       *float64
}

// RegisterFeedDisaster ingests an event from the official feed. Feed
// disasters start ongoing with no reporter and no assignment; the external
// event key dedupes repeat polls. Returns false when the event was already
// known.
func (s *Service) RegisterFeedDisaster(ctx context.Context, in FeedDisasterInput) (*models.Disaster, bool, error) {
	if in.ExternalID == "" {
		return nil, false, &Error{Kind: KindValidationFailed, Message: "feed event is missing an external id"}
	}

	exists, err := s.store.ExistsExternal(ctx, in.ExternalID)
	if err != nil {
		return nil, false, fmt.Errorf("error checking feed event: %w", err)
	}
	if exists {
		return nil, false, nil
	}

	now := s.now()
	d := &models.Disaster{
		ID:          uuid.NewString(),
		Source:      models.SourceOfficialFeed,
		Type:        in.Type,
		Status:      models.StatusOngoing,
		Title:       in.Title,
		Description: in.Description,
		OccurredAt:  in.OccurredAt,
		Location:    in.Location,
		Lat:         in.Lat,
		Long:        in.Long,
		Magnitude:   in.Magnitude,
		Depth:       in.Depth,
		ExternalID:  in.ExternalID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.store.Add(ctx, d)
	if errors.Is(err, repository.ErrDuplicate) {
		// Another poller won the insert race.
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error registering feed disaster: %w", err)
	}

	s.emit(notify.EventNewDisaster, d.ID, "New disaster reported", d.Title)
	return d, true, nil
}
