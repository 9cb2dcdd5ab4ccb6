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

// Every field-record operation runs the same sequence: resolve the disaster,
// pass the access gate, reject non-ongoing disasters, validate the payload,
// stamp the caller's assignment id, persist. A final-stage report then
// drives the completion transition.

// Reports

type ReportInput struct {
	Title        string
	Description  string
	IsFinalStage bool
}

type ReportUpdateInput struct {
	Title        *string
	Description  *string
	IsFinalStage *bool
}

func (s *Service) CreateReport(ctx context.Context, callerID, disasterID string, in ReportInput) (*models.Report, error) {
	asg, err := s.guardSubmission(ctx, callerID, disasterID)
	if err != nil {
		return nil, err
	}

	fe := fieldErrors{}
	validateReportFields(fe, in.Title, in.Description)
	if err := fe.err(); err != nil {
		return nil, err
	}

	now := s.now()
	r := &models.Report{
		ID:           uuid.NewString(),
		DisasterID:   disasterID,
		ReportedBy:   asg.ID,
		Title:        in.Title,
		Description:  in.Description,
		IsFinalStage: in.IsFinalStage,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.AddReport(ctx, r); err != nil {
		return nil, fmt.Errorf("error creating report: %w", err)
	}

	s.emit(notify.EventNewReport, disasterID, "New disaster report", r.Title)

	if r.IsFinalStage {
		if err := s.complete(ctx, disasterID, asg.ID); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (s *Service) GetReport(ctx context.Context, callerID, disasterID, reportID string) (*models.Report, error) {
	if _, err := s.guardAccess(ctx, callerID, disasterID); err != nil {
		return nil, err
	}
	r, err := s.store.GetReport(ctx, disasterID, reportID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Disaster report not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("error loading report: %w", err)
	}
	return r, nil
}

func (s *Service) ListReports(ctx context.Context, callerID, disasterID string) ([]models.Report, error) {
	if _, err := s.guardAccess(ctx, callerID, disasterID); err != nil {
		return nil, err
	}
	reports, err := s.store.ListReports(ctx, disasterID)
	if err != nil {
		return nil, fmt.Errorf("error listing reports: %w", err)
	}
	return reports, nil
}

func (s *Service) UpdateReport(ctx context.Context, callerID, disasterID, reportID string, in ReportUpdateInput) (*models.Report, error) {
	asg, err := s.guardSubmission(ctx, callerID, disasterID)
	if err != nil {
		return nil, err
	}

	r, err := s.store.GetReport(ctx, disasterID, reportID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Disaster report not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("error loading report: %w", err)
	}

	if in.Title != nil {
		r.Title = *in.Title
	}
	if in.Description != nil {
		r.Description = *in.Description
	}
	if in.IsFinalStage != nil {
		r.IsFinalStage = *in.IsFinalStage
	}

	fe := fieldErrors{}
	validateReportFields(fe, r.Title, r.Description)
	if err := fe.err(); err != nil {
		return nil, err
	}

	r.UpdatedAt = s.now()
	if err := s.store.UpdateReport(ctx, r); err != nil {
		return nil, fmt.Errorf("error updating report: %w", err)
	}

	// Marking an existing report final-stage completes the disaster too.
	if in.IsFinalStage != nil && *in.IsFinalStage {
		if err := s.complete(ctx, disasterID, asg.ID); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (s *Service) DeleteReport(ctx context.Context, callerID, disasterID, reportID string) error {
	if _, err := s.guardSubmission(ctx, callerID, disasterID); err != nil {
		return err
	}
	err := s.store.DeleteReport(ctx, disasterID, reportID)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("Disaster report not found.")
	}
	if err != nil {
		return fmt.Errorf("error deleting report: %w", err)
	}
	return nil
}

func validateReportFields(fe fieldErrors, title, description string) {
	if strings.TrimSpace(title) == "" {
		fe.add("title", "title is required")
	} else if len(title) > maxTitleLen {
		fe.add("title", fmt.Sprintf("title must be at most %d characters", maxTitleLen))
	}
	if strings.TrimSpace(description) == "" {
		fe.add("description", "description is required")
	}
}

// Victims

type VictimInput struct {
	NIK         string
	Name        string
	DateOfBirth time.Time
	Gender      *bool
	ContactInfo string
	Description string
	IsEvacuated bool
	Status      models.VictimStatus
}

type VictimUpdateInput struct {
	NIK         *string
	Name        *string
	DateOfBirth *time.Time
	Gender      *bool
	ContactInfo *string
	Description *string
	IsEvacuated *bool
	Status      *models.VictimStatus
}

func (s *Service) CreateVictim(ctx context.Context, callerID, disasterID string, in VictimInput) (*models.Victim, error) {
	asg, err := s.guardSubmission(ctx, callerID, disasterID)
	if err != nil {
		return nil, err
	}

	fe := fieldErrors{}
	if in.Gender == nil {
		fe.add("gender", "gender is required")
	}
	validateVictimFields(fe, s.now(), in.NIK, in.Name, in.DateOfBirth, in.ContactInfo, in.Status)
	if err := fe.err(); err != nil {
		return nil, err
	}

	now := s.now()
	v := &models.Victim{
		ID:          uuid.NewString(),
		DisasterID:  disasterID,
		ReportedBy:  asg.ID,
		NIK:         in.NIK,
		Name:        in.Name,
		DateOfBirth: in.DateOfBirth,
		Gender:      *in.Gender,
		ContactInfo: in.ContactInfo,
		Description: in.Description,
		IsEvacuated: in.IsEvacuated,
		Status:      in.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.AddVictim(ctx, v); err != nil {
		return nil, fmt.Errorf("error creating victim record: %w", err)
	}

	s.emit(notify.EventNewVictimReport, disasterID, "New victim record", v.Name)
	return v, nil
}

func (s *Service) GetVictim(ctx context.Context, callerID, disasterID, victimID string) (*models.Victim, error) {
	if _, err := s.guardAccess(ctx, callerID, disasterID); err != nil {
		return nil, err
	}
	v, err := s.store.GetVictim(ctx, disasterID, victimID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Disaster victim not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("error loading victim record: %w", err)
	}
	return v, nil
}

func (s *Service) ListVictims(ctx context.Context, callerID, disasterID string) ([]models.Victim, error) {
	if _, err := s.guardAccess(ctx, callerID, disasterID); err != nil {
		return nil, err
	}
	victims, err := s.store.ListVictims(ctx, disasterID)
	if err != nil {
		return nil, fmt.Errorf("error listing victim records: %w", err)
	}
	return victims, nil
}

func (s *Service) UpdateVictim(ctx context.Context, callerID, disasterID, victimID string, in VictimUpdateInput) (*models.Victim, error) {
	if _, err := s.guardSubmission(ctx, callerID, disasterID); err != nil {
		return nil, err
	}

	v, err := s.store.GetVictim(ctx, disasterID, victimID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Disaster victim not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("error loading victim record: %w", err)
	}

	if in.NIK != nil {
		v.NIK = *in.NIK
	}
	if in.Name != nil {
		v.Name = *in.Name
	}
	if in.DateOfBirth != nil {
		v.DateOfBirth = *in.DateOfBirth
	}
	if in.Gender != nil {
		v.Gender = *in.Gender
	}
	if in.ContactInfo != nil {
		v.ContactInfo = *in.ContactInfo
	}
	if in.Description != nil {
		v.Description = *in.Description
	}
	if in.IsEvacuated != nil {
		v.IsEvacuated = *in.IsEvacuated
	}
	if in.Status != nil {
		v.Status = *in.Status
	}

	fe := fieldErrors{}
	validateVictimFields(fe, s.now(), v.NIK, v.Name, v.DateOfBirth, v.ContactInfo, v.Status)
	if err := fe.err(); err != nil {
		return nil, err
	}

	v.UpdatedAt = s.now()
	if err := s.store.UpdateVictim(ctx, v); err != nil {
		return nil, fmt.Errorf("error updating victim record: %w", err)
	}
	return v, nil
}

func (s *Service) DeleteVictim(ctx context.Context, callerID, disasterID, victimID string) error {
	if _, err := s.guardSubmission(ctx, callerID, disasterID); err != nil {
		return err
	}
	err := s.store.DeleteVictim(ctx, disasterID, victimID)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("Disaster victim not found.")
	}
	if err != nil {
		return fmt.Errorf("error deleting victim record: %w", err)
	}
	return nil
}

func validateVictimFields(fe fieldErrors, now time.Time, nik, name string, dob time.Time, contactInfo string, status models.VictimStatus) {
	if strings.TrimSpace(nik) == "" {
		fe.add("nik", "nik is required")
	} else if len(nik) > maxTitleLen {
		fe.add("nik", fmt.Sprintf("nik must be at most %d characters", maxTitleLen))
	}
	if strings.TrimSpace(name) == "" {
		fe.add("name", "name is required")
	} else if len(name) > maxTitleLen {
		fe.add("name", fmt.Sprintf("name must be at most %d characters", maxTitleLen))
	}
	if dob.IsZero() {
		fe.add("date_of_birth", "date_of_birth is required")
	} else if !dob.Before(now) {
		fe.add("date_of_birth", "date_of_birth must be in the past")
	}
	if len(contactInfo) > 100 {
		fe.add("contact_info", "contact_info must be at most 100 characters")
	}
	if !status.Valid() {
		fe.add("status", "status must be one of: minor_injury, serious_injury, deceased, missing")
	}
}

// Aids

type AidInput struct {
	Title       string
	Description string
	Category    models.AidCategory
	Quantity    int
	Unit        string
}

type AidUpdateInput struct {
	Title       *string
	Description *string
	Category    *models.AidCategory
	Quantity    *int
	Unit        *string
}

func (s *Service) CreateAid(ctx context.Context, callerID, disasterID string, in AidInput) (*models.Aid, error) {
	asg, err := s.guardSubmission(ctx, callerID, disasterID)
	if err != nil {
		return nil, err
	}

	fe := fieldErrors{}
	validateAidFields(fe, in.Title, in.Category, in.Quantity, in.Unit)
	if err := fe.err(); err != nil {
		return nil, err
	}

	now := s.now()
	a := &models.Aid{
		ID:          uuid.NewString(),
		DisasterID:  disasterID,
		ReportedBy:  asg.ID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Quantity:    in.Quantity,
		Unit:        in.Unit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.AddAid(ctx, a); err != nil {
		return nil, fmt.Errorf("error creating aid record: %w", err)
	}

	s.emit(notify.EventNewAidReport, disasterID, "New aid record", a.Title)
	return a, nil
}

func (s *Service) GetAid(ctx context.Context, callerID, disasterID, aidID string) (*models.Aid, error) {
	if _, err := s.guardAccess(ctx, callerID, disasterID); err != nil {
		return nil, err
	}
	a, err := s.store.GetAid(ctx, disasterID, aidID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Disaster aid not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("error loading aid record: %w", err)
	}
	return a, nil
}

func (s *Service) ListAids(ctx context.Context, callerID, disasterID string) ([]models.Aid, error) {
	if _, err := s.guardAccess(ctx, callerID, disasterID); err != nil {
		return nil, err
	}
	aids, err := s.store.ListAids(ctx, disasterID)
	if err != nil {
		return nil, fmt.Errorf("error listing aid records: %w", err)
	}
	return aids, nil
}

func (s *Service) UpdateAid(ctx context.Context, callerID, disasterID, aidID string, in AidUpdateInput) (*models.Aid, error) {
	if _, err := s.guardSubmission(ctx, callerID, disasterID); err != nil {
		return nil, err
	}

	a, err := s.store.GetAid(ctx, disasterID, aidID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Disaster aid not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("error loading aid record: %w", err)
	}

	if in.Title != nil {
		a.Title = *in.Title
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	if in.Category != nil {
		a.Category = *in.Category
	}
	if in.Quantity != nil {
		a.Quantity = *in.Quantity
	}
	if in.Unit != nil {
		a.Unit = *in.Unit
	}

	fe := fieldErrors{}
	validateAidFields(fe, a.Title, a.Category, a.Quantity, a.Unit)
	if err := fe.err(); err != nil {
		return nil, err
	}

	a.UpdatedAt = s.now()
	if err := s.store.UpdateAid(ctx, a); err != nil {
		return nil, fmt.Errorf("error updating aid record: %w", err)
	}
	return a, nil
}

func (s *Service) DeleteAid(ctx context.Context, callerID, disasterID, aidID string) error {
	if _, err := s.guardSubmission(ctx, callerID, disasterID); err != nil {
		return err
	}
	err := s.store.DeleteAid(ctx, disasterID, aidID)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("Disaster aid not found.")
	}
	if err != nil {
		return fmt.Errorf("error deleting aid record: %w", err)
	}
	return nil
}

func validateAidFields(fe fieldErrors, title string, category models.AidCategory, quantity int, unit string) {
	if strings.TrimSpace(title) == "" {
		fe.add("title", "title is required")
	} else if len(title) > maxTitleLen {
		fe.add("title", fmt.Sprintf("title must be at most %d characters", maxTitleLen))
	}
	if !category.Valid() {
		fe.add("category", "category must be one of: food, clothing, housing")
	}
	if quantity < 1 {
		fe.add("quantity", "quantity must be at least 1")
	}
	if strings.TrimSpace(unit) == "" {
		fe.add("unit", "unit is required")
	} else if len(unit) > maxTitleLen {
		fe.add("unit", fmt.Sprintf("unit must be at most %d characters", maxTitleLen))
	}
}
