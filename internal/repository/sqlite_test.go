package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mr1hm/go-disaster-response/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	return db
}

func testDisaster(id string) *models.Disaster {
	now := time.Now().UTC()
	return &models.Disaster{
		ID:         id,
		Source:     models.SourceManual,
		Type:       models.DisasterTypeFlood,
		Status:     models.StatusOngoing,
		Title:      "Flood in coastal district",
		OccurredAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestSQLiteDB_AddAndGetDisaster(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	mag := 5.5
	lat, long := 35.0, 139.0
	d := testDisaster("d1")
	d.Type = models.DisasterTypeEarthquake
	d.Title = "Test Earthquake"
	d.Magnitude = &mag
	d.Lat = &lat
	d.Long = &long

	if err := db.Add(ctx, d); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err := db.GetByID(ctx, "d1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Test Earthquake" {
		t.Errorf("expected title 'Test Earthquake', got '%s'", got.Title)
	}
	if got.Magnitude == nil || *got.Magnitude != 5.5 {
		t.Errorf("expected magnitude 5.5, got %v", got.Magnitude)
	}
	if got.Status != models.StatusOngoing {
		t.Errorf("expected status ongoing, got %s", got.Status)
	}

	_, err = db.GetByID(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestSQLiteDB_AddWithAssignment(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	d := testDisaster("d1")
	d.ReportedBy = "resp1"

	asg, err := db.AddWithAssignment(ctx, d, "resp1")
	if err != nil {
		t.Fatalf("AddWithAssignment failed: %v", err)
	}
	if asg.DisasterID != "d1" || asg.ResponderID != "resp1" {
		t.Errorf("unexpected assignment: %+v", asg)
	}
	if asg.ID == "" {
		t.Error("expected assignment id to be set")
	}

	assigned, err := db.IsAssigned(ctx, "d1", "resp1")
	if err != nil {
		t.Fatalf("IsAssigned failed: %v", err)
	}
	if !assigned {
		t.Error("expected creator to be assigned")
	}
}

func TestSQLiteDB_ListDisasters_WithFilters(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	d1 := testDisaster("eq1")
	d1.Type = models.DisasterTypeEarthquake
	d1.Title = "Quake uptown"
	d2 := testDisaster("eq2")
	d2.Type = models.DisasterTypeEarthquake
	d2.Status = models.StatusCompleted
	d3 := testDisaster("fl1")
	d3.Location = "riverside"

	for _, d := range []*models.Disaster{d1, d2, d3} {
		if err := db.Add(ctx, d); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	eq := models.DisasterTypeEarthquake
	results, err := db.List(ctx, DisasterFilter{Type: &eq})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 earthquakes, got %d", len(results))
	}

	ongoing := models.StatusOngoing
	results, err = db.List(ctx, DisasterFilter{Status: &ongoing})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 ongoing disasters, got %d", len(results))
	}

	results, err = db.List(ctx, DisasterFilter{Search: "riverside"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "fl1" {
		t.Errorf("expected search to match fl1, got %+v", results)
	}

	results, err = db.List(ctx, DisasterFilter{Limit: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 disasters with limit, got %d", len(results))
	}
}

func TestSQLiteDB_ExistsExternal(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	exists, err := db.ExistsExternal(ctx, "usgs_abc")
	if err != nil {
		t.Fatalf("ExistsExternal failed: %v", err)
	}
	if exists {
		t.Error("expected false for unknown external id")
	}

	d := testDisaster("d1")
	d.Source = models.SourceOfficialFeed
	d.ExternalID = "usgs_abc"
	if err := db.Add(ctx, d); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	exists, err = db.ExistsExternal(ctx, "usgs_abc")
	if err != nil {
		t.Fatalf("ExistsExternal failed: %v", err)
	}
	if !exists {
		t.Error("expected true for known external id")
	}

	// Second insert with the same external id must violate uniqueness
	dup := testDisaster("d2")
	dup.ExternalID = "usgs_abc"
	err = db.Add(ctx, dup)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for repeated external id, got %v", err)
	}
}

func TestSQLiteDB_CancelIsCompareAndSet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	if err := db.Add(ctx, testDisaster("d1")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	now := time.Now().UTC()
	applied, err := db.Cancel(ctx, "d1", "false alarm", "asg1", now)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if !applied {
		t.Fatal("expected first cancel to apply")
	}

	got, err := db.GetByID(ctx, "d1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.StatusCancelled {
		t.Errorf("expected status cancelled, got %s", got.Status)
	}
	if got.CancelledReason != "false alarm" || got.CancelledBy != "asg1" {
		t.Errorf("expected cancel audit fields, got reason=%q by=%q", got.CancelledReason, got.CancelledBy)
	}

	// Second cancel matches zero rows
	applied, err = db.Cancel(ctx, "d1", "again", "asg2", now)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if applied {
		t.Error("expected second cancel not to apply")
	}

	applied, err = db.Cancel(ctx, "missing", "reason", "asg1", now)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if applied {
		t.Error("expected cancel of missing disaster not to apply")
	}
}

func TestSQLiteDB_CompleteIsCompareAndSet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	if err := db.Add(ctx, testDisaster("d1")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	now := time.Now().UTC()
	applied, err := db.Complete(ctx, "d1", "asg1", now)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if !applied {
		t.Fatal("expected first complete to apply")
	}

	got, _ := db.GetByID(ctx, "d1")
	if got.Status != models.StatusCompleted {
		t.Errorf("expected status completed, got %s", got.Status)
	}
	if got.CompletedBy != "asg1" {
		t.Errorf("expected completed_by asg1, got %q", got.CompletedBy)
	}

	applied, err = db.Complete(ctx, "d1", "asg2", now)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if applied {
		t.Error("expected second complete not to apply")
	}
	got, _ = db.GetByID(ctx, "d1")
	if got.CompletedBy != "asg1" {
		t.Errorf("expected completed_by to stay asg1, got %q", got.CompletedBy)
	}
}

func TestSQLiteDB_UpdateFieldsGuardedByStatus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	d := testDisaster("d1")
	if err := db.Add(ctx, d); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	d.Title = "Flood in eastern district"
	applied, err := db.UpdateFields(ctx, d)
	if err != nil {
		t.Fatalf("UpdateFields failed: %v", err)
	}
	if !applied {
		t.Fatal("expected update of ongoing disaster to apply")
	}

	got, _ := db.GetByID(ctx, "d1")
	if got.Title != "Flood in eastern district" {
		t.Errorf("expected updated title, got %q", got.Title)
	}

	// Once terminal the row is frozen
	if _, err := db.Cancel(ctx, "d1", "handled elsewhere", "asg1", time.Now().UTC()); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	d.Title = "should not stick"
	applied, err = db.UpdateFields(ctx, d)
	if err != nil {
		t.Fatalf("UpdateFields failed: %v", err)
	}
	if applied {
		t.Error("expected update of cancelled disaster not to apply")
	}
}

func TestSQLiteDB_AssignDuplicate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	if err := db.Add(ctx, testDisaster("d1")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if _, err := db.Assign(ctx, "d1", "resp1"); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	_, err := db.Assign(ctx, "d1", "resp1")
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for repeated assignment, got %v", err)
	}

	// A different responder is fine
	if _, err := db.Assign(ctx, "d1", "resp2"); err != nil {
		t.Errorf("Assign of second responder failed: %v", err)
	}
}

func TestSQLiteDB_UnassignThenReassign(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	if err := db.Add(ctx, testDisaster("d1")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	asg, err := db.Assign(ctx, "d1", "resp1")
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	if err := db.Unassign(ctx, asg.ID, time.Now().UTC()); err != nil {
		t.Fatalf("Unassign failed: %v", err)
	}

	assigned, err := db.IsAssigned(ctx, "d1", "resp1")
	if err != nil {
		t.Fatalf("IsAssigned failed: %v", err)
	}
	if assigned {
		t.Error("expected responder to be unassigned")
	}

	// Soft-deleted row stays readable with its deletion time
	got, err := db.GetAssignment(ctx, asg.ID)
	if err != nil {
		t.Fatalf("GetAssignment failed: %v", err)
	}
	if got.DeletedAt == nil {
		t.Error("expected deleted_at to be set")
	}

	// Unassigning twice matches zero active rows
	if err := db.Unassign(ctx, asg.ID, time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for second unassign, got %v", err)
	}

	// The partial unique index only covers active rows, so re-assigning works
	again, err := db.Assign(ctx, "d1", "resp1")
	if err != nil {
		t.Fatalf("re-Assign failed: %v", err)
	}
	if again.ID == asg.ID {
		t.Error("expected a fresh assignment id on re-assign")
	}
}

func TestSQLiteDB_AssignConcurrent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	if err := db.Add(ctx, testDisaster("d1")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// Many racing assigns for the same pair: exactly one wins
	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = db.Assign(ctx, "d1", "resp1")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrDuplicate):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Errorf("expected exactly 1 successful assign, got %d", winners)
	}
}

func TestSQLiteDB_AssignmentForAndList(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	if err := db.Add(ctx, testDisaster("d1")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if _, err := db.AssignmentFor(ctx, "d1", "resp1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound before assigning, got %v", err)
	}

	asg, err := db.Assign(ctx, "d1", "resp1")
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if _, err := db.Assign(ctx, "d1", "resp2"); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	got, err := db.AssignmentFor(ctx, "d1", "resp1")
	if err != nil {
		t.Fatalf("AssignmentFor failed: %v", err)
	}
	if got.ID != asg.ID {
		t.Errorf("expected assignment %s, got %s", asg.ID, got.ID)
	}

	list, err := db.ListAssignments(ctx, "d1")
	if err != nil {
		t.Fatalf("ListAssignments failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 active assignments, got %d", len(list))
	}

	// Soft-deleted assignments drop out of the listing
	if err := db.Unassign(ctx, asg.ID, time.Now().UTC()); err != nil {
		t.Fatalf("Unassign failed: %v", err)
	}
	list, err = db.ListAssignments(ctx, "d1")
	if err != nil {
		t.Fatalf("ListAssignments failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 active assignment after unassign, got %d", len(list))
	}
}

func TestSQLiteDB_ReportCRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	if err := db.Add(ctx, testDisaster("d1")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	now := time.Now().UTC()
	r := &models.Report{
		ID:          uuid.NewString(),
		DisasterID:  "d1",
		ReportedBy:  "asg1",
		Title:       "Evacuation underway",
		Description: "Northern blocks cleared",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.AddReport(ctx, r); err != nil {
		t.Fatalf("AddReport failed: %v", err)
	}

	got, err := db.GetReport(ctx, "d1", r.ID)
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if got.ReportedBy != "asg1" {
		t.Errorf("expected reported_by asg1, got %q", got.ReportedBy)
	}

	// Scoped to the parent disaster
	if _, err := db.GetReport(ctx, "other", r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for wrong disaster, got %v", err)
	}

	r.IsFinalStage = true
	r.UpdatedAt = time.Now().UTC()
	if err := db.UpdateReport(ctx, r); err != nil {
		t.Fatalf("UpdateReport failed: %v", err)
	}
	got, _ = db.GetReport(ctx, "d1", r.ID)
	if !got.IsFinalStage {
		t.Error("expected is_final_stage true after update")
	}

	list, err := db.ListReports(ctx, "d1")
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 report, got %d", len(list))
	}

	if err := db.DeleteReport(ctx, "d1", r.ID); err != nil {
		t.Fatalf("DeleteReport failed: %v", err)
	}
	if err := db.DeleteReport(ctx, "d1", r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestSQLiteDB_VictimAndAidCRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	if err := db.Add(ctx, testDisaster("d1")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	now := time.Now().UTC()
	v := &models.Victim{
		ID:          uuid.NewString(),
		DisasterID:  "d1",
		ReportedBy:  "asg1",
		NIK:         "3175094001900002",
		Name:        "A. Resident",
		DateOfBirth: now.AddDate(-30, 0, 0),
		Gender:      true,
		Status:      models.VictimStatusMinorInjury,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.AddVictim(ctx, v); err != nil {
		t.Fatalf("AddVictim failed: %v", err)
	}

	v.IsEvacuated = true
	v.Status = models.VictimStatusSeriousInjury
	if err := db.UpdateVictim(ctx, v); err != nil {
		t.Fatalf("UpdateVictim failed: %v", err)
	}
	gotV, err := db.GetVictim(ctx, "d1", v.ID)
	if err != nil {
		t.Fatalf("GetVictim failed: %v", err)
	}
	if !gotV.IsEvacuated || gotV.Status != models.VictimStatusSeriousInjury {
		t.Errorf("unexpected victim after update: %+v", gotV)
	}

	a := &models.Aid{
		ID:         uuid.NewString(),
		DisasterID: "d1",
		ReportedBy: "asg1",
		Title:      "Rice shipment",
		Category:   models.AidCategoryFood,
		Quantity:   200,
		Unit:       "kg",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.AddAid(ctx, a); err != nil {
		t.Fatalf("AddAid failed: %v", err)
	}

	aids, err := db.ListAids(ctx, "d1")
	if err != nil {
		t.Fatalf("ListAids failed: %v", err)
	}
	if len(aids) != 1 || aids[0].Quantity != 200 {
		t.Errorf("unexpected aids listing: %+v", aids)
	}

	if err := db.DeleteVictim(ctx, "d1", v.ID); err != nil {
		t.Fatalf("DeleteVictim failed: %v", err)
	}
	if err := db.DeleteAid(ctx, "d1", a.ID); err != nil {
		t.Fatalf("DeleteAid failed: %v", err)
	}
}

func TestSQLiteDB_Responders(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	if _, err := db.GetResponder(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	r := &models.Responder{
		ID:     "resp1",
		Name:   "Field Officer",
		Email:  "officer@example.org",
		Type:   models.ResponderTypeOfficer,
		Status: models.ResponderStatusActive,
	}
	if err := db.AddResponder(ctx, r); err != nil {
		t.Fatalf("AddResponder failed: %v", err)
	}

	got, err := db.GetResponder(ctx, "resp1")
	if err != nil {
		t.Fatalf("GetResponder failed: %v", err)
	}
	if !got.CanRespond() {
		t.Error("expected active officer to be allowed to respond")
	}
}
