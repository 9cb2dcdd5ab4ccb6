package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-disaster-response/internal/models"
	"github.com/mr1hm/go-disaster-response/internal/notify"
)

func TestCreateDisaster_AutoAssignsCreator(t *testing.T) {
	svc, n := newTestService(t)
	ctx := context.Background()

	d, asg, err := svc.CreateDisaster(ctx, "resp1", validCreateInput())
	require.NoError(t, err)

	assert.Equal(t, models.StatusOngoing, d.Status)
	assert.Equal(t, "resp1", d.ReportedBy)
	assert.Equal(t, d.ID, asg.DisasterID)
	assert.Equal(t, "resp1", asg.ResponderID)

	// The creator passes the access gate immediately
	_, err = svc.ListVolunteers(ctx, "resp1", d.ID)
	assert.NoError(t, err)

	assert.Contains(t, n.types(), notify.EventNewDisaster)
}

func TestCreateDisaster_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	in := validCreateInput()
	in.Title = ""
	in.Type = "meteor"
	lat := 120.0
	in.Lat = &lat

	_, _, err := svc.CreateDisaster(ctx, "resp1", in)
	requireKind(t, err, KindValidationFailed)

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Contains(t, svcErr.Fields, "title")
	assert.Contains(t, svcErr.Fields, "type")
	assert.Contains(t, svcErr.Fields, "lat")
}

func TestGetDisaster_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetDisaster(context.Background(), "missing")
	requireKind(t, err, KindNotFound)
}

func TestUpdateDisaster_RequiresAssignment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	d, _ := mustCreate(t, svc, "resp1")

	title := "Renamed"
	_, err := svc.UpdateDisaster(ctx, "stranger", d.ID, UpdateDisasterInput{Title: &title})
	requireKind(t, err, KindAccessDenied)

	// Volunteering grants access
	_, err = svc.AssignSelf(ctx, "stranger", d.ID)
	require.NoError(t, err)

	got, err := svc.UpdateDisaster(ctx, "stranger", d.ID, UpdateDisasterInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
}

func TestUpdateDisaster_TerminalIsFrozen(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	d, _ := mustCreate(t, svc, "resp1")

	_, err := svc.CancelDisaster(ctx, "resp1", d.ID, "resolved off-system")
	require.NoError(t, err)

	title := "Renamed"
	_, err = svc.UpdateDisaster(ctx, "resp1", d.ID, UpdateDisasterInput{Title: &title})
	requireKind(t, err, KindInvalidTransition)
	assert.EqualError(t, err, "Cannot modify disaster. Disaster is already cancelled.")
}

func TestCancelDisaster_Lifecycle(t *testing.T) {
	svc, n := newTestService(t)
	ctx := context.Background()
	d, asg := mustCreate(t, svc, "resp1")

	got, err := svc.CancelDisaster(ctx, "resp1", d.ID, "duplicate of an earlier entry")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.Equal(t, "duplicate of an earlier entry", got.CancelledReason)
	assert.Equal(t, asg.ID, got.CancelledBy, "provenance is the assignment id, not the responder id")
	require.NotNil(t, got.CancelledAt)

	// Terminal states never transition again
	_, err = svc.CancelDisaster(ctx, "resp1", d.ID, "again")
	requireKind(t, err, KindInvalidTransition)
	assert.EqualError(t, err, "Only ongoing disasters can be cancelled. Current status: cancelled")

	assert.Contains(t, n.types(), notify.EventStatusChanged)
}

func TestCancelDisaster_Guards(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	d, _ := mustCreate(t, svc, "resp1")

	_, err := svc.CancelDisaster(ctx, "resp1", d.ID, "")
	requireKind(t, err, KindValidationFailed)

	_, err = svc.CancelDisaster(ctx, "stranger", d.ID, "some reason")
	requireKind(t, err, KindAccessDenied)

	_, err = svc.CancelDisaster(ctx, "resp1", "missing", "some reason")
	requireKind(t, err, KindNotFound)
}

func TestCancelDisaster_GateAppliesOnTerminalDisasters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	d, _ := mustCreate(t, svc, "resp1")

	_, err := svc.CancelDisaster(ctx, "resp1", d.ID, "duplicate entry")
	require.NoError(t, err)

	// An unassigned caller is turned away at the gate even though the
	// disaster is already terminal.
	_, err = svc.CancelDisaster(ctx, "stranger", d.ID, "some reason")
	requireKind(t, err, KindAccessDenied)

	// An assigned caller gets the transition error instead
	_, err = svc.CancelDisaster(ctx, "resp1", d.ID, "again")
	requireKind(t, err, KindInvalidTransition)
}

func TestCompleteDisaster_Idempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	d, asg := mustCreate(t, svc, "resp1")

	got, err := svc.CompleteDisaster(ctx, "resp1", d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, asg.ID, got.CompletedBy)

	// Completing an already-completed disaster is a no-op, and the original
	// audit stamp survives.
	_, err = svc.AssignSelf(ctx, "resp2", d.ID)
	require.NoError(t, err)
	got, err = svc.CompleteDisaster(ctx, "resp2", d.ID)
	require.NoError(t, err)
	assert.Equal(t, asg.ID, got.CompletedBy)
}

func TestCompleteDisaster_CancelledFails(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	d, _ := mustCreate(t, svc, "resp1")

	_, err := svc.CancelDisaster(ctx, "resp1", d.ID, "false alarm")
	require.NoError(t, err)

	_, err = svc.CompleteDisaster(ctx, "resp1", d.ID)
	requireKind(t, err, KindInvalidTransition)
	assert.EqualError(t, err, "Disaster is already cancelled.")
}

func TestRegisterFeedDisaster_Dedupes(t *testing.T) {
	svc, n := newTestService(t)
	ctx := context.Background()

	in := FeedDisasterInput{
		ExternalID: "usgs_abc",
		Type:       models.DisasterTypeEarthquake,
		Title:      "M 5.4 - offshore",
		OccurredAt: time.Now().UTC(),
	}

	d, registered, err := svc.RegisterFeedDisaster(ctx, in)
	require.NoError(t, err)
	require.True(t, registered)
	assert.Equal(t, models.SourceOfficialFeed, d.Source)
	assert.Empty(t, d.ReportedBy, "feed disasters have no reporting responder")

	// Repeat polls see the same external id and do nothing
	_, registered, err = svc.RegisterFeedDisaster(ctx, in)
	require.NoError(t, err)
	assert.False(t, registered)

	count := 0
	for _, typ := range n.types() {
		if typ == notify.EventNewDisaster {
			count++
		}
	}
	assert.Equal(t, 1, count, "only the first registration notifies")
}
