package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-disaster-response/internal/models"
	"github.com/mr1hm/go-disaster-response/internal/notify"
	"github.com/mr1hm/go-disaster-response/internal/repository"
)

// captureNotifier records emitted events for assertions.
type captureNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (c *captureNotifier) Notify(e notify.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureNotifier) types() []notify.EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]notify.EventType, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestService(t *testing.T) (*Service, *captureNotifier) {
	t.Helper()
	db, err := repository.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	n := &captureNotifier{}
	return New(db, n), n
}

func validCreateInput() CreateDisasterInput {
	return CreateDisasterInput{
		Title:      "Flood in coastal district",
		Source:     models.SourceManual,
		Type:       models.DisasterTypeFlood,
		OccurredAt: time.Now().UTC().Add(-time.Hour),
		Location:   "coastal district",
	}
}

// mustCreate registers a disaster for callerID and returns it with the
// creator's assignment.
func mustCreate(t *testing.T, svc *Service, callerID string) (*models.Disaster, *models.Assignment) {
	t.Helper()
	d, asg, err := svc.CreateDisaster(context.Background(), callerID, validCreateInput())
	require.NoError(t, err)
	return d, asg
}

func requireKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	require.Error(t, err)
	got, ok := KindOf(err)
	require.True(t, ok, "expected a service error, got %v", err)
	require.Equal(t, kind, got, "unexpected error kind: %v", err)
}
