package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"go.uber.org/goleak"

	"github.com/mr1hm/go-disaster-response/internal/config"
	"github.com/mr1hm/go-disaster-response/internal/models"
	"github.com/mr1hm/go-disaster-response/internal/repository"
	"github.com/mr1hm/go-disaster-response/internal/service"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestService(t *testing.T) *service.Service {
	t.Helper()
	db, err := repository.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return service.New(db, nil)
}

func feedPayload(ids ...string) feedResponse {
	var resp feedResponse
	for i, id := range ids {
		mag := 5.0 + float64(i)
		resp.Features = append(resp.Features, feedFeature{
			ID: id,
			Properties: feedProperties{
				Mag:   &mag,
				Place: "120km off the coast",
				Time:  time.Now().UnixMilli(),
				Title: fmt.Sprintf("M %.1f - offshore event %s", mag, id),
				Type:  "earthquake",
			},
			Geometry: feedGeometry{
				Coordinates: []float64{106.8, -6.2, 10.5},
			},
		})
	}
	return resp
}

func TestManager_StartStop(t *testing.T) {
	cfg := config.FeedConfig{
		Enabled:      false,
		PollInterval: time.Minute,
	}

	mgr := NewManager(cfg, newTestService(t))

	ctx, cancel := context.WithCancel(context.Background())

	// Start should not block
	mgr.Start(ctx)

	time.Sleep(50 * time.Millisecond)

	cancel()
	mgr.Stop()
}

func TestFetchFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(feedPayload("ev1", "ev2"))
	}))
	defer srv.Close()

	mgr := NewManager(config.FeedConfig{URL: srv.URL}, newTestService(t))

	events, err := mgr.fetchFeed(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetchFeed failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	e := events[0]
	if e.ExternalID != "ev1" {
		t.Errorf("expected external id ev1, got %s", e.ExternalID)
	}
	if e.Type != models.DisasterTypeEarthquake {
		t.Errorf("expected earthquake type, got %s", e.Type)
	}
	if e.Lat == nil || *e.Lat != -6.2 || e.Long == nil || *e.Long != 106.8 {
		t.Errorf("unexpected coordinates: lat=%v long=%v", e.Lat, e.Long)
	}
	if e.Depth == nil || *e.Depth != 10.5 {
		t.Errorf("unexpected depth: %v", e.Depth)
	}
}

func TestFetchFeed_TruncatesLongText(t *testing.T) {
	// Multi-byte place names must not be cut mid-rune
	longPlace := strings.Repeat("Село над рекой, далёкий округ ", 3)
	payload := feedPayload("ev1")
	payload.Features[0].Properties.Place = longPlace
	payload.Features[0].Properties.Title = longPlace

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	mgr := NewManager(config.FeedConfig{URL: srv.URL}, newTestService(t))

	events, err := mgr.fetchFeed(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetchFeed failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	for name, got := range map[string]string{"location": events[0].Location, "title": events[0].Title} {
		if !utf8.ValidString(got) {
			t.Errorf("%s is not valid UTF-8: %q", name, got)
		}
		if n := utf8.RuneCountInString(got); n != 45 {
			t.Errorf("expected %s truncated to 45 runes, got %d", name, n)
		}
	}
}

func TestFetchFeed_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	mgr := NewManager(config.FeedConfig{URL: srv.URL}, newTestService(t))

	if _, err := mgr.fetchFeed(context.Background(), srv.URL); err == nil {
		t.Error("expected error for non-200 upstream response")
	}
}

func TestManager_PollRegistersAndDedupes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(feedPayload("ev1", "ev2", "ev3"))
	}))
	defer srv.Close()

	svc := newTestService(t)
	cfg := config.FeedConfig{
		Enabled:      false, // poll driven manually
		URL:          srv.URL,
		PollInterval: time.Minute,
	}
	mgr := NewManager(cfg, svc)

	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	mgr.poll(ctx)
	// A second poll sees the same external ids
	mgr.poll(ctx)

	time.Sleep(200 * time.Millisecond)

	cancel()
	mgr.Stop()

	disasters, err := svc.ListDisasters(context.Background(), repository.DisasterFilter{})
	if err != nil {
		t.Fatalf("ListDisasters failed: %v", err)
	}
	if len(disasters) != 3 {
		t.Errorf("expected 3 registered disasters, got %d", len(disasters))
	}
	for _, d := range disasters {
		if d.Source != models.SourceOfficialFeed {
			t.Errorf("expected official_feed source, got %s", d.Source)
		}
		if d.Status != models.StatusOngoing {
			t.Errorf("expected ongoing status, got %s", d.Status)
		}
	}
}

func TestManager_GracefulShutdown(t *testing.T) {
	svc := newTestService(t)
	mgr := NewManager(config.FeedConfig{Enabled: false}, svc)

	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	for i := 0; i < 20; i++ {
		mgr.pool.Submit(service.FeedDisasterInput{
			ExternalID: fmt.Sprintf("shutdown_test_%d", i),
			Type:       models.DisasterTypeFlood,
			Title:      "shutdown test",
			OccurredAt: time.Now().UTC(),
		})
	}

	cancel()

	done := make(chan struct{})
	go func() {
		mgr.Stop()
		close(done)
	}()

	select {
	case <-done:
		// Good, stopped gracefully
	case <-time.After(5 * time.Second):
		t.Fatal("manager.Stop() timed out - possible goroutine leak")
	}
}
