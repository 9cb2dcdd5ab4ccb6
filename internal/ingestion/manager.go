package ingestion

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mr1hm/go-disaster-response/internal/config"
	"github.com/mr1hm/go-disaster-response/internal/models"
	"github.com/mr1hm/go-disaster-response/internal/service"
	"github.com/mr1hm/go-disaster-response/internal/worker"
)

// Manager polls the official disaster feed and registers new events through
// the service layer, which handles dedupe and notification.
type Manager struct {
	cfg    config.FeedConfig
	svc    *service.Service
	client *http.Client
	pool   *worker.Pool[service.FeedDisasterInput]
	wg     sync.WaitGroup
}

func NewManager(cfg config.FeedConfig, svc *service.Service) *Manager {
	return &Manager{
		cfg: cfg,
		svc: svc,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (m *Manager) Start(ctx context.Context) {
	processor := func(ctx context.Context, in service.FeedDisasterInput) error {
		d, registered, err := m.svc.RegisterFeedDisaster(ctx, in)
		if err != nil {
			slog.Error("error registering feed disaster", "external_id", in.ExternalID, "error", err)
			return err
		}
		if registered {
			slog.Info("registered feed disaster", "id", d.ID, "external_id", d.ExternalID, "type", d.Type)
		}
		return nil
	}

	m.pool = worker.NewPool(2, 32, processor)
	m.pool.Start(ctx)

	if m.cfg.Enabled {
		m.wg.Add(1)
		go m.runPoller(ctx)
	}
}

func (m *Manager) runPoller(ctx context.Context) {
	defer m.wg.Done()
	slog.Info("starting feed poller", "url", m.cfg.URL, "interval", m.cfg.PollInterval)

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	m.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("feed poller shutting down")
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

func (m *Manager) poll(ctx context.Context) {
	events, err := m.fetchFeed(ctx, m.cfg.URL)
	if err != nil {
		slog.Error("feed poll failed", "error", err)
		return
	}

	for _, e := range events {
		m.pool.Submit(e)
	}

	slog.Debug("feed poll complete", "count", len(events))
}

func (m *Manager) Stop() {
	m.wg.Wait()
	m.pool.Stop()
	slog.Info("ingestion manager stopped")
}

// disasterTypeFor maps feed event types onto the local vocabulary. Unknown
// event types land in the catch-all non_natural bucket.
func disasterTypeFor(feedType string) models.DisasterType {
	switch feedType {
	case "earthquake":
		return models.DisasterTypeEarthquake
	case "tsunami":
		return models.DisasterTypeTsunami
	case "volcanic eruption", "volcanic_eruption":
		return models.DisasterTypeVolcanicEruption
	case "landslide":
		return models.DisasterTypeLandslide
	default:
		return models.DisasterTypeNonNatural
	}
}
