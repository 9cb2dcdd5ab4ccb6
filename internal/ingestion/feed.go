package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mr1hm/go-disaster-response/internal/service"
)

type feedResponse struct {
	Features []feedFeature `json:"features"`
}

type feedFeature struct {
	ID         string         `json:"id"`
	Properties feedProperties `json:"properties"`
	Geometry   feedGeometry   `json:"geometry"`
}
type feedProperties struct {
	Mag   *float64 `json:"mag"`
	Place string   `json:"place"`
	Time  int64    `json:"time"` // unix millis
	Title string   `json:"title"`
	Type  string   `json:"type"`
}
type feedGeometry struct {
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
}

// fetchFeed pulls the official GeoJSON feed and maps each event to an
// ingestion input keyed by the feed's event id.
func (m *Manager) fetchFeed(ctx context.Context, url string) ([]service.FeedDisasterInput, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	events := make([]service.FeedDisasterInput, 0, len(data.Features))
	for _, f := range data.Features {
		in := service.FeedDisasterInput{
			ExternalID:  f.ID,
			Type:        disasterTypeFor(f.Properties.Type),
			Title:       truncate(f.Properties.Title, 45),
			Description: f.Properties.Place,
			OccurredAt:  time.UnixMilli(f.Properties.Time).UTC(),
			Location:    truncate(f.Properties.Place, 45),
			Magnitude:   f.Properties.Mag,
		}
		if len(f.Geometry.Coordinates) >= 2 {
			long, lat := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]
			in.Long = &long
			in.Lat = &lat
		}
		if len(f.Geometry.Coordinates) >= 3 {
			depth := f.Geometry.Coordinates[2]
			in.Depth = &depth
		}
		events = append(events, in)
	}

	return events, nil
}

// truncate cuts on rune boundaries; feed text can carry non-ASCII place
// names, and byte slicing would split a multi-byte rune.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
