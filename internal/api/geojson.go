package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mr1hm/go-disaster-response/internal/models"
	"github.com/mr1hm/go-disaster-response/internal/repository"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// disasterMap serves the current disasters as a GeoJSON FeatureCollection for
// map frontends. Disasters without coordinates are skipped.
func (h *Handler) disasterMap(c *gin.Context) {
	filter := repository.DisasterFilter{Limit: 500}
	if s := c.Query("status"); s != "" {
		status := models.DisasterStatus(s)
		filter.Status = &status
	}

	disasters, err := h.svc.ListDisasters(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toGeoJSON(disasters))
}

func toGeoJSON(disasters []models.Disaster) FeatureCollection {
	features := make([]Feature, 0, len(disasters))

	for _, d := range disasters {
		if !d.HasCoordinates() {
			continue
		}
		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{*d.Long, *d.Lat},
			},
			Properties: map[string]any{
				"id":          d.ID,
				"type":        d.Type,
				"status":      d.Status,
				"title":       d.Title,
				"description": d.Description,
				"magnitude":   d.Magnitude,
				"source":      d.Source,
				"occurred_at": d.OccurredAt.Format(timestampLayout),
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
