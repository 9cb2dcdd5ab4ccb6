package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mr1hm/go-disaster-response/internal/models"
	"github.com/mr1hm/go-disaster-response/internal/repository"
	"github.com/mr1hm/go-disaster-response/internal/service"
)

const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04:05"
	timestampLayout = "2006-01-02 15:04:05"
)

type createDisasterRequest struct {
	Title       string   `json:"title" binding:"required,max=45"`
	Description string   `json:"description"`
	Source      string   `json:"source" binding:"required,oneof=official_feed manual"`
	Type        string   `json:"type" binding:"required,oneof=earthquake tsunami volcanic_eruption flood drought tornado landslide non_natural social"`
	Date        string   `json:"date" binding:"required,datetime=2006-01-02"`
	Time        string   `json:"time" binding:"required,datetime=15:04:05"`
	Location    string   `json:"location" binding:"omitempty,max=45"`
	Lat         *float64 `json:"lat" binding:"omitempty,gte=-90,lte=90"`
	Long        *float64 `json:"long" binding:"omitempty,gte=-180,lte=180"`
	Magnitude   *float64 `json:"magnitude" binding:"omitempty,gte=0"`
	Depth       *float64 `json:"depth" binding:"omitempty,gte=0"`
}

// updateDisasterRequest has no status field: terminal transitions go through
// the cancel endpoint or a final-stage report only.
type updateDisasterRequest struct {
	Title       *string  `json:"title" binding:"omitempty,max=45"`
	Description *string  `json:"description"`
	Source      *string  `json:"source" binding:"omitempty,oneof=official_feed manual"`
	Type        *string  `json:"type" binding:"omitempty,oneof=earthquake tsunami volcanic_eruption flood drought tornado landslide non_natural social"`
	Date        *string  `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time        *string  `json:"time" binding:"omitempty,datetime=15:04:05"`
	Location    *string  `json:"location" binding:"omitempty,max=45"`
	Lat         *float64 `json:"lat" binding:"omitempty,gte=-90,lte=90"`
	Long        *float64 `json:"long" binding:"omitempty,gte=-180,lte=180"`
	Magnitude   *float64 `json:"magnitude" binding:"omitempty,gte=0"`
	Depth       *float64 `json:"depth" binding:"omitempty,gte=0"`
}

type cancelDisasterRequest struct {
	CancelledReason string `json:"cancelled_reason" binding:"required,max=500"`
}

func parseOccurredAt(date, tm string) (time.Time, error) {
	return time.Parse(dateLayout+" "+timeLayout, date+" "+tm)
}

func (h *Handler) createDisaster(c *gin.Context) {
	var req createDisasterRequest
	if !bindJSON(c, &req) {
		return
	}

	occurredAt, err := parseOccurredAt(req.Date, req.Time)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Validation failed",
			"errors":  gin.H{"date": "date and time must form a valid timestamp"},
		})
		return
	}

	d, asg, err := h.svc.CreateDisaster(c.Request.Context(), callerID(c), service.CreateDisasterInput{
		Title:       req.Title,
		Description: req.Description,
		Source:      models.DisasterSource(req.Source),
		Type:        models.DisasterType(req.Type),
		OccurredAt:  occurredAt,
		Location:    req.Location,
		Lat:         req.Lat,
		Long:        req.Long,
		Magnitude:   req.Magnitude,
		Depth:       req.Depth,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Disaster created successfully. You have been automatically assigned as a volunteer.",
		"data":    disasterJSON(d),
		"assignment": gin.H{
			"id":          asg.ID,
			"disaster_id": asg.DisasterID,
			"assigned_at": asg.CreatedAt.Format(timestampLayout),
		},
	})
}

func (h *Handler) getDisaster(c *gin.Context) {
	d, err := h.svc.GetDisaster(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": disasterJSON(d)})
}

func (h *Handler) listDisasters(c *gin.Context) {
	filter := repository.DisasterFilter{
		Limit:  50,
		Search: c.Query("search"),
	}
	if s := c.Query("status"); s != "" {
		status := models.DisasterStatus(s)
		filter.Status = &status
	}
	if t := c.Query("type"); t != "" {
		typ := models.DisasterType(t)
		filter.Type = &typ
	}

	disasters, err := h.svc.ListDisasters(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	data := make([]gin.H, 0, len(disasters))
	for i := range disasters {
		data = append(data, disasterJSON(&disasters[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (h *Handler) updateDisaster(c *gin.Context) {
	var req updateDisasterRequest
	if !bindJSON(c, &req) {
		return
	}

	in := service.UpdateDisasterInput{
		Description: req.Description,
		Location:    req.Location,
		Lat:         req.Lat,
		Long:        req.Long,
		Magnitude:   req.Magnitude,
		Depth:       req.Depth,
		Title:       req.Title,
	}
	if req.Source != nil {
		src := models.DisasterSource(*req.Source)
		in.Source = &src
	}
	if req.Type != nil {
		typ := models.DisasterType(*req.Type)
		in.Type = &typ
	}
	if req.Date != nil || req.Time != nil {
		if req.Date == nil || req.Time == nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"message": "Validation failed",
				"errors":  gin.H{"date": "date and time must be provided together"},
			})
			return
		}
		occurredAt, err := parseOccurredAt(*req.Date, *req.Time)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"message": "Validation failed",
				"errors":  gin.H{"date": "date and time must form a valid timestamp"},
			})
			return
		}
		in.OccurredAt = &occurredAt
	}

	d, err := h.svc.UpdateDisaster(c.Request.Context(), callerID(c), c.Param("id"), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Disaster updated successfully.",
		"data":    disasterJSON(d),
	})
}

func (h *Handler) cancelDisaster(c *gin.Context) {
	var req cancelDisasterRequest
	if !bindJSON(c, &req) {
		return
	}

	d, err := h.svc.CancelDisaster(c.Request.Context(), callerID(c), c.Param("id"), req.CancelledReason)
	if err != nil {
		if kind, ok := service.KindOf(err); ok && kind == service.KindInvalidTransition {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Disaster cancelled successfully.",
		"data":    disasterJSON(d),
	})
}

func (h *Handler) listVolunteers(c *gin.Context) {
	assignments, err := h.svc.ListVolunteers(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	data := make([]gin.H, 0, len(assignments))
	for _, a := range assignments {
		data = append(data, gin.H{
			"id":           a.ID,
			"disaster_id":  a.DisasterID,
			"responder_id": a.ResponderID,
			"assigned_at":  a.CreatedAt.Format(timestampLayout),
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (h *Handler) assignVolunteer(c *gin.Context) {
	asg, err := h.svc.AssignSelf(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Successfully volunteered for this disaster.",
		"data": gin.H{
			"id":           asg.ID,
			"disaster_id":  asg.DisasterID,
			"responder_id": asg.ResponderID,
			"assigned_at":  asg.CreatedAt.Format(timestampLayout),
		},
	})
}

func (h *Handler) removeVolunteer(c *gin.Context) {
	err := h.svc.UnassignSelf(c.Request.Context(), callerID(c), c.Param("id"), c.Param("volunteerId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully stopped volunteering for this disaster."})
}

func disasterJSON(d *models.Disaster) gin.H {
	out := gin.H{
		"id":          d.ID,
		"title":       d.Title,
		"description": d.Description,
		"source":      d.Source,
		"type":        d.Type,
		"status":      d.Status,
		"date":        d.OccurredAt.Format(dateLayout),
		"time":        d.OccurredAt.Format(timeLayout),
		"location":    d.Location,
		"lat":         d.Lat,
		"long":        d.Long,
		"magnitude":   d.Magnitude,
		"depth":       d.Depth,
		"reported_by": d.ReportedBy,
		"created_at":  d.CreatedAt.Format(timestampLayout),
		"updated_at":  d.UpdatedAt.Format(timestampLayout),
	}
	if d.Status == models.StatusCancelled {
		out["cancelled_reason"] = d.CancelledReason
		out["cancelled_by"] = d.CancelledBy
		if d.CancelledAt != nil {
			out["cancelled_at"] = d.CancelledAt.Format(timestampLayout)
		}
	}
	if d.Status == models.StatusCompleted {
		out["completed_by"] = d.CompletedBy
		if d.CompletedAt != nil {
			out["completed_at"] = d.CompletedAt.Format(timestampLayout)
		}
	}
	return out
}
