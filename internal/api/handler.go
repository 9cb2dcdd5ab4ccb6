package api

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/mr1hm/go-disaster-response/internal/service"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	registerTagNames()
	return &Handler{
		svc: svc,
	}
}

// registerTagNames makes validator errors report json field names instead of
// Go struct field names.
func registerTagNames() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	v1 := r.Group("/api/v1")
	v1.GET("/health", h.health)

	authed := v1.Group("", auth)

	authed.GET("/disasters", h.listDisasters)
	authed.GET("/disasters/map", h.disasterMap)
	authed.POST("/disasters", h.createDisaster)
	authed.GET("/disasters/:id", h.getDisaster)
	authed.PUT("/disasters/:id", h.updateDisaster)
	authed.PUT("/disasters/:id/cancel", h.cancelDisaster)

	authed.GET("/disasters/:id/volunteers", h.listVolunteers)
	authed.POST("/disasters/:id/volunteers", h.assignVolunteer)
	authed.DELETE("/disasters/:id/volunteers/:volunteerId", h.removeVolunteer)

	authed.GET("/disasters/:id/reports", h.listReports)
	authed.POST("/disasters/:id/reports", h.createReport)
	authed.GET("/disasters/:id/reports/:reportId", h.getReport)
	authed.PUT("/disasters/:id/reports/:reportId", h.updateReport)
	authed.DELETE("/disasters/:id/reports/:reportId", h.deleteReport)

	authed.GET("/disasters/:id/victims", h.listVictims)
	authed.POST("/disasters/:id/victims", h.createVictim)
	authed.GET("/disasters/:id/victims/:victimId", h.getVictim)
	authed.PUT("/disasters/:id/victims/:victimId", h.updateVictim)
	authed.DELETE("/disasters/:id/victims/:victimId", h.deleteVictim)

	authed.GET("/disasters/:id/aids", h.listAids)
	authed.POST("/disasters/:id/aids", h.createAid)
	authed.GET("/disasters/:id/aids/:aidId", h.getAid)
	authed.PUT("/disasters/:id/aids/:aidId", h.updateAid)
	authed.DELETE("/disasters/:id/aids/:aidId", h.deleteAid)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
