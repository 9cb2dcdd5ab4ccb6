package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mr1hm/go-disaster-response/internal/models"
	"github.com/mr1hm/go-disaster-response/internal/service"
)

// Reports

type createReportRequest struct {
	Title        string `json:"title" binding:"required,max=45"`
	Description  string `json:"description" binding:"required"`
	IsFinalStage bool   `json:"is_final_stage"`
}

type updateReportRequest struct {
	Title        *string `json:"title" binding:"omitempty,max=45"`
	Description  *string `json:"description"`
	IsFinalStage *bool   `json:"is_final_stage"`
}

func (h *Handler) createReport(c *gin.Context) {
	var req createReportRequest
	if !bindJSON(c, &req) {
		return
	}

	r, err := h.svc.CreateReport(c.Request.Context(), callerID(c), c.Param("id"), service.ReportInput{
		Title:        req.Title,
		Description:  req.Description,
		IsFinalStage: req.IsFinalStage,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Disaster report created successfully.",
		"data":    reportJSON(r),
	})
}

func (h *Handler) getReport(c *gin.Context) {
	r, err := h.svc.GetReport(c.Request.Context(), callerID(c), c.Param("id"), c.Param("reportId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reportJSON(r)})
}

func (h *Handler) listReports(c *gin.Context) {
	reports, err := h.svc.ListReports(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	data := make([]gin.H, 0, len(reports))
	for i := range reports {
		data = append(data, reportJSON(&reports[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (h *Handler) updateReport(c *gin.Context) {
	var req updateReportRequest
	if !bindJSON(c, &req) {
		return
	}

	r, err := h.svc.UpdateReport(c.Request.Context(), callerID(c), c.Param("id"), c.Param("reportId"), service.ReportUpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		IsFinalStage: req.IsFinalStage,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Disaster report updated successfully.",
		"data":    reportJSON(r),
	})
}

func (h *Handler) deleteReport(c *gin.Context) {
	if err := h.svc.DeleteReport(c.Request.Context(), callerID(c), c.Param("id"), c.Param("reportId")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Disaster report deleted successfully."})
}

func reportJSON(r *models.Report) gin.H {
	return gin.H{
		"id":             r.ID,
		"disaster_id":    r.DisasterID,
		"reported_by":    r.ReportedBy,
		"title":          r.Title,
		"description":    r.Description,
		"is_final_stage": r.IsFinalStage,
		"created_at":     r.CreatedAt.Format(timestampLayout),
		"updated_at":     r.UpdatedAt.Format(timestampLayout),
	}
}

// Victims

type createVictimRequest struct {
	NIK         string `json:"nik" binding:"required,max=45"`
	Name        string `json:"name" binding:"required,max=45"`
	DateOfBirth string `json:"date_of_birth" binding:"required,datetime=2006-01-02"`
	Gender      *bool  `json:"gender" binding:"required"`
	ContactInfo string `json:"contact_info" binding:"omitempty,max=100"`
	Description string `json:"description"`
	IsEvacuated bool   `json:"is_evacuated"`
	Status      string `json:"status" binding:"required,oneof=minor_injury serious_injury deceased missing"`
}

type updateVictimRequest struct {
	NIK         *string `json:"nik" binding:"omitempty,max=45"`
	Name        *string `json:"name" binding:"omitempty,max=45"`
	DateOfBirth *string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Gender      *bool   `json:"gender"`
	ContactInfo *string `json:"contact_info" binding:"omitempty,max=100"`
	Description *string `json:"description"`
	IsEvacuated *bool   `json:"is_evacuated"`
	Status      *string `json:"status" binding:"omitempty,oneof=minor_injury serious_injury deceased missing"`
}

func (h *Handler) createVictim(c *gin.Context) {
	var req createVictimRequest
	if !bindJSON(c, &req) {
		return
	}

	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Validation failed",
			"errors":  gin.H{"date_of_birth": "date_of_birth must match the format 2006-01-02"},
		})
		return
	}

	v, err := h.svc.CreateVictim(c.Request.Context(), callerID(c), c.Param("id"), service.VictimInput{
		NIK:         req.NIK,
		Name:        req.Name,
		DateOfBirth: dob,
		Gender:      req.Gender,
		ContactInfo: req.ContactInfo,
		Description: req.Description,
		IsEvacuated: req.IsEvacuated,
		Status:      models.VictimStatus(req.Status),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Disaster victim created successfully.",
		"data":    victimJSON(v),
	})
}

func (h *Handler) getVictim(c *gin.Context) {
	v, err := h.svc.GetVictim(c.Request.Context(), callerID(c), c.Param("id"), c.Param("victimId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": victimJSON(v)})
}

func (h *Handler) listVictims(c *gin.Context) {
	victims, err := h.svc.ListVictims(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	data := make([]gin.H, 0, len(victims))
	for i := range victims {
		data = append(data, victimJSON(&victims[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (h *Handler) updateVictim(c *gin.Context) {
	var req updateVictimRequest
	if !bindJSON(c, &req) {
		return
	}

	in := service.VictimUpdateInput{
		NIK:         req.NIK,
		Name:        req.Name,
		Gender:      req.Gender,
		ContactInfo: req.ContactInfo,
		Description: req.Description,
		IsEvacuated: req.IsEvacuated,
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse(dateLayout, *req.DateOfBirth)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"message": "Validation failed",
				"errors":  gin.H{"date_of_birth": "date_of_birth must match the format 2006-01-02"},
			})
			return
		}
		in.DateOfBirth = &dob
	}
	if req.Status != nil {
		status := models.VictimStatus(*req.Status)
		in.Status = &status
	}

	v, err := h.svc.UpdateVictim(c.Request.Context(), callerID(c), c.Param("id"), c.Param("victimId"), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Disaster victim updated successfully.",
		"data":    victimJSON(v),
	})
}

func (h *Handler) deleteVictim(c *gin.Context) {
	if err := h.svc.DeleteVictim(c.Request.Context(), callerID(c), c.Param("id"), c.Param("victimId")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Disaster victim deleted successfully."})
}

func victimJSON(v *models.Victim) gin.H {
	return gin.H{
		"id":            v.ID,
		"disaster_id":   v.DisasterID,
		"reported_by":   v.ReportedBy,
		"nik":           v.NIK,
		"name":          v.Name,
		"date_of_birth": v.DateOfBirth.Format(dateLayout),
		"gender":        v.Gender,
		"contact_info":  v.ContactInfo,
		"description":   v.Description,
		"is_evacuated":  v.IsEvacuated,
		"status":        v.Status,
		"created_at":    v.CreatedAt.Format(timestampLayout),
		"updated_at":    v.UpdatedAt.Format(timestampLayout),
	}
}

// Aids

type createAidRequest struct {
	Title       string `json:"title" binding:"required,max=45"`
	Description string `json:"description"`
	Category    string `json:"category" binding:"required,oneof=food clothing housing"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	Unit        string `json:"unit" binding:"required,max=45"`
}

type updateAidRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=45"`
	Description *string `json:"description"`
	Category    *string `json:"category" binding:"omitempty,oneof=food clothing housing"`
	Quantity    *int    `json:"quantity" binding:"omitempty,min=1"`
	Unit        *string `json:"unit" binding:"omitempty,max=45"`
}

func (h *Handler) createAid(c *gin.Context) {
	var req createAidRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.CreateAid(c.Request.Context(), callerID(c), c.Param("id"), service.AidInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    models.AidCategory(req.Category),
		Quantity:    req.Quantity,
		Unit:        req.Unit,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Disaster aid created successfully.",
		"data":    aidJSON(a),
	})
}

func (h *Handler) getAid(c *gin.Context) {
	a, err := h.svc.GetAid(c.Request.Context(), callerID(c), c.Param("id"), c.Param("aidId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": aidJSON(a)})
}

func (h *Handler) listAids(c *gin.Context) {
	aids, err := h.svc.ListAids(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	data := make([]gin.H, 0, len(aids))
	for i := range aids {
		data = append(data, aidJSON(&aids[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (h *Handler) updateAid(c *gin.Context) {
	var req updateAidRequest
	if !bindJSON(c, &req) {
		return
	}

	in := service.AidUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
	}
	if req.Category != nil {
		category := models.AidCategory(*req.Category)
		in.Category = &category
	}

	a, err := h.svc.UpdateAid(c.Request.Context(), callerID(c), c.Param("id"), c.Param("aidId"), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Disaster aid updated successfully.",
		"data":    aidJSON(a),
	})
}

func (h *Handler) deleteAid(c *gin.Context) {
	if err := h.svc.DeleteAid(c.Request.Context(), callerID(c), c.Param("id"), c.Param("aidId")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Disaster aid deleted successfully."})
}

func aidJSON(a *models.Aid) gin.H {
	return gin.H{
		"id":          a.ID,
		"disaster_id": a.DisasterID,
		"reported_by": a.ReportedBy,
		"title":       a.Title,
		"description": a.Description,
		"category":    a.Category,
		"quantity":    a.Quantity,
		"unit":        a.Unit,
		"created_at":  a.CreatedAt.Format(timestampLayout),
		"updated_at":  a.UpdatedAt.Format(timestampLayout),
	}
}
