package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"travelplanner/services"

	"github.com/gin-gonic/gin"
)

type PDFRequest struct {
	TravelerName string `json:"traveler_name"`
}

type PDFResponse struct {
	PlanID  string `json:"plan_id"`
	PDFURL  string `json:"pdf_url"`
	Message string `json:"message"`
}

func (h *Handler) GeneratePDF(c *gin.Context) {
	var req PDFRequest
	// Body is optional, and may arrive chunked with no Content-Length.
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
	}

	ctx := c.Request.Context()
	rec, err := h.store.GetPlan(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load plan")
		return
	}
	plan, err := decodePlan(rec)
	if err != nil {
		respondError(c, err, "Failed to parse stored plan")
		return
	}

	doc := services.PlanPDF{
		TravelerName: req.TravelerName,
		Destination:  plan.Request.Destination,
		NumDays:      plan.Request.NumDays,
		Budget:       string(plan.Request.Budget),
		Currency:     plan.Request.CurrencyCode,
		Summary:      plan.Summary,
		GeneratedAt:  time.Now(),
		FontPath:     h.pdfFont,
	}
	for _, s := range plan.Sections {
		doc.Sections = append(doc.Sections, services.PDFSection{Heading: s.Heading, Body: s.Body})
	}
	if plan.Map != nil {
		doc.Map = &services.Coordinates{Lat: plan.Map.Lat, Lon: plan.Map.Lon, DisplayName: plan.Map.Label}
	}

	pdfBytes, err := services.GeneratePlanPDF(doc)
	if err != nil {
		respondError(c, err, "Failed to generate PDF")
		return
	}
	if err := h.store.UpdatePlanPDF(ctx, rec.ID, pdfBytes, req.TravelerName); err != nil {
		respondError(c, err, "Failed to save generated PDF")
		return
	}

	log.Printf("✅ PDF generated for plan %s (%d bytes)", rec.ID, len(pdfBytes))
	c.JSON(http.StatusOK, PDFResponse{
		PlanID:  rec.ID,
		PDFURL:  "/api/download/" + rec.ID,
		Message: "Your travel plan PDF is ready!",
	})
}

func (h *Handler) Download(c *gin.Context) {
	rec, err := h.store.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load plan")
		return
	}

	if len(rec.PDFData) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "PDF has not been generated for this plan"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=travel-plan.pdf")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", rec.PDFData)
}
