package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"travelplanner/database"
	"travelplanner/planner"
	"travelplanner/services"

	"github.com/gin-gonic/gin"
)

// PlanBuilder is the part of the planner the HTTP layer needs.
type PlanBuilder interface {
	BuildPlan(ctx context.Context, req planner.TripRequest, toggles []planner.PanelToggle) (*planner.Plan, error)
}

type Handler struct {
	planner PlanBuilder
	store   database.Store
	pdfFont string
}

// New builds the handlers. pdfFont may be empty to use the default fonts.
func New(p PlanBuilder, store database.Store, pdfFont string) *Handler {
	return &Handler{planner: p, store: store, pdfFont: pdfFont}
}

// Register mounts every route under /api.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/panels", h.Panels)
		api.POST("/plan", h.CreatePlan)
		api.GET("/plans", h.ListPlans)
		api.GET("/plans/:id", h.GetPlan)
		api.POST("/plans/:id/pdf", h.GeneratePDF)
		api.GET("/download/:id", h.Download)
	}
}

func (h *Handler) Health(c *gin.Context) {
	dbStatus := "ok"
	if h.store == nil {
		dbStatus = "not initialized"
	} else if err := h.store.Ping(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "Travel Planner API",
		"database": dbStatus,
	})
}

func (h *Handler) Panels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"panels": planner.Registry()})
}

// respondError maps planner and storage errors onto HTTP statuses.
func respondError(c *gin.Context, err error, fallback string) {
	var perr *services.Error
	switch {
	case errors.As(err, &perr) && perr.Kind == services.InvalidInput:
		c.JSON(http.StatusBadRequest, gin.H{"error": perr.Detail, "kind": perr.Kind})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
	default:
		log.Printf("❌ %s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
