package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"travelplanner/database"
	"travelplanner/middleware"
	"travelplanner/planner"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// PlanRequest is the body of POST /api/plan. An omitted num_days means
// planner.DefaultNumDays; an explicit 0 is rejected.
type PlanRequest struct {
	Destination string                `json:"destination"`
	NumDays     *int                  `json:"num_days"`
	Budget      string                `json:"budget"`
	Currency    string                `json:"currency"`
	Panels      []planner.PanelToggle `json:"panels"`
}

type PlanResponse struct {
	*planner.Plan
	HasPDF       bool   `json:"has_pdf"`
	TravelerName string `json:"traveler_name,omitempty"`
}

type PlanSummary struct {
	PlanID      string    `json:"plan_id"`
	Destination string    `json:"destination"`
	NumDays     int       `json:"num_days"`
	Budget      string    `json:"budget"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *Handler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if req.Budget == "" {
		req.Budget = string(planner.BudgetMid)
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}
	numDays := planner.DefaultNumDays
	if req.NumDays != nil {
		numDays = *req.NumDays
	}
	for _, t := range req.Panels {
		if _, ok := planner.LookupPanel(t.Key); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown panel %q", t.Key)})
			return
		}
	}

	trip, err := planner.NewTripRequest(req.Destination, numDays, req.Budget, req.Currency)
	if err != nil {
		respondError(c, err, "Failed to build plan")
		return
	}

	plan, err := h.planner.BuildPlan(c.Request.Context(), trip, req.Panels)
	if err != nil {
		respondError(c, err, "Failed to build plan")
		return
	}
	plan.ID = uuid.New().String()

	planJSON, err := json.Marshal(plan)
	if err != nil {
		respondError(c, err, "Failed to encode plan")
		return
	}
	rec := &database.PlanRecord{
		ID:          plan.ID,
		Destination: trip.Destination,
		NumDays:     trip.NumDays,
		Budget:      string(trip.Budget),
		Currency:    trip.CurrencyCode,
		PlanJSON:    string(planJSON),
		CreatedAt:   plan.CreatedAt,
	}
	if err := h.store.SavePlan(c.Request.Context(), rec); err != nil {
		respondError(c, fmt.Errorf("save plan %s: %w", plan.ID, err), "Failed to save plan")
		return
	}

	log.Printf("✅ Plan %s for %s ready (%d sections, request_id=%s)",
		plan.ID, trip.Destination, len(plan.Sections), middleware.GetRequestID(c))
	c.JSON(http.StatusOK, plan)
}

func (h *Handler) GetPlan(c *gin.Context) {
	rec, err := h.store.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load plan")
		return
	}

	plan, err := decodePlan(rec)
	if err != nil {
		respondError(c, err, "Failed to parse stored plan")
		return
	}
	c.JSON(http.StatusOK, PlanResponse{
		Plan:         plan,
		HasPDF:       len(rec.PDFData) > 0,
		TravelerName: rec.TravelerName,
	})
}

func (h *Handler) ListPlans(c *gin.Context) {
	limit := defaultListLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxListLimit)
	}

	recs, err := h.store.ListRecentPlans(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "Failed to list plans")
		return
	}

	out := make([]PlanSummary, 0, len(recs))
	for _, r := range recs {
		out = append(out, PlanSummary{
			PlanID:      r.ID,
			Destination: r.Destination,
			NumDays:     r.NumDays,
			Budget:      r.Budget,
			Currency:    r.Currency,
			CreatedAt:   r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"plans": out})
}

func decodePlan(rec *database.PlanRecord) (*planner.Plan, error) {
	var plan planner.Plan
	if err := json.Unmarshal([]byte(rec.PlanJSON), &plan); err != nil {
		return nil, fmt.Errorf("decode plan %s: %w", rec.ID, err)
	}
	plan.ID = rec.ID
	return &plan, nil
}
