// README: Travel plan handlers (create and revise). Always 200 with a plan.Response body.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"atlas/internal/plan"
)

// TravelPlanner is the travel pipeline.
type TravelPlanner interface {
	MakePlan(ctx context.Context, input string, options int) *plan.Response
	ChangePlan(ctx context.Context, instruction, olddata string) *plan.Response
}

type TravelHandler struct {
	planner TravelPlanner
	timeout time.Duration
}

func NewTravelHandler(planner TravelPlanner, timeout time.Duration) *TravelHandler {
	return &TravelHandler{planner: planner, timeout: timeout}
}

type makePlanReq struct {
	Input   string `json:"input"`
	Options int    `json:"options" binding:"omitempty,min=1,max=3"`
}

type changePlanReq struct {
	Input   *string `json:"input"`
	OldData string  `json:"olddata"`
}

// MakePlan handles POST /makeplan.
func (h *TravelHandler) MakePlan(c *gin.Context) {
	var req makePlanReq
	if !bindJSON(c, &req) {
		return
	}
	if req.Options == 0 {
		req.Options = 1
	}

	ctx, cancel := withDeadline(c, h.timeout)
	defer cancel()

	writeJSON(c, http.StatusOK, h.planner.MakePlan(ctx, req.Input, req.Options))
}

// ChangePlan handles POST /changeplan.
func (h *TravelHandler) ChangePlan(c *gin.Context) {
	var req changePlanReq
	if !bindJSON(c, &req) {
		return
	}
	instruction := ""
	if req.Input != nil {
		instruction = *req.Input
	}

	ctx, cancel := withDeadline(c, h.timeout)
	defer cancel()

	writeJSON(c, http.StatusOK, h.planner.ChangePlan(ctx, instruction, req.OldData))
}
