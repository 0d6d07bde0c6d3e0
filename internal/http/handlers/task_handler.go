// README: Task planning handler (intent gating, feasibility headers, strict or soft mode).
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"atlas/internal/plan"
	"atlas/internal/service"
)

const (
	HeaderPlanFeasible   = "X-Plan-Feasible"
	HeaderPlanDifficulty = "X-Plan-Difficulty"
	HeaderPlanWarnings   = "X-Plan-Warnings"

	maxWarningsHeader = 512
)

var (
	inputExamples = []string{
		"Plan my weekly sales presentation, I present this Friday",
		"Plan my math exam revision within 10 days",
		"Build a 4-week workout schedule focused on fat loss",
	}
	clarifyHints = []string{
		"What is the goal or topic to plan?",
		"What is the start and end date, or the deadline?",
		"Any key constraints (budget, resources, channels)?",
	}
	feasibilityHints = []string{
		"Give a clear date range (YYYY-MM-DD) with start_date <= end_date",
		"Keep the number of subtasks between 3 and 10",
		"Fill in every empty or placeholder detail",
	}
)

// TaskPlanner is the task pipeline.
type TaskPlanner interface {
	Plan(ctx context.Context, req service.TaskRequest) (*plan.TaskResponse, error)
}

type TaskHandler struct {
	planner     TaskPlanner
	softDefault bool
	timeout     time.Duration
}

func NewTaskHandler(planner TaskPlanner, softDefault bool, timeout time.Duration) *TaskHandler {
	return &TaskHandler{planner: planner, softDefault: softDefault, timeout: timeout}
}

type taskPlanReq struct {
	Input          string  `json:"input"`
	TargetLanguage *string `json:"target_language"`
}

// Plan handles POST /plan.
func (h *TaskHandler) Plan(c *gin.Context) {
	var req taskPlanReq
	if !bindJSON(c, &req) {
		return
	}
	allowSoft := h.softDefault
	if raw := c.Query("allow_soft"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "allow_soft must be a boolean")
			return
		}
		allowSoft = v
	}
	lang := ""
	if req.TargetLanguage != nil {
		lang = strings.TrimSpace(*req.TargetLanguage)
	}

	ctx, cancel := withDeadline(c, h.timeout)
	defer cancel()

	resp, err := h.planner.Plan(ctx, service.TaskRequest{Input: req.Input, Language: lang, AllowSoft: allowSoft})
	if resp != nil {
		setFeasibilityHeaders(c, resp.Feasibility)
	}
	if err != nil {
		writeTaskError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}

func setFeasibilityHeaders(c *gin.Context, f plan.Feasibility) {
	c.Header(HeaderPlanFeasible, strconv.FormatBool(f.Feasible))
	c.Header(HeaderPlanDifficulty, string(f.Difficulty))
	if len(f.Warnings) > 0 {
		c.Header(HeaderPlanWarnings, truncate(strings.Join(f.Warnings, "; "), maxWarningsHeader))
	}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func writeTaskError(c *gin.Context, err error) {
	perr, ok := service.AsPipelineError(err)
	if !ok {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	switch perr.Kind {
	case service.KindInput:
		writeJSON(c, http.StatusUnprocessableEntity, gin.H{
			"error":    "invalid_input",
			"message":  "The request is unclear. Describe what you want planned with a rough timeframe or deadline.",
			"examples": inputExamples,
		})
	case service.KindIntentRejected:
		if perr.Intent == plan.IntentUnsafe {
			writeJSON(c, http.StatusBadRequest, gin.H{
				"error":             "unsafe_content",
				"message":           "The request contains inappropriate content and cannot be processed.",
				"classifier_reason": perr.Reason,
			})
			return
		}
		writeJSON(c, http.StatusUnprocessableEntity, gin.H{
			"error":             "not_task_planning_or_incomplete",
			"message":           "The request is not clear enough to plan. Give a goal and a timeframe.",
			"classifier_reason": perr.Reason,
			"hints":             clarifyHints,
		})
	case service.KindUpstreamUnavailable:
		status := http.StatusServiceUnavailable
		if perr.Status == http.StatusTooManyRequests {
			status = http.StatusTooManyRequests
		}
		writeJSON(c, status, gin.H{
			"error":   "upstream_unavailable",
			"message": "The model service is unavailable. Please try again later.",
		})
	case service.KindUpstream:
		writeJSON(c, http.StatusBadGateway, gin.H{
			"error":   "upstream_error",
			"message": "Model service error",
		})
	case service.KindSchemaInvalid:
		writeError(c, http.StatusInternalServerError, perr.Message)
	case service.KindFeasibilityRejected:
		writeJSON(c, http.StatusUnprocessableEntity, gin.H{
			"error":   "plan_infeasible",
			"message": "This plan does not meet the minimum criteria. Please correct the details.",
			"reasons": perr.Reasons,
			"hints":   feasibilityHints,
		})
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
