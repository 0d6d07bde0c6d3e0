// README: Strict decoding and contract validation for model output.
package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyPayload is returned when there is nothing to decode.
var ErrEmptyPayload = errors.New("plan: empty payload")

// Contract is implemented by every decodable output shape.
type Contract interface {
	ContractName() string
	Validate() error
	requiredKeys() shape
}

// ValidationError lists every shape problem found in a payload.
type ValidationError struct {
	Contract string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("plan: %s invalid: %s", e.Contract, strings.Join(e.Problems, "; "))
}

// Decode parses raw into dst, rejecting unknown fields, missing required
// keys and trailing data, then runs dst.Validate.
func Decode(raw []byte, dst Contract) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ErrEmptyPayload
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &ValidationError{Contract: dst.ContractName(), Problems: []string{err.Error()}}
	}
	if dec.More() {
		return &ValidationError{Contract: dst.ContractName(), Problems: []string{"trailing data after object"}}
	}
	p := &problems{contract: dst.ContractName()}
	checkRequired(p, raw, dst.requiredKeys())
	if err := p.err(); err != nil {
		return err
	}
	return dst.Validate()
}

type problems struct {
	contract string
	list     []string
}

func (p *problems) addf(format string, args ...any) {
	p.list = append(p.list, fmt.Sprintf(format, args...))
}

func (p *problems) err() error {
	if len(p.list) == 0 {
		return nil
	}
	return &ValidationError{Contract: p.contract, Problems: p.list}
}

func (r *Response) ContractName() string { return "Plan" }

func (r *Response) requiredKeys() shape { return responseShape }

// Validate checks enums and structural bounds of the response tree.
func (r *Response) Validate() error {
	p := &problems{contract: r.ContractName()}
	switch r.Status {
	case StatusSuccess, StatusError:
	default:
		p.addf("status %q not in [success error]", r.Status)
	}
	for i, opt := range r.PlanOutput {
		for j, day := range opt.Itinerary {
			if day.DayIndex < 1 {
				p.addf("plan_output[%d].itinerary[%d].day_index must be >= 1", i, j)
			}
			if day.Stops == nil {
				p.addf("plan_output[%d].itinerary[%d].stops missing", i, j)
			}
			for k, stop := range day.Stops {
				path := fmt.Sprintf("plan_output[%d].itinerary[%d].stops[%d]", i, j, k)
				if stop.OrderInDay < 1 {
					p.addf("%s.order_in_day must be >= 1", path)
				}
				if stop.StayDuration != nil && *stop.StayDuration < 0 {
					p.addf("%s.stay_duration must not be negative", path)
				}
				validatePlace(p, path+".places", &stop.Places)
			}
		}
	}
	for i, hotels := range r.HotelOutput {
		for j := range hotels {
			validatePlace(p, fmt.Sprintf("hotel_output[%d][%d]", i, j), &hotels[j])
		}
	}
	return p.err()
}

func validatePlace(p *problems, path string, pl *Place) {
	if !pl.Type.valid() {
		p.addf("%s.type %q not in [lodging attraction dining other]", path, pl.Type)
	}
	if strings.TrimSpace(pl.Name) == "" {
		p.addf("%s.name is empty", path)
	}
	if pl.IsNewPlan != nil && !pl.IsNewPlan.valid() {
		p.addf("%s.isnewplan %q not in [new_plan old_plan plan_warnings]", path, *pl.IsNewPlan)
	}
	if c := pl.Coordinates; c != nil {
		if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
			p.addf("%s.coordinates out of range", path)
		}
	}
}

func (c *CheckResult) ContractName() string { return "CheckResult" }

func (c *CheckResult) requiredKeys() shape { return checkShape }

func (c *CheckResult) Validate() error {
	p := &problems{contract: c.ContractName()}
	switch c.Intent {
	case IntentTravelReasonable, IntentTravelUnreasonable, IntentNotTravel:
	default:
		p.addf("intent %q not in [travel_reasonable travel_unreasonable not_travel]", c.Intent)
	}
	if strings.TrimSpace(c.Description) == "" {
		p.addf("description is empty")
	}
	return p.err()
}

func (t *TaskIntent) ContractName() string { return "TaskIntent" }

func (t *TaskIntent) requiredKeys() shape { return taskIntentShape }

func (t *TaskIntent) Validate() error {
	p := &problems{contract: t.ContractName()}
	switch t.Intent {
	case IntentTaskPlanning, IntentNotTaskPlanning, IntentIncomplete, IntentUnsafe:
	default:
		p.addf("intent %q not in [TASK_PLANNING NOT_TASK_PLANNING INCOMPLETE UNSAFE]", t.Intent)
	}
	if t.Confidence < 0 || t.Confidence > 1 {
		p.addf("confidence %.2f outside [0,1]", t.Confidence)
	}
	if t.Plan != nil {
		switch t.Plan.Priority {
		case PriorityLow, PriorityMedium, PriorityHigh:
		default:
			p.addf("plan.priority %q not in [Low Medium High]", t.Plan.Priority)
		}
		if t.Plan.Subtasks == nil {
			p.addf("plan.subtasks missing")
		}
	}
	return p.err()
}

func (f *Feasibility) ContractName() string { return "Feasibility" }

func (f *Feasibility) requiredKeys() shape { return feasibilityShape }

func (f *Feasibility) Validate() error {
	p := &problems{contract: f.ContractName()}
	switch f.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyImpossible:
	default:
		p.addf("difficulty %q not in [EASY MEDIUM HARD IMPOSSIBLE]", f.Difficulty)
	}
	if f.Feasible && f.Difficulty == DifficultyImpossible {
		p.addf("feasible plan cannot be IMPOSSIBLE")
	}
	return p.err()
}
