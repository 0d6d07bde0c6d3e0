package ai

import "github.com/google/generative-ai-go/genai"

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func nullable(s *genai.Schema) *genai.Schema {
	s.Nullable = true
	return s
}

func enum(desc string, values ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Format: "enum", Enum: values, Description: desc}
}

func object(required []string, props map[string]*genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

func array(items *genai.Schema, desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: items, Description: desc}
}

// CheckSchema constrains the travel intent gate.
var CheckSchema = object([]string{"intent", "description"}, map[string]*genai.Schema{
	"intent": enum("travel_reasonable when the request is a feasible trip in Thailand, "+
		"travel_unreasonable when travel related but impractical or abroad, not_travel otherwise",
		"travel_reasonable", "travel_unreasonable", "not_travel"),
	"description": str("One sentence explaining the decision"),
})

func placeSchema() *genai.Schema {
	return object([]string{"type", "name", "short_description"}, map[string]*genai.Schema{
		"type":                    enum("Place kind", "lodging", "attraction", "dining", "other"),
		"name":                    str("Specific real proper name, never a generic phrase such as 'a local cafe'"),
		"short_description":       str("1-2 sentence highlight"),
		"notes":                   nullable(str("How to get here from the previous stop, tips")),
		"opening_hours":           nullable(str("Opening hours, e.g. 'Mon-Sun 10:00-18:00'")),
		"price_info":              nullable(str("Entry fee or price range in THB")),
		"reservation_recommended": nullable(&genai.Schema{Type: genai.TypeBoolean}),
		"coordinates": nullable(object([]string{"lat", "lng"}, map[string]*genai.Schema{
			"lat": {Type: genai.TypeNumber},
			"lng": {Type: genai.TypeNumber},
		})),
		"google_maps_url": nullable(str("Always null; filled by the system")),
		"image_url":       nullable(array(str(""), "Always null; filled by the system")),
		"isnewplan":       nullable(enum("Revision marker", "new_plan", "old_plan", "plan_warnings")),
		"des_warnings":    nullable(str("Warning about this place")),
	})
}

// PlanSchema constrains plan creation and revision.
var PlanSchema = func() *genai.Schema {
	stop := object([]string{"order_in_day", "places"}, map[string]*genai.Schema{
		"order_in_day":  {Type: genai.TypeInteger, Description: "Starts at 1, increasing by time"},
		"places":        placeSchema(),
		"start_time":    nullable(str("HH:MM local time")),
		"stay_duration": nullable(&genai.Schema{Type: genai.TypeInteger, Description: "Minutes"}),
	})
	day := object([]string{"day_index", "summary", "stops"}, map[string]*genai.Schema{
		"day_index": {Type: genai.TypeInteger, Description: "First day is 1"},
		"summary":   nullable(str("Theme or main area of the day")),
		"stops":     array(stop, "Activities in time order"),
	})
	option := object([]string{"name", "overview", "style", "itinerary"}, map[string]*genai.Schema{
		"name":         nullable(str("Trip title")),
		"overview":     nullable(str("2-3 sentence overview")),
		"budget_price": nullable(&genai.Schema{Type: genai.TypeNumber, Description: "Estimated total THB"}),
		"style":        nullable(str("e.g. leisure, adventure")),
		"itinerary":    array(day, "Daily plan"),
		"warnings":     nullable(array(str(""), "Trip-level warnings")),
	})
	return object([]string{"status", "description", "plan_output", "hotel_output"}, map[string]*genai.Schema{
		"status":       enum("Outcome", "success", "error"),
		"description":  str("Summary, or the reason on error"),
		"plan_output":  nullable(array(option, "Plan options in recommended order")),
		"hotel_output": nullable(array(array(placeSchema(), "Hotels for the option at the same index"), "")),
	})
}()

// TaskSchema constrains the combined task classify-and-plan call.
var TaskSchema = object([]string{"intent", "confidence", "reason", "plan"}, map[string]*genai.Schema{
	"intent":     enum("Intent label", "TASK_PLANNING", "NOT_TASK_PLANNING", "INCOMPLETE", "UNSAFE"),
	"confidence": {Type: genai.TypeNumber, Description: "Number in [0,1]"},
	"reason":     str("Short explanation of the intent decision"),
	"plan": nullable(object([]string{"task_name", "start_date", "end_date", "priority", "subtasks"}, map[string]*genai.Schema{
		"task_name":  str("Main heading of the plan"),
		"start_date": str("YYYY-MM-DD"),
		"end_date":   str("YYYY-MM-DD"),
		"priority":   enum("Urgency", "Low", "Medium", "High"),
		"subtasks": array(object([]string{"name", "description"}, map[string]*genai.Schema{
			"name":        str("Subtask name"),
			"description": str("Steps or details"),
		}), "3-10 subtasks"),
	})),
})
