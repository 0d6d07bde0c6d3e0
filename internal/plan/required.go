package plan

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// shape lists the keys an object must carry. Keys in required must be
// present and non-null, keys in present must exist but may be null. nested
// describes values below a key; arrays are walked element by element.
type shape struct {
	required []string
	present  []string
	nested   map[string]shape
}

var (
	placeShape = shape{required: []string{"type", "name", "short_description"}}

	responseShape = shape{
		required: []string{"status", "description"},
		present:  []string{"plan_output", "hotel_output"},
		nested: map[string]shape{
			"plan_output": {
				required: []string{"itinerary"},
				present:  []string{"name", "overview", "style"},
				nested: map[string]shape{
					"itinerary": {
						required: []string{"day_index", "stops"},
						present:  []string{"summary"},
						nested: map[string]shape{
							"stops": {
								required: []string{"order_in_day", "places"},
								nested:   map[string]shape{"places": placeShape},
							},
						},
					},
				},
			},
			"hotel_output": placeShape,
		},
	}

	checkShape = shape{required: []string{"intent", "description"}}

	taskIntentShape = shape{
		required: []string{"intent", "confidence", "reason"},
		present:  []string{"plan"},
		nested: map[string]shape{
			"plan": {
				required: []string{"task_name", "start_date", "end_date", "priority", "subtasks"},
				nested: map[string]shape{
					"subtasks": {required: []string{"name", "description"}},
				},
			},
		},
	}

	feasibilityShape = shape{required: []string{"feasible", "difficulty"}}
)

// checkRequired reports every missing key of raw against s.
func checkRequired(p *problems, raw []byte, s shape) {
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		p.addf("%v", err)
		return
	}
	walkShape(p, "", tree, s)
}

func walkShape(p *problems, path string, v any, s shape) {
	switch val := v.(type) {
	case []any:
		for i, elem := range val {
			walkShape(p, fmt.Sprintf("%s[%d]", path, i), elem, s)
		}
	case map[string]any:
		for _, key := range s.required {
			if child, ok := val[key]; !ok || child == nil {
				p.addf("%s is required", join(path, key))
			}
		}
		for _, key := range s.present {
			if _, ok := val[key]; !ok {
				p.addf("%s is required (null allowed)", join(path, key))
			}
		}
		for _, key := range slices.Sorted(maps.Keys(s.nested)) {
			if child, ok := val[key]; ok && child != nil {
				walkShape(p, join(path, key), child, s.nested[key])
			}
		}
	case nil:
	default:
		if path == "" {
			p.addf("payload is not an object")
		}
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
