// README: Travel itinerary contract (response, options, days, stops, places).
package plan

// Status is the outcome marker carried by every travel response.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Kind classifies a place. Lodging only ever appears in hotel lists.
type Kind string

const (
	KindLodging    Kind = "lodging"
	KindAttraction Kind = "attraction"
	KindDining     Kind = "dining"
	KindOther      Kind = "other"
)

func (k Kind) valid() bool {
	switch k {
	case KindLodging, KindAttraction, KindDining, KindOther:
		return true
	}
	return false
}

// Origin tells the enricher whether a place still needs external lookups.
type Origin string

const (
	OriginNew     Origin = "new_plan"
	OriginCarried Origin = "old_plan"
	OriginFlagged Origin = "plan_warnings"
)

func (o Origin) valid() bool {
	switch o {
	case OriginNew, OriginCarried, OriginFlagged:
		return true
	}
	return false
}

// Coordinates are WGS84 degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a named real-world entity inside a plan.
type Place struct {
	// Type is one of lodging, attraction, dining, other.
	Type Kind `json:"type"`

	// Name is a proper name and doubles as identity across revisions.
	Name string `json:"name"`

	ShortDescription       string  `json:"short_description"`
	Notes                  *string `json:"notes"`
	OpeningHours           *string `json:"opening_hours"`
	PriceInfo              *string `json:"price_info"`
	ReservationRecommended *bool   `json:"reservation_recommended"`

	// Filled by enrichment, never trusted from the model.
	Coordinates   *Coordinates `json:"coordinates"`
	GoogleMapsURL *string      `json:"google_maps_url"`
	ImageURL      []string     `json:"image_url"`

	IsNewPlan   *Origin `json:"isnewplan"`
	DesWarnings *string `json:"des_warnings"`
}

// NeedsEnrichment reports whether the place is new or untagged.
func (p *Place) NeedsEnrichment() bool {
	return p.IsNewPlan == nil || *p.IsNewPlan == OriginNew
}

// Stop is one activity within a day.
type Stop struct {
	OrderInDay   int     `json:"order_in_day"`
	Places       Place   `json:"places"`
	StartTime    *string `json:"start_time"`
	StayDuration *int    `json:"stay_duration"`
}

// Day groups the stops of a single trip day.
type Day struct {
	DayIndex int     `json:"day_index"`
	Summary  *string `json:"summary"`
	Stops    []Stop  `json:"stops"`
}

// Option is one complete alternative itinerary.
type Option struct {
	Name        *string  `json:"name"`
	Overview    *string  `json:"overview"`
	BudgetPrice *float64 `json:"budget_price"`
	Style       *string  `json:"style"`
	Itinerary   []Day    `json:"itinerary"`
	Warnings    []string `json:"warnings"`
}

// Response is the travel planner output. On error both lists are null.
type Response struct {
	Status      Status    `json:"status"`
	Description string    `json:"description"`
	PlanOutput  []Option  `json:"plan_output"`
	HotelOutput [][]Place `json:"hotel_output"`
}

// ErrorResponse builds an error-shaped response.
func ErrorResponse(description string) *Response {
	return &Response{Status: StatusError, Description: description}
}

// CheckIntent is the travel intent label set.
type CheckIntent string

const (
	IntentTravelReasonable   CheckIntent = "travel_reasonable"
	IntentTravelUnreasonable CheckIntent = "travel_unreasonable"
	IntentNotTravel          CheckIntent = "not_travel"
)

// CheckResult is the travel intent gate decision.
type CheckResult struct {
	Intent      CheckIntent `json:"intent"`
	Description string      `json:"description"`
}

// Plannable reports whether the pipeline may continue.
func (c CheckResult) Plannable() bool {
	return c.Intent == IntentTravelReasonable
}

// EachPlace calls fn for every place in stops and hotel lists.
func (r *Response) EachPlace(fn func(p *Place)) {
	for i := range r.PlanOutput {
		for j := range r.PlanOutput[i].Itinerary {
			day := &r.PlanOutput[i].Itinerary[j]
			for k := range day.Stops {
				fn(&day.Stops[k].Places)
			}
		}
	}
	for i := range r.HotelOutput {
		for j := range r.HotelOutput[i] {
			fn(&r.HotelOutput[i][j])
		}
	}
}
