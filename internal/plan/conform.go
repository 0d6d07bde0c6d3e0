// README: Post-decode normalization of travel responses.
package plan

import (
	"fmt"
	"sort"
)

// MaxHotelsPerOption caps each hotel list.
const MaxHotelsPerOption = 3

// Conform enforces the shape rules the model is only asked to follow:
// the option count, one hotel list per option, lodging kept out of stops
// and only lodging in hotel lists, and order_in_day numbered from 1.
// When exact is true the response must carry exactly want options;
// otherwise it may carry up to want (including none).
func (r *Response) Conform(want int, exact bool) error {
	if r.Status != StatusSuccess {
		return nil
	}
	if len(r.PlanOutput) > want {
		r.PlanOutput = r.PlanOutput[:want]
	}
	if exact && len(r.PlanOutput) != want {
		return &ValidationError{
			Contract: r.ContractName(),
			Problems: []string{fmt.Sprintf("plan_output has %d options, want %d", len(r.PlanOutput), want)},
		}
	}
	if r.PlanOutput == nil {
		r.PlanOutput = []Option{}
	}

	hotels := make([][]Place, len(r.PlanOutput))
	for i := range hotels {
		var list []Place
		if i < len(r.HotelOutput) {
			for _, h := range r.HotelOutput[i] {
				if h.Type == KindLodging {
					list = append(list, h)
				}
			}
		}
		hotels[i] = list
	}

	for i := range r.PlanOutput {
		for j := range r.PlanOutput[i].Itinerary {
			day := &r.PlanOutput[i].Itinerary[j]
			kept := make([]Stop, 0, len(day.Stops))
			for _, s := range day.Stops {
				if s.Places.Type == KindLodging {
					hotels[i] = appendHotel(hotels[i], s.Places)
					continue
				}
				kept = append(kept, s)
			}
			sort.SliceStable(kept, func(a, b int) bool { return kept[a].OrderInDay < kept[b].OrderInDay })
			for k := range kept {
				kept[k].OrderInDay = k + 1
			}
			day.Stops = kept
		}
		if len(hotels[i]) > MaxHotelsPerOption {
			hotels[i] = hotels[i][:MaxHotelsPerOption]
		}
		if hotels[i] == nil {
			hotels[i] = []Place{}
		}
	}
	r.HotelOutput = hotels
	return nil
}

func appendHotel(list []Place, p Place) []Place {
	for _, h := range list {
		if h.Name == p.Name {
			return list
		}
	}
	return append(list, p)
}
