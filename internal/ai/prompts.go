package ai

import (
	"fmt"
	"strings"
)

const (
	// NoEvidence replaces an empty evidence digest in prompts.
	NoEvidence = "(no additional information from search)"

	// AutoFixInstruction replaces an empty revision instruction.
	AutoFixInstruction = "(auto-fix mode: no additional instruction)"
)

// CheckInstructions is the system instruction of the travel intent gate.
const CheckInstructions = `You classify the intent of a user's message on two axes:
1) Intent: is the message about travel, places or restaurants?
2) Validity: can it realistically be done?

Rules:
- Only travel within Thailand is supported.
- If no country is named, assume Thailand.
- If a foreign country is named, answer travel_unreasonable.
- Never produce a plan. Answer with intent and description only.

Examples:
- "3 days in Chiang Mai" -> travel_reasonable (feasible Chiang Mai trip)
- "Go to Mars tomorrow" -> travel_unreasonable (impossible)
- "Write me some Python" -> not_travel (unrelated)
- "Recommend a good restaurant" -> travel_reasonable (assumed Thailand)
- "I want to visit Paris" -> travel_unreasonable (not Thailand)`

// PlannerInstructions is the system instruction for plan creation.
const PlannerInstructions = `You are a one-shot travel planner. Answer only with JSON matching the response schema.

Requirements:
- Thailand only. Every place must be in Thailand.
- Answer in the language of the user (Thai or English). For any other language answer in Thai.
- Never put hotels in the itinerary. Hotels go only in hotel_output (1-3 per option, near the main area).
- Only include destinations and activities at a place. Never add "depart" or "travel to" stops.
- Record travel between stops in the notes of the next stop.

Logic:
- Order activities by opening hours, distance and rest time.
- Fill opening_hours, price_info and reservation_recommended only from reliable information, otherwise null.
- Add warnings when information may change or is seasonal.

Interpreting the request:
- If the user names a number of places, include exactly that many.
- Size the number of days to the number of places (2-3 places = 1 day, 4-6 places = 2 days).
- Never stretch a trip longer than the user wants.
- plan_output must contain exactly the requested number of options.

Defaults when unspecified: leisure style, popular places, public transport, 3-4 star hotels,
an estimated THB total in budget_price, and always 1-3 hotels per option.

System-filled fields: coordinates, google_maps_url and image_url must always be null.
Never invent facts. When unsure use null. Output nothing except JSON.`

// ReviseInstructions is the system instruction for plan revision.
const ReviseInstructions = `You revise and check Thailand travel plans. Answer only with JSON matching the response schema.

Input: (1) an edit instruction, possibly empty, and (2) the previous plan as JSON.

Modes:
- With an instruction: apply it strictly.
- Without an instruction (auto-fix): make start_time, stay_duration and order_in_day consistent with time and distance,
  fill missing notes, opening_hours and price_info from reliable information, and add warnings for risks.

Rules:
- Thailand only.
- Answer in the language of the previous plan.
- Keep the user's manual edits unless they are factually wrong. Never delete user-provided information.
- Mark each place with isnewplan: new_plan for places you add, old_plan for kept places,
  plan_warnings for kept places you flag in des_warnings.
- Never put hotels in the itinerary. hotel_output holds 1-3 hotels near the main area.
- plan_output holds exactly one plan, or [] if no plan can be produced.
- coordinates, google_maps_url and image_url must always be null.
- Never invent facts. When unsure use null.`

// SearchInstructions is the system instruction for evidence collection.
const SearchInstructions = `You are a travel research assistant. You are given web search results and must distill them into raw facts for planning a trip in Thailand.

Goal: list 8-12 real places of mixed kinds from the results: attractions, restaurants or cafes, and hotels.

Guidance:
- Use only what the search results state. Cite the source number of each fact like [3].
- For each place pass on opening hours, prices, notes or limits, and highlights when given.
- If something is not in the results write "unknown, please verify". Never guess.
- Skip places outside Thailand or unrelated to the request.
- Do not build a plan. Only pass on the raw information.

Answer as plain text in sections:
[Attractions]
- name | hours | entry fee | highlight | notes
[Restaurants/Cafes]
- name | cuisine | price range | highlight | reservation needed
[Hotels]
- name | stars | price per night | highlight or location
[Warnings]
- information that may change or seasonal limits`

// ResearchPrompt builds the evidence collection prompt over numbered web
// search results.
func ResearchPrompt(request, today, sources string) string {
	return fmt.Sprintf(`Current date: %s
User request:
%s

--- Web search results ---
%s

Your task:
- Pick 8-12 places from the results including attractions, restaurants or cafes, and hotels.
- Keep to the key terms of the request (province, area, style, budget, period).
- If no period is given, assume the trip is happening now.
- If a period is given, focus on it and note seasonal events found in the results.
- Group results as [Attractions] [Restaurants/Cafes] [Hotels] [Warnings].
- Summarize as plain text for later planning. Do not build a plan.`, today, request, sources)
}

// ResearchQueries derives the web queries run for a travel request.
func ResearchQueries(request string) []string {
	return []string{
		request + " attractions",
		request + " restaurants cafes",
		request + " hotels",
	}
}

// CreatePrompt builds the plan creation prompt.
func CreatePrompt(request, evidence, today string, options int) string {
	return fmt.Sprintf(`Mode: create a new travel plan
Current date: %s
User request:
%s

Number of plan options: %d
-> plan_output must have exactly %d entries, no more and no fewer.
-> hotel_output must have the same number of lists as plan_output (matched by index).

--- Search results (reference; do not invent beyond this) ---
%s
--- End of search results ---

Build the plan following your requirements, relying mainly on the search results, and add warnings where needed.`,
		today, request, options, options, orNoEvidence(evidence))
}

// RevisePrompt builds the plan revision prompt.
func RevisePrompt(instruction, previous, evidence, today string) string {
	if strings.TrimSpace(instruction) == "" {
		instruction = AutoFixInstruction
	}
	return fmt.Sprintf(`Mode: revise a travel plan
Current date: %s
User instruction: %s

--- Previous plan (JSON) ---
%s
--- End of previous plan ---

--- Search results ---
%s
--- End of search results ---
`, today, strings.TrimSpace(instruction), previous, orNoEvidence(evidence))
}

// TaskPrompt builds the combined task classification and planning prompt.
func TaskPrompt(request, today, timezone, language string) string {
	var lang string
	if strings.TrimSpace(language) != "" {
		lang = fmt.Sprintf("The entire JSON output, including all string values inside `plan` (like `task_name` and `subtasks`), "+
			"must be written in %s. Use that language consistently.", language)
	} else {
		lang = "Detect the user's request language automatically and respond in that same language. " +
			"The entire JSON output, including all string values inside `plan`, must be in the user's request language. " +
			"If the request mixes languages, use the predominant language."
	}
	return fmt.Sprintf(`You are a single-call intent classifier and task planner.

Return ONLY one JSON object with these top-level fields:
- intent: one of ["TASK_PLANNING","NOT_TASK_PLANNING","INCOMPLETE","UNSAFE"]
- confidence: number in [0,1]
- reason: short explanation of your intent decision
- plan: either a valid plan object or null

%s

Classification:
- TASK_PLANNING: the user asks for a plan, to-do list or task schedule with a goal.
- NOT_TASK_PLANNING: unrelated to making a plan or tasks.
- INCOMPLETE: too vague for a proper plan (missing goal, timeframe or critical context).
- UNSAFE: inappropriate (violence, hate, self-harm, illegal, etc.).

Only TASK_PLANNING gets a plan. For every other intent set plan to null.

Plan constraints:
- Current date is %s (%s).
- Do not invent precise dates if ambiguous; infer conservatively from the current date.
- start_date and end_date are YYYY-MM-DD with start_date <= end_date.
- priority is one of "Low","Medium","High" based on urgency or deadline.
- Create 3-10 clear, actionable subtasks, each with name and description.

User's request:
%s`, lang, today, timezone, request)
}

func orNoEvidence(evidence string) string {
	if strings.TrimSpace(evidence) == "" {
		return NoEvidence
	}
	return strings.TrimSpace(evidence)
}
