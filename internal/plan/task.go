// README: Task plan contract and feasibility metadata.
package plan

// Priority of a task plan.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// SubTask is one actionable item of a task plan.
type SubTask struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TaskPlan is the structured output of the task planner.
type TaskPlan struct {
	TaskName  string    `json:"task_name"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Priority  Priority  `json:"priority"`
	Subtasks  []SubTask `json:"subtasks"`
}

// TaskIntentLabel is the task variant intent label set.
type TaskIntentLabel string

const (
	IntentTaskPlanning    TaskIntentLabel = "TASK_PLANNING"
	IntentNotTaskPlanning TaskIntentLabel = "NOT_TASK_PLANNING"
	IntentIncomplete      TaskIntentLabel = "INCOMPLETE"
	IntentUnsafe          TaskIntentLabel = "UNSAFE"
)

// TaskIntent is the combined classify-and-plan result.
type TaskIntent struct {
	Intent     TaskIntentLabel `json:"intent"`
	Confidence float64         `json:"confidence"`
	Reason     string          `json:"reason"`
	Plan       *TaskPlan       `json:"plan"`
}

// Difficulty grades a feasibility verdict.
type Difficulty string

const (
	DifficultyEasy       Difficulty = "EASY"
	DifficultyMedium     Difficulty = "MEDIUM"
	DifficultyHard       Difficulty = "HARD"
	DifficultyImpossible Difficulty = "IMPOSSIBLE"
)

// Feasibility is computed locally from a plan snapshot.
type Feasibility struct {
	Feasible   bool       `json:"feasible"`
	Difficulty Difficulty `json:"difficulty"`
	Warnings   []string   `json:"warnings"`
	Reasons    []string   `json:"reasons"`
}

// TaskResponse is returned by the task planning endpoint.
type TaskResponse struct {
	Plan        TaskPlan    `json:"plan"`
	Feasibility Feasibility `json:"feasibility"`
}
