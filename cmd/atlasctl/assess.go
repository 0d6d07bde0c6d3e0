package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"atlas/internal/feasibility"
	"atlas/internal/plan"
)

func newAssessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assess <task_plan.json>",
		Short: "Score a task plan offline",
		Long: `Reads a task plan (the "plan" object of a /plan response, or the whole
response) and prints the feasibility verdict. No model is called.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(args[0])
			if err != nil {
				return err
			}
			p, err := decodeTaskPlan(raw)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), feasibility.Assess(p))
		},
	}
}

// decodeTaskPlan accepts a bare plan or an object wrapping one under "plan".
func decodeTaskPlan(raw []byte) (plan.TaskPlan, error) {
	var wrapped struct {
		Plan *json.RawMessage `json:"plan"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return plan.TaskPlan{}, fmt.Errorf("parse task plan: %w", err)
	}
	if wrapped.Plan != nil && !bytes.Equal(bytes.TrimSpace(*wrapped.Plan), []byte("null")) {
		raw = *wrapped.Plan
	}
	var p plan.TaskPlan
	if err := json.Unmarshal(raw, &p); err != nil {
		return plan.TaskPlan{}, fmt.Errorf("parse task plan: %w", err)
	}
	return p, nil
}
