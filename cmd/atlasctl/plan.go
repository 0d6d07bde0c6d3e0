package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"atlas/internal/plan"
)

func newMakeCmd(verbose *bool) *cobra.Command {
	var options int
	cmd := &cobra.Command{
		Use:   "make <request>",
		Short: "Create travel plan options for a request",
		Example: `  atlasctl make "3 days in Chiang Mai, cafes and temples" --options 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if options < 1 || options > 3 {
				return errors.New("--options must be between 1 and 3")
			}
			a, err := buildApp(cmd.Context(), *verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			resp := a.Travel.MakePlan(cmd.Context(), strings.Join(args, " "), options)
			return finish(cmd, resp)
		},
	}
	cmd.Flags().IntVarP(&options, "options", "n", 1, "number of plan options (1-3)")
	return cmd
}

func newChangeCmd(verbose *bool) *cobra.Command {
	var instruction string
	cmd := &cobra.Command{
		Use:   "change <plan.json>",
		Short: "Revise a previously returned plan",
		Example: `  atlasctl change plan.json -i "swap day 2 for a beach day"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(args[0])
			if err != nil {
				return err
			}
			a, err := buildApp(cmd.Context(), *verbose)
			if err != nil {
				return err
			}
			defer a.Close()

			resp := a.Travel.ChangePlan(cmd.Context(), instruction, string(raw))
			return finish(cmd, resp)
		},
	}
	cmd.Flags().StringVarP(&instruction, "instruction", "i", "", "what to change")
	return cmd
}

// finish prints the response and turns an error status into a non-zero exit.
func finish(cmd *cobra.Command, resp *plan.Response) error {
	if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
		return err
	}
	if resp.Status != plan.StatusSuccess {
		return fmt.Errorf("plan failed: %s", resp.Description)
	}
	return nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}
