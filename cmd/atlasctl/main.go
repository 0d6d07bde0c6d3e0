// README: Operator CLI; runs the pipelines locally, scores task plans offline and smoke-tests a deployment.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"atlas/internal/app"
	"atlas/internal/config"
	"atlas/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "atlasctl",
		Short:         "Run and check the trip planning pipelines",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline progress to stderr")
	root.AddCommand(
		newMakeCmd(&verbose),
		newChangeCmd(&verbose),
		newAssessCmd(),
		newSmokeCmd(),
	)
	return root
}

// buildApp loads configuration and wires the full service graph.
func buildApp(ctx context.Context, verbose bool) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.Discard()
	if verbose {
		logger = logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	}
	return app.Build(ctx, cfg, logger)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
