package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cloo-solutions/dreamcourse/internal/config"
	"github.com/cloo-solutions/dreamcourse/internal/domain"
	"github.com/spf13/cobra"
)

// SynthesizeCmd prints the text units derived from the dataset.
func SynthesizeCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "synthesize",
		Short: "Print the synthesized text units as JSON",
		Long:  "Load the three CSV tables and print the text units the semantic index is built from. Needs no OpenAI key.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runSynthesize(ctx, os.Stdout, kind)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Only print units of this kind (occupation, curriculum, admission)")

	return cmd
}

func runSynthesize(ctx context.Context, w io.Writer, kind string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateDataset(); err != nil {
		return err
	}

	corpus, err := loadCorpus(ctx, cfg)
	if err != nil {
		return err
	}

	units := corpus.units
	if kind != "" {
		units = filterUnits(units, domain.UnitKind(kind))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(units)
}

func filterUnits(units []domain.TextUnit, kind domain.UnitKind) []domain.TextUnit {
	out := make([]domain.TextUnit, 0, len(units))
	for _, u := range units {
		if u.Kind == kind {
			out = append(out, u)
		}
	}
	return out
}
