package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cloo-solutions/dreamcourse/internal/cli"
	"github.com/cloo-solutions/dreamcourse/internal/config"
	"github.com/cloo-solutions/dreamcourse/internal/domain"
	"github.com/cloo-solutions/dreamcourse/internal/prompt"
	"github.com/cloo-solutions/dreamcourse/internal/service"
	"github.com/spf13/cobra"
)

// AskCmd runs the whole pipeline once for a single question.
func AskCmd() *cobra.Command {
	var (
		intent   string
		question string
		raw      bool
	)

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Answer one question and print the parsed table",
		Long: `Load the dataset, build a semantic index, answer one question with the
prompt contract for the given intent and print the parsed table.

Intents: major-recommendation, curriculum-plan, admission-cutoffs`,
		Example: `  dreamcoursed ask --intent major-recommendation --question "소프트웨어 개발자가 되고 싶어요"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd.Context(), intent, question, raw, outputJSON)
		},
	}

	cmd.Flags().StringVar(&intent, "intent", string(domain.IntentMajorRecommendation), "Query intent")
	cmd.Flags().StringVarP(&question, "question", "q", "", "Question to answer")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the model reply instead of the parsed table")
	cmd.Flags().Bool("output", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("question")

	return cmd
}

func runAsk(ctx context.Context, intentFlag, question string, raw, outputJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	intent, err := domain.ParseIntent(intentFlag)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	defer initTelemetry(cfg)()

	corpus, err := loadCorpus(ctx, cfg)
	if err != nil {
		return err
	}

	client := newOpenAIClient(cfg)
	builder, closeDB, err := newBuilder(ctx, cfg, client, true)
	if err != nil {
		return err
	}
	defer closeDB()

	idx, err := builder.Build(ctx, corpus.units)
	if err != nil {
		return err
	}
	defer idx.Close(context.Background())

	contract, err := prompt.NewRegistry().Get(intent)
	if err != nil {
		return err
	}

	answer, err := service.NewAnswerService(client, cfg.TopK()).Ask(ctx, idx, contract, question)
	if err != nil {
		return err
	}

	switch {
	case raw:
		fmt.Println(answer.Raw)
		return nil
	case outputJSON:
		output, _ := json.MarshalIndent(answer.Table, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if answer.Table.Empty() {
		fmt.Println("No table rows in the reply. Use --raw to see it.")
		return nil
	}
	rows := make([][]string, len(answer.Table.Records))
	for i, rec := range answer.Table.Records {
		rows[i] = rec.Values()
	}
	if err := cli.PrintTable(os.Stdout, answer.Table.Columns, rows); err != nil {
		return err
	}
	if n := len(answer.Table.Rejected); n > 0 {
		fmt.Printf("\n%d malformed rows skipped\n", n)
	}
	return nil
}
