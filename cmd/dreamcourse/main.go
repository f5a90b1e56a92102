package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/dreamcourse/internal/cli"
	"github.com/cloo-solutions/dreamcourse/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "dreamcourse",
		Short: "DreamCourse CLI - career guidance from the terminal",
		Long: `DreamCourse CLI walks through a guidance session against a running dreamcoursed.

Environment variables:
  DREAMCOURSE_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.OptionsCmd())
	rootCmd.AddCommand(client.StartCmd())
	rootCmd.AddCommand(client.ShowCmd())
	rootCmd.AddCommand(client.MajorCmd())
	rootCmd.AddCommand(client.CurriculumCmd())
	rootCmd.AddCommand(client.BackCmd())
	rootCmd.AddCommand(client.EndCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
