package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/dreamcourse/internal/cli"
	"github.com/cloo-solutions/dreamcourse/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dreamcoursed",
		Short: "DreamCourse daemon and operator CLI",
		Long:  "DreamCourse daemon for serving career guidance sessions and running the retrieval pipeline from the shell",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.AskCmd())
	rootCmd.AddCommand(admin.SynthesizeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
