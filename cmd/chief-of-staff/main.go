package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	// Missing .env is fine; the environment may be set by the runtime.
	_ = godotenv.Load()

	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chief-of-staff",
		Short: "Personal chief-of-staff assistant over calendar, mail, and memory",
		Long: `chief-of-staff routes natural-language requests to Google Calendar and
Gmail, keeps long-term memory about the user, and falls back to an LLM
conversation for anything it cannot act on directly.`,
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("chief-of-staff %s\n", version)
		},
	}
}
