package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "cikgu",
	Short: "Cikgu Planner: RPT extraction and RPH generation daemon",
	Long: `Cikgu Planner turns a yearly teaching plan (RPT) into weekly plan
records and generates dated daily lesson plans (RPH) from them.

Run "cikgu serve" to start the daemon, then use the other commands to
talk to it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.AddCommand(serveCmd, stopCmd, statusCmd)
	rootCmd.AddCommand(analyzeCmd, weeksCmd, rphCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
