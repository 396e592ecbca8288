package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/incidentiq/datagen/internal/colspec"
	"github.com/incidentiq/datagen/internal/config"
	"github.com/incidentiq/datagen/internal/logging"
)

var (
	requestsDir string
	targetsDir  string
	runsDBPath  string
	logLevel    string
)

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:           "datagen",
		Short:         "Declarative synthetic data generator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&requestsDir, "requests-dir", cfg.RequestsDir, "Requests directory")
	rootCmd.PersistentFlags().StringVar(&targetsDir, "targets-dir", cfg.TargetsDir, "Targets directory")
	rootCmd.PersistentFlags().StringVar(&runsDBPath, "runs-db", cfg.RunsDBPath, "Runs database path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level")

	rootCmd.AddCommand(generateCmd(cfg))
	rootCmd.AddCommand(kindsCmd())
	rootCmd.AddCommand(requestCmd())
	rootCmd.AddCommand(targetCmd())
	rootCmd.AddCommand(runCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger writes to stderr so generated output on stdout stays clean.
func newLogger() *logging.Logger {
	return logging.NewLoggerWithWriter(logLevel, os.Stderr)
}

func kindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List column kinds and their definition syntax",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tSYNTAX\tDISTRIBUTION\tDEFAULT")
			for _, k := range colspec.Catalog() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", k.Kind, k.Syntax, k.Distribution, k.Default)
			}
			return w.Flush()
		},
	}
}
