package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/incidentiq/datagen/internal/app"
	"github.com/incidentiq/datagen/internal/colspec"
	"github.com/incidentiq/datagen/internal/domain"
	"github.com/incidentiq/datagen/internal/infra/repos/requests"
	"github.com/incidentiq/datagen/internal/infra/repos/runs"
	"github.com/incidentiq/datagen/internal/infra/repos/targets"
	"github.com/incidentiq/datagen/internal/validation"
)

func looksLikePath(arg string) bool {
	return strings.Contains(arg, "/") || strings.HasSuffix(arg, ".yaml") ||
		strings.HasSuffix(arg, ".yml") || strings.HasSuffix(arg, ".json")
}

func requestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Manage generation requests",
	}

	var format string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := requests.NewFileRepository(requestsDir).List()
			if err != nil {
				return err
			}

			if format == "json" {
				data, _ := json.MarshalIndent(list, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tROWS\tCOLUMNS\tOUTPUT")
			for _, r := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.Name, humanize.Comma(int64(r.RowCount)), len(r.Columns), r.Output)
			}
			return w.Flush()
		},
	}
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a request with its resolved columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := loadRequest(args[0])
			if err != nil {
				return err
			}
			data, _ := yaml.Marshal(req)
			fmt.Println(string(data))

			specs, err := colspec.ResolveAll(req.Columns)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "COLUMN\tKIND")
			for _, s := range specs {
				fmt.Fprintf(w, "%s\t%s\n", s.Name, s.Kind)
			}
			return w.Flush()
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate <id|path>",
		Short: "Validate a request and its column definitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := loadRequest(args[0])
			if err != nil {
				return err
			}
			if err := validation.NewValidator().ValidateRequest(req); err != nil {
				fmt.Printf("Validation failed: %v\n", err)
				return err
			}
			if _, err := colspec.ResolveAll(req.Columns); err != nil {
				fmt.Printf("Validation failed: %v\n", err)
				return err
			}
			fmt.Printf("Request '%s' is valid\n", req.Name)
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd, validateCmd)
	return cmd
}

func loadRequest(arg string) (*domain.GenerationRequest, error) {
	if looksLikePath(arg) {
		return requests.LoadFile(arg)
	}
	return requests.NewFileRepository(requestsDir).Get(arg)
}

func targetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Manage load targets",
	}

	var format string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := targets.NewFileRepository(targetsDir).List()
			if err != nil {
				return err
			}
			list = targets.RedactTargets(list)

			if format == "json" {
				data, _ := json.MarshalIndent(list, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tKIND\tDSN")
			for _, t := range list {
				dsn := t.DSN
				if len(dsn) > 50 {
					dsn = dsn[:47] + "..."
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Kind, dsn)
			}
			return w.Flush()
		},
	}
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show target details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := loadTarget(args[0])
			if err != nil {
				return err
			}
			data, _ := yaml.Marshal(targets.RedactTarget(target))
			fmt.Println(string(data))
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate <id|path>",
		Short: "Validate a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := loadTarget(args[0])
			if err != nil {
				return err
			}
			if err := validation.NewValidator().ValidateTarget(target); err != nil {
				fmt.Printf("Validation failed: %v\n", err)
				return err
			}
			fmt.Printf("Target '%s' is valid\n", target.Name)
			return nil
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check <id|path>",
		Short: "Connect to a target and probe table permissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := loadTarget(args[0])
			if err != nil {
				return err
			}
			check, err := app.CheckTarget(target)
			data, _ := json.MarshalIndent(check, "", "  ")
			fmt.Println(string(data))
			return err
		},
	}

	cmd.AddCommand(listCmd, showCmd, validateCmd, checkCmd)
	return cmd
}

func loadTarget(arg string) (*domain.TargetConfig, error) {
	if looksLikePath(arg) {
		return targets.LoadFile(arg)
	}
	return targets.NewFileRepository(targetsDir).Get(arg)
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Inspect recorded runs",
	}

	var limit int
	var status string
	var format string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runRepo := runs.NewSQLiteRepository(runsDBPath)
			if err := runRepo.Init(); err != nil {
				return err
			}
			defer runRepo.Close()

			list, err := runRepo.List(limit, status)
			if err != nil {
				return err
			}

			if format == "json" {
				data, _ := json.MarshalIndent(list, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tREQUEST\tROWS\tSINK\tSTATUS\tSTARTED")
			for _, r := range list {
				sink := r.Output
				if r.TargetName != "" {
					sink = r.TargetName + "." + r.TableName
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					shortID(r.ID), r.RequestName, humanize.Comma(int64(r.Rows)), sink, r.Status, humanize.Time(r.StartedAt))
			}
			return w.Flush()
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Limit results")
	listCmd.Flags().StringVar(&status, "status", "", "Filter by status")
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	showCmd := &cobra.Command{
		Use:   "show <run_id>",
		Short: "Show run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runRepo := runs.NewSQLiteRepository(runsDBPath)
			if err := runRepo.Init(); err != nil {
				return err
			}
			defer runRepo.Close()

			run, err := runRepo.Get(args[0])
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(run, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
