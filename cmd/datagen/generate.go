package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/incidentiq/datagen/internal/app"
	"github.com/incidentiq/datagen/internal/config"
	"github.com/incidentiq/datagen/internal/domain"
	"github.com/incidentiq/datagen/internal/export"
	"github.com/incidentiq/datagen/internal/infra/objectstore"
	"github.com/incidentiq/datagen/internal/infra/repos/requests"
	"github.com/incidentiq/datagen/internal/infra/repos/runs"
	"github.com/incidentiq/datagen/internal/infra/repos/targets"
)

func generateCmd(cfg *config.Config) *cobra.Command {
	var (
		requestID     string
		requestPath   string
		name          string
		cols          []string
		rows          int
		out           string
		table         string
		seed          int64
		targetID      string
		targetDSN     string
		targetKind    string
		mode          string
		publish       bool
		sqlTimestamps bool
		preview       int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a dataset and export or load it",
		Example: `  datagen generate --col customer_id=id --col "region=[North,South]" --col "age=int 18-65" --rows 1000 --out customers.csv
  datagen generate --request customers --out customers.sql --sql-timestamps
  datagen generate --request customers --target-id warehouse --mode truncate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			defer logger.Sync()

			req := &domain.RunRequest{
				Rows:               rows,
				Output:             out,
				TableName:          table,
				Publish:            publish,
				PreserveTimestamps: sqlTimestamps,
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}

			sources := 0
			for _, set := range []bool{requestID != "", requestPath != "", len(cols) > 0} {
				if set {
					sources++
				}
			}
			if sources != 1 {
				return errors.New("exactly one of --request, --request-path or --col is required")
			}
			switch {
			case requestID != "":
				req.RequestID = requestID
			case requestPath != "":
				r, err := requests.LoadFile(requestPath)
				if err != nil {
					return err
				}
				req.Request = r
			default:
				defs, err := parseColumnFlags(cols)
				if err != nil {
					return err
				}
				req.Request = &domain.GenerationRequest{ID: name, Name: name, RowCount: rows, Columns: defs}
			}

			if targetDSN != "" {
				if targetKind == "" {
					return errors.New("--target-kind required when using --target")
				}
				req.Target = &domain.TargetConfig{Name: "inline-target", Kind: targetKind, DSN: targetDSN}
			} else if targetID != "" {
				req.TargetID = targetID
			}
			if req.Target != nil || req.TargetID != "" {
				req.Mode = mode
			}

			if preview > 0 {
				genReq, err := sampleOnly(requests.NewFileRepository(requestsDir), req)
				if err != nil {
					return err
				}
				if genReq != nil {
					svc := app.NewRunService(nil, nil, nil, logger, app.Options{DefaultSeed: cfg.Seed})
					ds, used, err := svc.Generate(genReq, req.Seed)
					if err != nil {
						return err
					}
					printPreview(cmd.OutOrStdout(), ds, preview)
					fmt.Fprintf(cmd.ErrOrStderr(), "Sampled %s rows x %d columns (seed %d); nothing written\n",
						humanize.Comma(int64(ds.RowCount)), len(ds.Columns), used)
					return nil
				}
			}

			runRepo := runs.NewSQLiteRepository(runsDBPath)
			if err := runRepo.Init(); err != nil {
				return err
			}
			defer runRepo.Close()

			var publisher *objectstore.Publisher
			if publish {
				if !cfg.S3.Enabled() {
					return errors.New("--publish needs DATAGEN_S3_ENDPOINT and DATAGEN_S3_BUCKET")
				}
				p, err := objectstore.NewPublisher(cfg.S3)
				if err != nil {
					return err
				}
				publisher = p
			}

			svc := app.NewRunService(
				requests.NewFileRepository(requestsDir),
				targets.NewFileRepository(targetsDir),
				runRepo,
				logger,
				app.Options{DefaultSeed: cfg.Seed, BatchSize: cfg.BatchSize, Publisher: publisher},
			)

			run, ds, err := svc.Execute(context.Background(), req)
			if ds != nil && preview > 0 {
				printPreview(cmd.OutOrStdout(), ds, preview)
			}
			if err != nil {
				return err
			}
			printSummary(run, ds)
			return nil
		},
	}

	cmd.Flags().StringVar(&requestID, "request", "", "Request ID or name from the requests directory")
	cmd.Flags().StringVar(&requestPath, "request-path", "", "Request file path (yaml or json)")
	cmd.Flags().StringVar(&name, "name", "dataset", "Dataset name when columns are given with --col")
	cmd.Flags().StringArrayVar(&cols, "col", nil, "Column definition name=definition, repeatable, in order; SQL reserved words are quoted in files but rejected for --target loads")
	cmd.Flags().IntVarP(&rows, "rows", "n", 0, "Number of rows (overrides the request)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file; the extension picks csv, sql, json or parquet")
	cmd.Flags().StringVar(&table, "table", "", "Table name for SQL output and loads")
	cmd.Flags().Int64VarP(&seed, "seed", "s", 0, "Seed for the random generator")
	cmd.Flags().StringVar(&targetID, "target-id", "", "Load into this target from the targets directory")
	cmd.Flags().StringVar(&targetDSN, "target", "", "Load into this DSN")
	cmd.Flags().StringVar(&targetKind, "target-kind", "", "Target kind (required with --target)")
	cmd.Flags().StringVar(&mode, "mode", cfg.DefaultMode, "Table mode (create|truncate|append)")
	cmd.Flags().BoolVar(&publish, "publish", false, "Upload the output file to object storage")
	cmd.Flags().BoolVar(&sqlTimestamps, "sql-timestamps", false, "Keep time of day for timestamp columns in SQL output")
	cmd.Flags().IntVar(&preview, "preview", 0, "Print the first N rows; without --out, a target or --publish nothing is written")
	return cmd
}

// sampleOnly returns the request to sample when a run has nowhere to go
// besides the preview: no output file, no target and no publish. It returns
// nil when the run needs the full pipeline.
func sampleOnly(repo requests.Repository, req *domain.RunRequest) (*domain.GenerationRequest, error) {
	if req.Output != "" || req.Target != nil || req.TargetID != "" || req.Publish {
		return nil, nil
	}
	genReq := req.Request
	if genReq == nil {
		stored, err := repo.Get(req.RequestID)
		if err != nil {
			return nil, err
		}
		genReq = stored
	}
	if genReq.Output != "" {
		return nil, nil
	}
	cp := *genReq
	if req.Rows > 0 {
		cp.RowCount = req.Rows
	}
	return &cp, nil
}

// parseColumnFlags turns repeated name=definition flags into ordered column
// definitions. A definition in brackets is a category list.
func parseColumnFlags(flags []string) (domain.ColumnDefinitions, error) {
	defs := make(domain.ColumnDefinitions, 0, len(flags))
	for _, f := range flags {
		name, def, ok := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		def = strings.TrimSpace(def)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid column %q, want name=definition", f)
		}
		if strings.HasPrefix(def, "[") {
			var list []any
			if err := yaml.Unmarshal([]byte(def), &list); err != nil {
				return nil, fmt.Errorf("column %q: invalid category list: %w", name, err)
			}
			defs = append(defs, domain.ColumnDefinition{Name: name, Definition: list})
			continue
		}
		defs = append(defs, domain.ColumnDefinition{Name: name, Definition: def})
	}
	return defs, nil
}

func printPreview(out io.Writer, ds *domain.Dataset, n int) {
	if n > ds.RowCount {
		n = ds.RowCount
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(ds.ColumnNames(), "\t"))
	for i := 0; i < n; i++ {
		cells := make([]string, len(ds.Columns))
		for j, c := range ds.Columns {
			cells[j] = export.FormatText(c.Kind, c.Values[i])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
}

func printSummary(run *domain.Run, ds *domain.Dataset) {
	var stats domain.RunStats
	if run.Stats != nil {
		_ = json.Unmarshal(run.Stats, &stats)
	}
	fmt.Fprintf(os.Stderr, "Generated %s rows x %d columns (seed %d) in %.2fs\n",
		humanize.Comma(int64(ds.RowCount)), len(ds.Columns), run.Seed, stats.GenerateSeconds)
	if run.Output != "" {
		fmt.Fprintf(os.Stderr, "Wrote %s (%s)\n", run.Output, humanize.Bytes(uint64(stats.BytesWritten)))
	}
	if run.TargetName != "" {
		fmt.Fprintf(os.Stderr, "Loaded %s rows into %s.%s\n", humanize.Comma(stats.RowsLoaded), run.TargetName, run.TableName)
	}
	if stats.ArtifactURI != "" {
		fmt.Fprintf(os.Stderr, "Published %s\n", stats.ArtifactURI)
	}
	for _, w := range ds.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	fmt.Fprintf(os.Stderr, "Run %s\n", run.ID)
}
