package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/incidentiq/datagen/internal/domain"
	"github.com/incidentiq/datagen/internal/exec"
	"github.com/incidentiq/datagen/internal/export"
	"github.com/incidentiq/datagen/internal/hashing"
	"github.com/incidentiq/datagen/internal/infra/objectstore"
	"github.com/incidentiq/datagen/internal/infra/repos/requests"
	"github.com/incidentiq/datagen/internal/infra/repos/runs"
	"github.com/incidentiq/datagen/internal/infra/repos/targets"
	"github.com/incidentiq/datagen/internal/logging"
	"github.com/incidentiq/datagen/internal/validation"
)

// DefaultSeed is used when neither the run nor the request names a seed.
const DefaultSeed int64 = 42

type Options struct {
	DefaultSeed int64
	BatchSize   int
	Publisher   *objectstore.Publisher
	// OutputDir, when set, confines run outputs: paths must be relative and
	// are written beneath it.
	OutputDir string
}

type RunService struct {
	requestRepo requests.Repository
	targetRepo  targets.Repository
	runRepo     runs.Repository
	validator   *validation.Validator
	executor    *exec.Executor
	publisher   *objectstore.Publisher
	logger      *logging.Logger
	defaultSeed int64
	batchSize   int
	outputDir   string
	now         func() time.Time
}

// NewRunService wires the run pipeline. runRepo may be nil, in which case
// runs are executed but not recorded.
func NewRunService(
	requestRepo requests.Repository,
	targetRepo targets.Repository,
	runRepo runs.Repository,
	logger *logging.Logger,
	opts Options,
) *RunService {
	if logger == nil {
		logger = logging.Nop()
	}
	if opts.DefaultSeed == 0 {
		opts.DefaultSeed = DefaultSeed
	}
	return &RunService{
		requestRepo: requestRepo,
		targetRepo:  targetRepo,
		runRepo:     runRepo,
		validator:   validation.NewValidator(),
		executor:    exec.NewExecutor(logger),
		publisher:   opts.Publisher,
		logger:      logger.WithComponent("runs"),
		defaultSeed: opts.DefaultSeed,
		batchSize:   opts.BatchSize,
		outputDir:   opts.OutputDir,
		now:         time.Now,
	}
}

// SetClock replaces the service clock, which also resolves open-ended
// timestamp ranges during generation.
func (s *RunService) SetClock(now func() time.Time) {
	s.now = now
	s.executor.SetClock(now)
}

// Generate samples req without exporting or recording it. A nil seed falls
// back to the request's seed, then to the service default. It returns the
// seed that was used.
func (s *RunService) Generate(req *domain.GenerationRequest, seed *int64) (*domain.Dataset, int64, error) {
	used := s.resolveSeed(seed, req)
	ds, err := s.executor.Generate(req, used)
	return ds, used, err
}

func (s *RunService) resolveSeed(seed *int64, req *domain.GenerationRequest) int64 {
	switch {
	case seed != nil:
		return *seed
	case req != nil && req.Seed != nil:
		return *req.Seed
	default:
		return s.defaultSeed
	}
}

// Execute runs a request end to end: generate, export, load, publish and
// record. The dataset is returned whenever generation succeeded, even if a
// later step failed, so callers can retry the export without resampling.
func (s *RunService) Execute(ctx context.Context, req *domain.RunRequest) (*domain.Run, *domain.Dataset, error) {
	if err := s.validator.ValidateRunRequest(req); err != nil {
		return nil, nil, &domain.SpecError{Err: err}
	}

	genReq, err := s.resolveRequest(req)
	if err != nil {
		return nil, nil, err
	}
	targetCfg, err := s.resolveTarget(req)
	if err != nil {
		return nil, nil, err
	}

	if targetCfg == nil && genReq.Output == "" {
		return nil, nil, &domain.SpecError{Err: validation.ErrNoSink}
	}
	if genReq.Output != "" && s.outputDir != "" {
		confined, err := confineOutput(s.outputDir, genReq.Output)
		if err != nil {
			return nil, nil, &domain.SpecError{Err: err}
		}
		if err := os.MkdirAll(filepath.Dir(confined), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to prepare output directory: %w", err)
		}
		genReq.Output = confined
	}

	output := genReq.Output
	table := genReq.TableName
	if table == "" && output != "" {
		table = export.TableNameFromPath(output)
	}
	if table == "" {
		table = genReq.ID
	}
	seed := s.resolveSeed(req.Seed, genReq)
	mode := req.Mode

	configHash, err := hashing.HashRunConfig(genReq, targetCfg, mode, genReq.RowCount, output, table, seed)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash run config: %w", err)
	}

	run := &domain.Run{
		RequestID:   genReq.ID,
		RequestName: genReq.Name,
		ConfigHash:  configHash,
		Seed:        seed,
		Rows:        genReq.RowCount,
		Columns:     len(genReq.Columns),
		Output:      output,
		TableName:   table,
		Mode:        mode,
		Status:      domain.RunStatusRunning,
		StartedAt:   s.now().UTC(),
	}
	if targetCfg != nil {
		run.TargetName = targetCfg.Name
		run.TargetKind = targetCfg.Kind
	}
	if s.runRepo != nil {
		if err := s.runRepo.Create(run); err != nil {
			return nil, nil, fmt.Errorf("failed to create run: %w", err)
		}
	}

	s.logger.Infow("run.started", map[string]any{
		"run_id":  run.ID,
		"request": genReq.Name,
		"rows":    genReq.RowCount,
		"seed":    seed,
		"target":  run.TargetName,
	})

	stats := &domain.RunStats{}

	start := s.now()
	ds, err := s.executor.Generate(genReq, seed)
	stats.GenerateSeconds = s.now().Sub(start).Seconds()
	if err != nil {
		s.fail(run, stats, err)
		return run, nil, err
	}
	stats.RowsGenerated = ds.RowCount
	stats.ColumnsGenerated = len(ds.Columns)
	stats.Warnings = ds.Warnings

	if output != "" {
		start = s.now()
		target := export.TargetForPath(output, table)
		target.SQL.PreserveTimestamps = req.PreserveTimestamps
		target.SQL.Now = s.now
		n, err := export.Export(ds, target)
		stats.ExportSeconds = s.now().Sub(start).Seconds()
		if err != nil {
			s.fail(run, stats, err)
			return run, ds, err
		}
		stats.BytesWritten = n
	}

	if targetCfg != nil {
		start = s.now()
		tgt, err := buildTarget(targetCfg)
		if err != nil {
			s.fail(run, stats, err)
			return run, ds, err
		}
		loaded, err := s.executor.Load(ds, tgt, table, mode, s.batchSize)
		stats.RowsLoaded = loaded
		stats.LoadSeconds = s.now().Sub(start).Seconds()
		if err != nil {
			s.fail(run, stats, err)
			return run, ds, err
		}
	}

	if req.Publish {
		uri, err := s.publish(ctx, output, table, run.ID)
		if err != nil {
			s.fail(run, stats, err)
			return run, ds, err
		}
		stats.ArtifactURI = uri
	}

	now := s.now().UTC()
	stats.DurationSeconds = now.Sub(run.StartedAt).Seconds()
	run.Stats, _ = json.Marshal(stats)
	run.Status = domain.RunStatusSuccess
	run.CompletedAt = &now
	s.update(run)

	s.logger.Infow("run.completed", map[string]any{
		"run_id":   run.ID,
		"rows":     stats.RowsGenerated,
		"loaded":   stats.RowsLoaded,
		"bytes":    stats.BytesWritten,
		"duration": stats.DurationSeconds,
	})
	return run, ds, nil
}

func (s *RunService) publish(ctx context.Context, output, table, runID string) (string, error) {
	if output == "" {
		return "", &domain.ExportError{Op: "publish", Err: errors.New("nothing to publish without an output file")}
	}
	if s.publisher == nil {
		return "", &domain.ExportError{Path: output, Op: "publish", Err: errors.New("object storage is not configured")}
	}
	return s.publisher.Publish(ctx, output, table, runID)
}

// resolveRequest returns a copy of the request with the run's overrides
// applied; stored requests are never modified.
func (s *RunService) resolveRequest(req *domain.RunRequest) (*domain.GenerationRequest, error) {
	var base *domain.GenerationRequest
	if req.RequestID != "" {
		if s.requestRepo == nil {
			return nil, fmt.Errorf("failed to load request: no request repository")
		}
		r, err := s.requestRepo.Get(req.RequestID)
		if err != nil {
			return nil, fmt.Errorf("failed to load request: %w", err)
		}
		base = r
	} else {
		base = req.Request
	}

	cp := *base
	if cp.ID == "" {
		cp.ID = "inline"
	}
	if cp.Name == "" {
		cp.Name = cp.ID
	}
	if req.Rows > 0 {
		cp.RowCount = req.Rows
	}
	if req.Output != "" {
		cp.Output = req.Output
	}
	if req.TableName != "" {
		cp.TableName = req.TableName
	}
	return &cp, nil
}

func (s *RunService) resolveTarget(req *domain.RunRequest) (*domain.TargetConfig, error) {
	var base *domain.TargetConfig
	switch {
	case req.TargetID != "":
		if s.targetRepo == nil {
			return nil, fmt.Errorf("failed to load target: no target repository")
		}
		t, err := s.targetRepo.Get(req.TargetID)
		if err != nil {
			return nil, fmt.Errorf("failed to load target: %w", err)
		}
		base = t
	case req.Target != nil:
		base = req.Target
	default:
		return nil, nil
	}
	if err := s.validator.ValidateTarget(base); err != nil {
		return nil, &domain.SpecError{Err: fmt.Errorf("target validation failed: %w", err)}
	}
	return resolveTargetForRun(base, ""), nil
}

func (s *RunService) fail(run *domain.Run, stats *domain.RunStats, err error) {
	now := s.now().UTC()
	stats.DurationSeconds = now.Sub(run.StartedAt).Seconds()
	run.Stats, _ = json.Marshal(stats)
	run.Status = domain.RunStatusFailed
	run.Error = err.Error()
	run.CompletedAt = &now
	s.update(run)
	s.logger.Errorw("run.failed", map[string]any{"run_id": run.ID, "err": err})
}

func (s *RunService) update(run *domain.Run) {
	if s.runRepo == nil {
		return
	}
	if err := s.runRepo.Update(run); err != nil {
		s.logger.Error("Failed to update run %s: %v", run.ID, err)
	}
}

func (s *RunService) GetRun(id string) (*domain.Run, error) {
	if s.runRepo == nil {
		return nil, runs.ErrNotFound
	}
	return s.runRepo.Get(id)
}

func (s *RunService) ListRuns(limit int, status string) ([]*domain.Run, error) {
	if s.runRepo == nil {
		return []*domain.Run{}, nil
	}
	return s.runRepo.List(limit, status)
}
