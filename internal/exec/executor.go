package exec

import (
	"fmt"
	"time"

	"github.com/incidentiq/datagen/internal/colspec"
	"github.com/incidentiq/datagen/internal/dataset"
	"github.com/incidentiq/datagen/internal/domain"
	"github.com/incidentiq/datagen/internal/export"
	"github.com/incidentiq/datagen/internal/generators"
	"github.com/incidentiq/datagen/internal/logging"
	"github.com/incidentiq/datagen/internal/validation"
)

// DefaultBatchSize is used by Load when the caller passes a non-positive
// batch size.
const DefaultBatchSize = 1000

type Target interface {
	Connect() error
	Close() error
	CreateTableIfNotExists(table string, columns []domain.TableColumn) error
	TruncateTable(tableName string) error
	InsertBatch(tableName string, columns []string, rows [][]interface{}) error
}

type Executor struct {
	logger    *logging.Logger
	validator *validation.Validator
	now       func() time.Time
}

func NewExecutor(logger *logging.Logger) *Executor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Executor{
		logger:    logger.WithComponent("executor"),
		validator: validation.NewValidator(),
		now:       time.Now,
	}
}

// SetClock replaces the clock that resolves open-ended timestamp ranges.
func (e *Executor) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	e.now = now
}

// Generate resolves every column of req and samples it with a Sampler seeded
// from seed. Each call owns its Sampler, so concurrent calls are safe.
func (e *Executor) Generate(req *domain.GenerationRequest, seed int64) (*domain.Dataset, error) {
	if err := e.validator.ValidateRequest(req); err != nil {
		return nil, &domain.SpecError{Err: err}
	}

	specs, err := colspec.ResolveAll(req.Columns)
	if err != nil {
		return nil, err
	}

	sampler := generators.NewSampler(seed)
	sampler.SetClock(e.now)

	var warnings []string
	seqs := make([]dataset.Sequence, 0, len(specs))
	for _, spec := range specs {
		if spec.Kind == domain.KindUnspecified {
			msg := fmt.Sprintf("column %q: unrecognised definition %q, using integers in [0,100)", spec.Name, spec.Definition)
			warnings = append(warnings, msg)
			e.logger.Warnw("column.unspecified", map[string]any{
				"column":     spec.Name,
				"definition": spec.Definition,
			})
		}
		values, err := sampler.Sample(spec, req.RowCount)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, dataset.Sequence{Name: spec.Name, Kind: spec.Kind, Values: values})
	}

	ds, err := dataset.Assemble(req.RowCount, seqs)
	if err != nil {
		return nil, err
	}
	ds.Warnings = warnings

	e.logger.Debugw("generate.completed", map[string]any{
		"request": req.Name,
		"rows":    ds.RowCount,
		"columns": len(ds.Columns),
		"seed":    seed,
	})
	return ds, nil
}

// Load writes ds into table on target. mode decides whether the table is
// created, emptied first, or appended to. It returns the number of rows
// inserted.
func (e *Executor) Load(ds *domain.Dataset, target Target, table, mode string, batchSize int) (int64, error) {
	if !validation.IsValidIdentifier(table) {
		return 0, fmt.Errorf("invalid table identifier: %s", table)
	}
	columns := make([]domain.TableColumn, len(ds.Columns))
	for i, col := range ds.Columns {
		if !validation.IsValidIdentifier(col.Name) {
			return 0, fmt.Errorf("invalid column identifier: %s", col.Name)
		}
		columns[i] = domain.TableColumn{
			Name: col.Name,
			Type: export.ColumnSQLType(col, export.SQLOptions{PreserveTimestamps: true}),
		}
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	if err := target.Connect(); err != nil {
		return 0, fmt.Errorf("failed to connect to target: %w", err)
	}
	defer target.Close()

	switch mode {
	case domain.TableModeCreate:
		if err := target.CreateTableIfNotExists(table, columns); err != nil {
			return 0, fmt.Errorf("failed to create table '%s': %w", table, err)
		}
	case domain.TableModeTruncate:
		if err := target.CreateTableIfNotExists(table, columns); err != nil {
			return 0, fmt.Errorf("failed to create table '%s': %w", table, err)
		}
		if err := target.TruncateTable(table); err != nil {
			return 0, fmt.Errorf("failed to truncate table '%s': %w", table, err)
		}
	case domain.TableModeAppend:
	default:
		return 0, fmt.Errorf("unknown table mode: %s", mode)
	}

	names := ds.ColumnNames()
	batch := make([][]interface{}, 0, batchSize)
	var loaded int64
	for i := 0; i < ds.RowCount; i++ {
		batch = append(batch, ds.Row(i))
		if len(batch) >= batchSize {
			if err := target.InsertBatch(table, names, batch); err != nil {
				return loaded, fmt.Errorf("failed to insert batch into '%s': %w", table, err)
			}
			loaded += int64(len(batch))
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := target.InsertBatch(table, names, batch); err != nil {
			return loaded, fmt.Errorf("failed to insert final batch into '%s': %w", table, err)
		}
		loaded += int64(len(batch))
	}

	e.logger.Infow("load.completed", map[string]any{
		"table": table,
		"mode":  mode,
		"rows":  loaded,
	})
	return loaded, nil
}
