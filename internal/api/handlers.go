package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/incidentiq/datagen/internal/app"
	"github.com/incidentiq/datagen/internal/colspec"
	"github.com/incidentiq/datagen/internal/domain"
	"github.com/incidentiq/datagen/internal/export"
	"github.com/incidentiq/datagen/internal/infra/repos/requests"
	"github.com/incidentiq/datagen/internal/infra/repos/runs"
	"github.com/incidentiq/datagen/internal/infra/repos/targets"
	"github.com/incidentiq/datagen/internal/validation"
)

type Handler struct {
	requestRepo requests.Repository
	targetRepo  targets.Repository
	runService  *app.RunService
}

func NewHandler(requestRepo requests.Repository, targetRepo targets.Repository, runService *app.RunService) *Handler {
	return &Handler{
		requestRepo: requestRepo,
		targetRepo:  targetRepo,
		runService:  runService,
	}
}

// Register mounts every API route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/kinds", h.ListKinds)

	mux.HandleFunc("GET /api/v1/requests", h.ListRequests)
	mux.HandleFunc("GET /api/v1/requests/{id}", h.GetRequest)

	mux.HandleFunc("POST /api/v1/datasets", h.GenerateDataset)

	mux.HandleFunc("GET /api/v1/targets", h.ListTargets)
	mux.HandleFunc("GET /api/v1/targets/{id}", h.GetTarget)
	mux.HandleFunc("POST /api/v1/targets/{id}/check", h.CheckTarget)

	mux.HandleFunc("POST /api/v1/runs", h.CreateRun)
	mux.HandleFunc("GET /api/v1/runs", h.ListRuns)
	mux.HandleFunc("GET /api/v1/runs/{id}", h.GetRun)
}

func (h *Handler) ListKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, colspec.Catalog())
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	list, err := h.requestRepo.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, list)
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	req, err := h.requestRepo.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, req)
}

// GenerateDataset samples the posted request and streams it back in the
// format named by ?format= (csv by default). Nothing is recorded.
func (h *Handler) GenerateDataset(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerationRequest
	if err := decodeJSONStrict(r, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	format := export.FormatCSV
	if s := q.Get("format"); s != "" {
		f, ok := export.ParseFormat(s)
		if !ok {
			http.Error(w, fmt.Sprintf("unsupported format %q", s), http.StatusBadRequest)
			return
		}
		format = f
	}
	var seed *int64
	if s := q.Get("seed"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			http.Error(w, "invalid seed", http.StatusBadRequest)
			return
		}
		seed = &n
	}
	table := q.Get("table")
	if table == "" {
		table = req.TableName
	}
	if table == "" && validation.IsSafeName(req.Name) {
		table = req.Name
	}
	if table == "" {
		table = defaultTableName
	}
	if !validation.IsSafeName(table) {
		http.Error(w, fmt.Sprintf("invalid table name %q", table), http.StatusBadRequest)
		return
	}

	ds, used, err := h.runService.Generate(&req, seed)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	opts := export.SQLOptions{PreserveTimestamps: q.Get("sql_timestamps") == "true"}
	if err := export.Render(&buf, ds, format, table, opts); err != nil {
		if errors.Is(err, export.ErrInvalidName) {
			writeError(w, &domain.SpecError{Err: err})
			return
		}
		writeError(w, &domain.ExportError{Op: "render", Err: err})
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Datagen-Seed", strconv.FormatInt(used, 10))
	w.Header().Set("X-Datagen-Rows", strconv.Itoa(ds.RowCount))
	_, _ = w.Write(buf.Bytes())
}

// defaultTableName names SQL output when neither ?table= nor the request
// supplies a usable name.
const defaultTableName = "dataset"

var contentTypes = map[export.Format]string{
	export.FormatCSV:     "text/csv",
	export.FormatSQL:     "application/sql",
	export.FormatJSON:    "application/json",
	export.FormatParquet: "application/vnd.apache.parquet",
}

// Targets are read-only here; DSN credentials are redacted on output.

func (h *Handler) ListTargets(w http.ResponseWriter, r *http.Request) {
	list, err := h.targetRepo.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, targets.RedactTargets(list))
}

func (h *Handler) GetTarget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := h.targetRepo.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, targets.RedactTarget(t))
}

func (h *Handler) CheckTarget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := h.targetRepo.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := app.CheckTarget(t)
	if res != nil {
		writeJSON(w, res)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// Runs

type runResponse struct {
	Run      *domain.Run `json:"run"`
	Warnings []string    `json:"warnings,omitempty"`
}

func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req domain.RunRequest
	if err := decodeJSONStrict(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	run, ds, err := h.runService.Execute(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(runResponse{Run: run, Warnings: ds.Warnings})
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	list, err := h.runService.ListRuns(limit, r.URL.Query().Get("status"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, list)
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	run, err := h.runService.GetRun(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, run)
}

// writeError maps pipeline errors onto status codes: bad definitions are the
// caller's fault, export and load failures are ours.
func writeError(w http.ResponseWriter, err error) {
	var (
		specErr  *domain.SpecError
		shapeErr *domain.ShapeError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, requests.ErrNotFound), errors.Is(err, targets.ErrNotFound), errors.Is(err, runs.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &specErr), errors.As(err, &shapeErr):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSONStrict(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
