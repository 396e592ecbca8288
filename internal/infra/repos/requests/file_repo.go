package requests

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/incidentiq/datagen/internal/domain"
)

var ErrNotFound = errors.New("request not found")

type Repository interface {
	List() ([]*domain.GenerationRequest, error)
	Get(id string) (*domain.GenerationRequest, error)
	GetByPath(path string) (*domain.GenerationRequest, error)
}

// FileRepository serves generation requests stored as .yaml, .yml or .json
// documents in one directory.
type FileRepository struct {
	baseDir string
}

func NewFileRepository(baseDir string) *FileRepository {
	return &FileRepository{baseDir: baseDir}
}

func (r *FileRepository) List() ([]*domain.GenerationRequest, error) {
	if _, err := os.Stat(r.baseDir); os.IsNotExist(err) {
		return []*domain.GenerationRequest{}, nil
	}

	entries, err := os.ReadDir(r.baseDir)
	if err != nil {
		return nil, err
	}

	reqs := make([]*domain.GenerationRequest, 0)
	for _, entry := range entries {
		if entry.IsDir() || !isRequestFile(entry.Name()) {
			continue
		}
		req, err := LoadFile(filepath.Join(r.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		reqs = append(reqs, req)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].ID < reqs[j].ID })
	return reqs, nil
}

func (r *FileRepository) Get(id string) (*domain.GenerationRequest, error) {
	reqs, err := r.List()
	if err != nil {
		return nil, err
	}
	for _, req := range reqs {
		if req.ID == id || req.Name == id {
			return req, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// GetByPath loads a request file addressed relative to the repository
// directory. Paths that resolve outside it are rejected.
func (r *FileRepository) GetByPath(path string) (*domain.GenerationRequest, error) {
	resolved, err := r.resolvePath(path)
	if err != nil {
		return nil, err
	}
	return LoadFile(resolved)
}

func (r *FileRepository) resolvePath(path string) (string, error) {
	base, err := filepath.Abs(r.baseDir)
	if err != nil {
		return "", err
	}
	candidate := path
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(base, candidate)
	}
	candidate = filepath.Clean(candidate)

	rel, err := filepath.Rel(base, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("request path %q is outside %s", path, r.baseDir)
	}
	return candidate, nil
}

// LoadFile reads one request document. The format follows the extension;
// anything but .json is parsed as YAML. A missing id defaults to the file
// name without extension.
func LoadFile(path string) (*domain.GenerationRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var req domain.GenerationRequest
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &req)
	} else {
		err = yaml.Unmarshal(data, &req)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	if req.ID == "" {
		base := filepath.Base(path)
		req.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if req.Name == "" {
		req.Name = req.ID
	}
	return &req, nil
}

func isRequestFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}
