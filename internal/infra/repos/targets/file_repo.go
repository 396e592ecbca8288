package targets

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

var ErrNotFound = errors.New("target not found")

type Repository interface {
	List() ([]*domain.TargetConfig, error)
	Get(id string) (*domain.TargetConfig, error)
}

// FileRepository serves load target definitions stored as .yaml, .yml or
// .json documents in one directory.
type FileRepository struct {
	baseDir string
}

func NewFileRepository(baseDir string) *FileRepository {
	return &FileRepository{baseDir: baseDir}
}

func (r *FileRepository) List() ([]*domain.TargetConfig, error) {
	if _, err := os.Stat(r.baseDir); os.IsNotExist(err) {
		return []*domain.TargetConfig{}, nil
	}

	entries, err := os.ReadDir(r.baseDir)
	if err != nil {
		return nil, err
	}

	targets := make([]*domain.TargetConfig, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}

		target, err := LoadFile(filepath.Join(r.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		targets = append(targets, target)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].ID < targets[j].ID })
	return targets, nil
}

func (r *FileRepository) Get(id string) (*domain.TargetConfig, error) {
	targets, err := r.List()
	if err != nil {
		return nil, err
	}
	for _, t := range targets {
		if t.ID == id || t.Name == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// LoadFile reads one target document; .json is parsed as JSON, anything
// else as YAML. DSNs may reference environment variables as ${VAR}.
func LoadFile(path string) (*domain.TargetConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var target domain.TargetConfig
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &target)
	} else {
		err = yaml.Unmarshal(data, &target)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	if target.ID == "" {
		base := filepath.Base(path)
		target.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if target.Name == "" {
		target.Name = target.ID
	}
	target.DSN = os.ExpandEnv(target.DSN)
	return &target, nil
}
