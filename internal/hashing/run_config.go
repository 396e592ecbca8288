package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/incidentiq/datagen/internal/domain"
)

type runConfigHashPayload struct {
	RequestHash string `json:"request_hash"`
	Rows        int    `json:"rows"`
	Output      string `json:"output,omitempty"`
	TableName   string `json:"table_name,omitempty"`
	TargetKind  string `json:"target_kind,omitempty"`
	TargetDSN   string `json:"target_dsn,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Seed        int64  `json:"seed"`
}

// HashRunConfig fingerprints a run: the request plus everything the caller
// overrode for this run. target may be nil for file-only runs.
func HashRunConfig(req *domain.GenerationRequest, target *domain.TargetConfig, mode string, rows int, output, table string, seed int64) (string, error) {
	rh, err := HashRequest(req)
	if err != nil {
		return "", err
	}

	p := runConfigHashPayload{
		RequestHash: rh,
		Rows:        rows,
		Output:      output,
		TableName:   table,
		Mode:        mode,
		Seed:        seed,
	}
	if target != nil {
		p.TargetKind = target.Kind
		p.TargetDSN = target.DSN
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
