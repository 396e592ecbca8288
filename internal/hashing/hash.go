package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/incidentiq/datagen/internal/domain"
)

// HashRequest fingerprints the parts of a request that shape its output.
// Column order is significant; descriptive fields are not.
func HashRequest(req *domain.GenerationRequest) (string, error) {
	data, err := json.Marshal(canonicalizeRequest(req))
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

func canonicalizeRequest(req *domain.GenerationRequest) map[string]interface{} {
	columns := make([]map[string]interface{}, len(req.Columns))
	for i, col := range req.Columns {
		columns[i] = map[string]interface{}{
			"name":       col.Name,
			"definition": col.Definition,
		}
	}

	result := map[string]interface{}{
		"rows":    req.RowCount,
		"columns": columns,
	}
	if req.TableName != "" {
		result["table_name"] = req.TableName
	}
	return result
}
