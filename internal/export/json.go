package export

import (
	"bufio"
	"encoding/json"
	"io"
	"time"

	"github.com/incidentiq/datagen/internal/domain"
)

// WriteJSON writes ds as an array of objects whose keys follow column order.
func WriteJSON(w io.Writer, ds *domain.Dataset) error {
	bw := bufio.NewWriter(w)
	keys := make([][]byte, len(ds.Columns))
	for j, col := range ds.Columns {
		k, err := json.Marshal(col.Name)
		if err != nil {
			return err
		}
		keys[j] = k
	}

	bw.WriteByte('[')
	for i := 0; i < ds.RowCount; i++ {
		if i > 0 {
			bw.WriteByte(',')
		}
		bw.WriteByte('{')
		for j, col := range ds.Columns {
			if j > 0 {
				bw.WriteByte(',')
			}
			bw.Write(keys[j])
			bw.WriteByte(':')
			v := col.Values[i]
			if t, ok := v.(time.Time); ok {
				v = FormatText(col.Kind, t)
			}
			b, err := json.Marshal(v)
			if err != nil {
				return err
			}
			bw.Write(b)
		}
		bw.WriteByte('}')
	}
	bw.WriteString("]\n")
	return bw.Flush()
}
