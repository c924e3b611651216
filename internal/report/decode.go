package report

import (
	"encoding/json"

	"github.com/couchcryptid/collision-data-etl/internal/domain"
)

// DecodeNormalized reads processed output back into NormalizedRecords.
// Entries that are not JSON objects, or whose fields have the wrong types,
// are skipped. Pass-through objects decode into whichever fields they share
// with the normalized schema.
func DecodeNormalized(raws []domain.RawRecord) []domain.NormalizedRecord {
	out := make([]domain.NormalizedRecord, 0, len(raws))
	for _, raw := range raws {
		if !isObject(raw.Value) {
			continue
		}
		var rec domain.NormalizedRecord
		if err := json.Unmarshal(raw.Value, &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func isObject(v json.RawMessage) bool {
	for _, b := range v {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
