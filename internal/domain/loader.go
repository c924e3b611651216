package domain

import (
	"bytes"
	"encoding/json"
)

// InputFormat identifies how LoadRecords interpreted an input buffer.
type InputFormat string

const (
	FormatArray  InputFormat = "array"
	FormatObject InputFormat = "object"
	FormatStream InputFormat = "stream"
)

// LoadRecords splits an input buffer into raw records.
//
// The whole buffer is parsed as one JSON value first. An array yields its
// elements in order; any other value is a single record. Only when the
// buffer is not a single valid JSON value does it fall back to the lossy
// StreamDecoder, so a well-formed array or object never loses data.
func LoadRecords(buf []byte) ([]RawRecord, InputFormat) {
	var whole json.RawMessage
	if err := json.Unmarshal(buf, &whole); err == nil {
		if isArray(whole) {
			var elems []json.RawMessage
			if err := json.Unmarshal(whole, &elems); err == nil {
				return indexRecords(elems), FormatArray
			}
		}
		return indexRecords([]json.RawMessage{whole}), FormatObject
	}

	var values []json.RawMessage
	for v := range NewStreamDecoder(buf).Values() {
		values = append(values, v)
	}
	return indexRecords(values), FormatStream
}

func isArray(v json.RawMessage) bool {
	trimmed := bytes.TrimLeft(v, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

func indexRecords(values []json.RawMessage) []RawRecord {
	records := make([]RawRecord, len(values))
	for i, v := range values {
		records[i] = RawRecord{Index: i, Value: v}
	}
	return records
}
