package jsonfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/collision-data-etl/internal/domain"
)

// Reader loads raw records from a JSON file holding an array, a single
// document, or concatenated documents.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a Reader for path.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Load reads the whole file. A read failure is the only error; content that
// does not parse yields as many records as could be decoded.
func (r *Reader) Load(ctx context.Context) ([]domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", r.path, err)
	}

	records, format := domain.LoadRecords(buf)
	r.logger.Info("input loaded", "path", r.path, "format", string(format), "records", len(records), "bytes", len(buf))
	return records, nil
}
