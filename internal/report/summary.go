package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/couchcryptid/collision-data-etl/internal/domain"
)

// Unknown labels records with an empty grouping field.
const Unknown = "Unknown"

// dateLayouts are tried in order when bucketing records by month.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// Count is one bucket of an aggregation.
type Count struct {
	Key   string
	Count int
}

// Summary aggregates processed records the way the dashboard charts them.
type Summary struct {
	Total    int
	Geocoded int

	// ByMonth is keyed YYYY-MM in ascending order. Records without a
	// parseable date are left out.
	ByMonth []Count
	// The remaining groupings are ordered by count descending, then key.
	ByManufacturer  []Count
	ByCollisionType []Count
	BySeverity      []Count
}

// Summarize aggregates normalized records.
func Summarize(records []domain.NormalizedRecord) Summary {
	months := map[string]int{}
	manufacturers := map[string]int{}
	types := map[string]int{}
	severities := map[string]int{}

	s := Summary{Total: len(records)}
	for _, r := range records {
		if r.Lat != nil && r.Lon != nil {
			s.Geocoded++
		}
		if m, ok := monthKey(r.Date); ok {
			months[m]++
		}
		manufacturers[orUnknown(r.Manufacturer)]++
		types[orUnknown(string(r.CollisionType))]++
		severities[orUnknown(string(r.Severity))]++
	}

	s.ByMonth = counts(months)
	slices.SortFunc(s.ByMonth, func(a, b Count) int { return cmp.Compare(a.Key, b.Key) })
	s.ByManufacturer = byCountDesc(manufacturers)
	s.ByCollisionType = byCountDesc(types)
	s.BySeverity = byCountDesc(severities)
	return s
}

func monthKey(date string) (string, bool) {
	if date == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format("2006-01"), true
		}
	}
	return "", false
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

func counts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Key: k, Count: v})
	}
	return out
}

func byCountDesc(m map[string]int) []Count {
	out := counts(m)
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}
