package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/couchcryptid/collision-data-etl/internal/domain"
)

// Finding is one integrity problem in a processed file.
type Finding struct {
	Index   int
	ID      string
	Message string
}

func (f Finding) String() string {
	if f.ID == "" {
		return fmt.Sprintf("record %d: %s", f.Index, f.Message)
	}
	return fmt.Sprintf("record %d (%s): %s", f.Index, f.ID, f.Message)
}

// checker collects findings for one pass over the records.
type checker struct {
	findings []Finding
}

func (c *checker) errorf(index int, id, format string, args ...any) {
	c.findings = append(c.findings, Finding{Index: index, ID: id, Message: fmt.Sprintf(format, args...)})
}

// Validate checks processed output for integrity problems: missing,
// duplicate, or out-of-order report ids, unknown severities or collision
// types, and half-present or out-of-range coordinates. Collision types are
// checked against rules plus Other. Non-object entries are pass-through
// values and are not checked.
func Validate(raws []domain.RawRecord, rules domain.Rules) []Finding {
	severities := map[string]bool{
		string(domain.SeverityFatality):       true,
		string(domain.SeverityInjury):         true,
		string(domain.SeverityPropertyDamage): true,
	}
	types := map[string]bool{string(domain.CollisionOther): true}
	for _, r := range rules.CollisionRules {
		types[string(r.Type)] = true
	}

	c := &checker{}
	seen := map[string]int{}
	for _, raw := range raws {
		var doc map[string]any
		if err := json.Unmarshal(raw.Value, &doc); err != nil || doc == nil {
			continue
		}
		i := raw.Index

		id, _ := doc["id"].(string)
		switch {
		case id == "":
			c.errorf(i, "", "missing id")
		case seen[id] > 0:
			c.errorf(i, id, "duplicate id, first seen at record %d", seen[id]-1)
		default:
			seen[id] = i + 1
		}
		if n, ok := reportNumber(id); ok && n != i+1 {
			c.errorf(i, id, "id out of order, expected %s", domain.ReportID(i))
		}

		checkEnum(c, i, id, doc, "severity", severities)
		checkEnum(c, i, id, doc, "collision_type", types)
		checkCoordinates(c, i, id, doc)
	}
	return c.findings
}

func reportNumber(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, "report-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	return n, err == nil
}

func checkEnum(c *checker, i int, id string, doc map[string]any, key string, allowed map[string]bool) {
	v, present := doc[key]
	if !present || v == nil {
		return
	}
	s, ok := v.(string)
	if !ok {
		c.errorf(i, id, "%s is not a string", key)
		return
	}
	if !allowed[s] {
		c.errorf(i, id, "unknown %s %q", key, s)
	}
}

func checkCoordinates(c *checker, i int, id string, doc map[string]any) {
	lat, latOK := doc["lat"].(float64)
	lon, lonOK := doc["lon"].(float64)
	latSet := doc["lat"] != nil
	lonSet := doc["lon"] != nil

	if latSet != lonSet {
		c.errorf(i, id, "lat and lon must both be set or both be null")
		return
	}
	if !latSet {
		return
	}
	if !latOK || !lonOK {
		c.errorf(i, id, "lat and lon must be numbers")
		return
	}
	if lat < -90 || lat > 90 {
		c.errorf(i, id, "lat %v out of range", lat)
	}
	if lon < -180 || lon > 180 {
		c.errorf(i, id, "lon %v out of range", lon)
	}
}
