package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawReports = `[
  {
    "form_type": "OL 316",
    "section_1_manufacturer": {"manufacturer_name": "Waymo LLC"},
    "section_2_vehicle_1": {
      "date_of_accident": "2024-01-05",
      "location_address": "1455 Market St",
      "location_city": "San Francisco",
      "location_state": "CA"
    },
    "section_5_accident_details": {"narrative_summary": "Rear-ended at a stop."}
  },
  {"id": "legacy-1", "date": "2023-12-01", "severity": "Injury"}
]`

const processedReports = `[
  {"id":"report-1","date":"2024-01-05","manufacturer":"Waymo LLC","collision_type":"Rear-end","severity":"Injury","lat":37.77,"lon":-122.41},
  {"id":"report-2","date":"2024-02-11","manufacturer":"Cruise LLC","collision_type":"Other","severity":"Property Damage Only","lat":null,"lon":null}
]`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNormalizeCommand_Mock(t *testing.T) {
	input := writeTemp(t, "collisions.json", rawReports)
	output := filepath.Join(t.TempDir(), "processed.json")

	stdout, err := execute(t, "normalize", "--input", input, "--output", output, "--mock")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Processed 2 records (1 normalized, 1 passed through, 1 geocoded)")

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)

	assert.Equal(t, "report-1", records[0]["id"])
	assert.Equal(t, "Rear-end", records[0]["collision_type"])
	assert.InDelta(t, 37.7749, records[0]["lat"], 0.02)
	assert.InDelta(t, -122.4194, records[0]["lon"], 0.02)
	assert.Equal(t, "legacy-1", records[1]["id"])
}

func TestNormalizeCommand_MissingInput(t *testing.T) {
	_, err := execute(t, "normalize", "--mock",
		"--input", filepath.Join(t.TempDir(), "missing.json"),
		"--output", filepath.Join(t.TempDir(), "out.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load input")
}

func TestSummaryCommand(t *testing.T) {
	input := writeTemp(t, "processed.json", processedReports)

	stdout, err := execute(t, "summary", "--input", input)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Records: 2 (1 with coordinates)")
	assert.Contains(t, stdout, "2024-01")
	assert.Contains(t, stdout, "2024-02")
	assert.Contains(t, stdout, "Waymo LLC")
	assert.Contains(t, stdout, "Property Damage Only")
}

func TestValidateCommand_Clean(t *testing.T) {
	input := writeTemp(t, "processed.json", processedReports)

	stdout, err := execute(t, "validate", "--input", input)
	require.NoError(t, err)
	assert.Contains(t, stdout, "All 2 records passed validation.")
}

func TestValidateCommand_Findings(t *testing.T) {
	input := writeTemp(t, "processed.json", `[{"id":"report-1","severity":"Minor","lat":1,"lon":null}]`)

	stdout, err := execute(t, "validate", "--input", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed: 2 problems in 1 records")
	assert.Contains(t, stdout, `unknown severity "Minor"`)
	assert.Contains(t, stdout, "lat and lon must both be set or both be null")
}

func TestGeocodeCommand_Mock(t *testing.T) {
	stdout, err := execute(t, "geocode", "1455 Market St", "--city", "San Francisco", "--mock")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1455 Market St, San Francisco, CA")
}

func TestGeocodeCommand_Nominatim(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		mu.Lock()
		queries = append(queries, q)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if q == "Mountain View, CA" {
			_, _ = w.Write([]byte(`[{"lat":"37.3861","lon":"-122.0839","display_name":"Mountain View"}]`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	t.Setenv("NOMINATIM_URL", srv.URL)
	t.Setenv("GEOCODE_PACING", "1ms")

	stdout, err := execute(t, "geocode", "Northbound Shoreline Blvd at Pear Ave", "--city", "Mountain View")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Northbound Shoreline Blvd at Pear Ave, Mountain View, CA")
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"Shoreline Blvd at Pear Ave, Mountain View, CA",
		"Shoreline Blvd and Pear Ave, Mountain View, CA",
		"Mountain View, CA",
	}, queries)
}

func TestNormalizeCommand_RepeatedAddressServedFromCache(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.Query().Get("q"))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"37.7765","lon":"-122.4172","display_name":"1455 Market St"}]`))
	}))
	defer srv.Close()

	t.Setenv("NOMINATIM_URL", srv.URL)
	t.Setenv("GEOCODE_PACING", "1ms")

	var reports []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(rawReports), &reports))
	body, err := json.Marshal([]json.RawMessage{reports[0], reports[0]})
	require.NoError(t, err)

	input := writeTemp(t, "collisions.json", string(body))
	output := filepath.Join(t.TempDir(), "processed.json")

	stdout, err := execute(t, "normalize", "--input", input, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Processed 2 records (2 normalized, 0 passed through, 2 geocoded)")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"1455 Market St, San Francisco, CA"}, queries)
}

func TestGeocodeCommand_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	t.Setenv("NOMINATIM_URL", srv.URL)
	t.Setenv("GEOCODE_PACING", "1ms")

	_, err := execute(t, "geocode", "Nowhere Rd", "--city", "Atlantis", "--state", "ZZ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no coordinates found for "Nowhere Rd, Atlantis, ZZ"`)
}
