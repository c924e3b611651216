package kafka

import (
	"encoding/json"
	"testing"

	"github.com/couchcryptid/collision-data-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage_Normalized(t *testing.T) {
	lat, lon := 37.78, -122.40
	record := domain.Record{
		ID: "report-3",
		Normalized: &domain.NormalizedRecord{
			ID:            "report-3",
			CollisionType: domain.CollisionSideswipe,
			Severity:      domain.SeverityPropertyDamage,
			Lat:           &lat,
			Lon:           &lon,
		},
	}

	msg, err := serializeToMessage(record, "run-1")
	require.NoError(t, err)

	assert.Equal(t, []byte("report-3"), msg.Key)
	assert.Contains(t, string(msg.Value), `"collision_type":"Sideswipe"`)
	assert.Contains(t, string(msg.Value), `"lat":37.78`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, HeaderShape, msg.Headers[0].Key)
	assert.Equal(t, []byte(domain.ShapeForm), msg.Headers[0].Value)
	assert.Equal(t, HeaderRunID, msg.Headers[1].Key)
	assert.Equal(t, []byte("run-1"), msg.Headers[1].Value)
}

func TestSerializeToMessage_Passthrough(t *testing.T) {
	record := domain.Record{ID: "report-1", Raw: json.RawMessage(`{"id":"legacy-9","severity":"Injury"}`)}

	msg, err := serializeToMessage(record, "run-2")
	require.NoError(t, err)

	assert.Equal(t, []byte("report-1"), msg.Key)
	assert.JSONEq(t, `{"id":"legacy-9","severity":"Injury"}`, string(msg.Value))
	assert.Equal(t, []byte(domain.ShapePassthrough), msg.Headers[0].Value)
}
