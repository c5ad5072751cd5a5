package kafka

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/waterpoints-service/internal/config"
	"github.com/couchcryptid/waterpoints-service/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	created := time.Date(2026, 3, 2, 11, 30, 0, 0, time.FixedZone("CET", 3600))
	r := domain.Report{
		ID:          "r1",
		CreatedAt:   created,
		WaterpuntID: "42",
		IssueType:   "leak",
		Description: "Melding voor: Fontein A",
		Status:      domain.ReportStatusOpen,
	}

	msg, err := serializeToMessage(r)
	require.NoError(t, err)

	assert.Equal(t, []byte("42"), msg.Key)

	var decoded domain.Report
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "r1", decoded.ID)
	assert.Equal(t, "Melding voor: Fontein A", decoded.Description)
	assert.Contains(t, string(msg.Value), `"waterpunt_id":"42"`)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "issue_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("leak"), msg.Headers[0].Value)
	assert.Equal(t, "created_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2026-03-02T10:30:00Z"), msg.Headers[1].Value)
}

func TestNewWriter(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:      []string{"localhost:9092"},
		KafkaReportsTopic: "water-point-reports",
	}

	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "water-point-reports", w.writer.Topic)
}
