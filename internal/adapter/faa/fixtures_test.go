package faa

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/notam-briefing/internal/observability"
)

const (
	testClientID     = "test-client-id"
	testClientSecret = "test-client-secret"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

// notamItem mirrors one Feature item as published by the FAA NOTAM API.
func notamItem(id, number string) map[string]any {
	return map[string]any{
		"type": "Feature",
		"properties": map[string]any{
			"coreNOTAMData": map[string]any{
				"notamEvent": map[string]any{"scenario": "6000"},
				"notam": map[string]any{
					"id":             id,
					"series":         "A",
					"number":         number,
					"type":           "N",
					"issued":         "2024-10-02T19:54:00.000Z",
					"affectedFIR":    "KZJX",
					"selectionCode":  "QCBLS",
					"minimumFL":      "000",
					"maximumFL":      "040",
					"location":       "ZJX",
					"effectiveStart": "2024-10-02T19:50:00.000Z",
					"effectiveEnd":   "2024-10-14T22:00:00.000Z",
					"text":           "ZJX AIRSPACE ADS-B SER MAY NOT BE AVBL",
					"classification": "INTL",
					"accountId":      "KZJX",
					"lastUpdated":    "2024-10-02T19:54:00.000Z",
					"icaoLocation":   "KZJX",
					"lowerLimit":     "SFC",
					"upperLimit":     "3999FT.",
					"purpose":        "NBO",
					"scope":          "AE",
				},
				"notamTranslation": []any{
					map[string]any{"type": "ICAO", "formattedText": number + " NOTAMN\nQ) KZJX/QCBLS////000/040/"},
					map[string]any{"type": "LOCAL_FORMAT", "simpleText": "!ZJX ADS-B"},
				},
			},
		},
		"geometry": map[string]any{"type": "GeometryCollection"},
	}
}

// geometryItem is a non-NOTAM item the API may interleave with results.
func geometryItem() map[string]any {
	return map[string]any{
		"type":       "Point",
		"geometry":   map[string]any{"type": "Point", "coordinates": []any{0}},
		"properties": map[string]any{"name": "Dinagat Islands"},
	}
}

func notamField(item map[string]any, key string, value any) map[string]any {
	props := item["properties"].(map[string]any)
	core := props["coreNOTAMData"].(map[string]any)
	core["notam"].(map[string]any)[key] = value
	return item
}

func pageBody(t *testing.T, pageNum, totalPages int, items ...map[string]any) []byte {
	t.Helper()
	if items == nil {
		items = []map[string]any{}
	}
	b, err := json.Marshal(map[string]any{
		"pageSize":   MaxPageSize,
		"pageNum":    pageNum,
		"totalCount": len(items),
		"totalPages": totalPages,
		"items":      items,
	})
	require.NoError(t, err)
	return b
}
