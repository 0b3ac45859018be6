//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/notam-briefing/internal/adapter/airports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node KRaft broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("notam-briefing-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func loadAirports(t *testing.T) *airports.Database {
	t.Helper()
	db, err := airports.Open(filepath.Join("..", "pipeline", "testdata", "apt_base_sample.csv"))
	require.NoError(t, err)
	return db
}

// fakeFAA serves the FAA NOTAM search API. Location queries return one NOTAM
// per whole-degree cell; airport queries return one NOTAM for the airport.
func fakeFAA(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("client_id") != "integration" {
			_, _ = w.Write([]byte(`{"error":"Invalid client id or secret"}`))
			return
		}

		q := r.URL.Query()
		var id, location string
		if code := q.Get("icaoLocation"); code != "" {
			id, location = "apt_"+code, code
		} else {
			lat, _ := strconv.ParseFloat(q.Get("locationLatitude"), 64)
			lon, _ := strconv.ParseFloat(q.Get("locationLongitude"), 64)
			id = fmt.Sprintf("cell_%d_%d", int(math.Floor(lat)), int(math.Floor(lon)))
			location = "ZZZ"
		}

		body, err := json.Marshal(map[string]any{
			"pageSize":   1000,
			"pageNum":    1,
			"totalCount": 1,
			"totalPages": 1,
			"items": []any{map[string]any{
				"type": "Feature",
				"properties": map[string]any{"coreNOTAMData": map[string]any{
					"notam": map[string]any{
						"id":             id,
						"number":         "A0001/24",
						"type":           "N",
						"issued":         "2024-10-01T00:00:00.000Z",
						"effectiveStart": "2024-10-01T00:00:00.000Z",
						"effectiveEnd":   "PERM",
						"location":       location,
						"classification": "DOM",
						"text":           "TEST NOTAM " + id,
					},
				}},
			}},
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// readBriefing reads one message from the sink and decodes its headers.
func readBriefing(ctx context.Context, t *testing.T, consumer *kafkago.Reader) (kafkago.Message, map[string]string) {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return msg, headers
}
