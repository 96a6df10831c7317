//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/ndvi-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/ndvi-dashboard/internal/config"
	"github.com/couchcryptid/ndvi-dashboard/internal/domain"
	"github.com/couchcryptid/ndvi-dashboard/internal/observability"
	"github.com/couchcryptid/ndvi-dashboard/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const (
	testTopic  = "test-ndvi-dataset-events"
	samplePath = "../pipeline/testdata/ndvi_sample.csv"
)

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	kc, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("ndvi-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := kc.Terminate(context.Background()); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := kc.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cconn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cconn.Close()

	require.NoError(t, cconn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func readEvent(ctx context.Context, t *testing.T, r *kafkago.Reader) (kafkago.Message, domain.DatasetLoaded) {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := r.ReadMessage(readCtx)
	require.NoError(t, err, "read dataset event")
	var event domain.DatasetLoaded
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	return msg, event
}

func copySample(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(samplePath)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "ndvi.csv")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// TestDatasetEventsPublished loads the sample dataset with the Kafka writer
// attached, then reloads a changed file, and checks both events on the topic.
func TestDatasetEventsPublished(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	writer := kafka.NewWriter(cfg, logger)
	defer writer.Close()

	metrics := observability.NewMetricsForTesting()
	path := copySample(t)
	ds := pipeline.NewDataset(path, logger, metrics, pipeline.WithNotifier(writer))

	table, err := ds.Table(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, table.Len())
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("success")), 0)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	defer reader.Close()

	msg, first := readEvent(ctx, t, reader)
	assert.Equal(t, first.Checksum, string(msg.Key))
	assert.Equal(t, path, first.Path)
	assert.Equal(t, 10, first.RowsRead)
	assert.Equal(t, 6, first.RowsKept)
	assert.Equal(t, 2, first.DroppedMissing)
	assert.Equal(t, 2, first.DroppedOutOfRange)
	assert.Equal(t, 3, first.Districts)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "6", headers["rows_kept"])

	// Append a row and push the mtime forward so the fingerprint changes.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("2021-06,Galle,0.55,0.5,10,700\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	table, err = ds.Table(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, table.Len())

	_, second := readEvent(ctx, t, reader)
	assert.NotEqual(t, first.Checksum, second.Checksum)
	assert.Equal(t, 7, second.RowsKept)
	assert.Equal(t, 4, second.Districts)
}
