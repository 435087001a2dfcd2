package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func TestNewKafkaClient(t *testing.T) {
	assert.False(t, NewKafkaClient("").Enabled())
	assert.False(t, NewKafkaClient(" , ").Enabled())

	client := NewKafkaClient("kafka-1:9092, kafka-2:9092")
	assert.True(t, client.Enabled())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, client.Brokers)

	writer := client.NewWriter("orders.placed")
	assert.Equal(t, "orders.placed", writer.Topic)
}

func TestPublishJSON(t *testing.T) {
	w := &recordingWriter{}

	err := PublishJSON(context.Background(), w, "ORD-202501-001", map[string]any{"lineCount": 2})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)
	assert.Equal(t, "ORD-202501-001", string(w.messages[0].Key))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &body))
	assert.Equal(t, float64(2), body["lineCount"])
}
