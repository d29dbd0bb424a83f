package market

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamSink_XAdd(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	sink := NewStreamSink(client, "market:ticks", 0)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, sink.Publish(ctx, Quote{At: at, Label: "12:00:00", BTC: 50100, ETH: 2990, Total: 50000}))
	require.NoError(t, sink.Publish(ctx, Quote{At: at.Add(time.Second), Label: "12:00:01", BTC: 50200, ETH: 2995}))

	msgs, err := client.XRange(ctx, "market:ticks", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	var q Quote
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &q))
	assert.Equal(t, "12:00:00", q.Label)
	assert.Equal(t, 50100.0, q.BTC)
	assert.Equal(t, "1772366400", msgs[0].Values["timestamp"])
}

type fakePublisher struct {
	topic   string
	payload []byte
	err     error
}

func (p *fakePublisher) Publish(topic string, _ byte, _ bool, payload []byte) error {
	p.topic = topic
	p.payload = payload
	return p.err
}

func TestMQTTSink_Publish(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewMQTTSink(pub, "demohub/market/ticks", 0)

	require.NoError(t, sink.Publish(context.Background(), Quote{Label: "10:00:00", ETH: 3001}))
	assert.Equal(t, "demohub/market/ticks", pub.topic)
	assert.Contains(t, string(pub.payload), `"eth":3001`)

	pub.err = errors.New("not connected")
	assert.Error(t, sink.Publish(context.Background(), Quote{}))
}

type mapKV map[string]string

func (m mapKV) Set(_ context.Context, key, value string, _ time.Duration) error {
	m[key] = value
	return nil
}

func TestLatestSink_OverwritesKey(t *testing.T) {
	kv := mapKV{}
	sink := NewLatestSink(kv, "demohub:market:latest", time.Minute)

	require.NoError(t, sink.Publish(context.Background(), Quote{Label: "10:00:00", BTC: 1}))
	require.NoError(t, sink.Publish(context.Background(), Quote{Label: "10:00:01", BTC: 2}))

	var q Quote
	require.NoError(t, json.Unmarshal([]byte(kv["demohub:market:latest"]), &q))
	assert.Equal(t, "10:00:01", q.Label)
	assert.Equal(t, 2.0, q.BTC)
}
