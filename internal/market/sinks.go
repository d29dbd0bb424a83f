package market

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// StreamSink appends each quote to a Redis stream.
type StreamSink struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewStreamSink 创建 Redis Streams 行情输出；maxLen > 0 时近似裁剪 stream 长度
func NewStreamSink(client *redis.Client, stream string, maxLen int64) *StreamSink {
	return &StreamSink{client: client, stream: stream, maxLen: maxLen}
}

func (s *StreamSink) Publish(ctx context.Context, q Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": fmt.Sprintf("%d", q.At.Unix()),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to add quote to stream %s: %w", s.stream, err)
	}
	return nil
}

// Publisher is the subset of an MQTT client the feed needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTSink publishes each quote as JSON to one topic.
type MQTTSink struct {
	pub   Publisher
	topic string
	qos   byte
}

func NewMQTTSink(pub Publisher, topic string, qos byte) *MQTTSink {
	return &MQTTSink{pub: pub, topic: topic, qos: qos}
}

func (s *MQTTSink) Publish(_ context.Context, q Quote) error {
	payload, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}
	return s.pub.Publish(s.topic, s.qos, false, payload)
}

// KV is the subset of a key-value store LatestSink needs.
type KV interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// LatestSink caches the newest quote under one key.
type LatestSink struct {
	kv  KV
	key string
	ttl time.Duration
}

func NewLatestSink(kv KV, key string, ttl time.Duration) *LatestSink {
	return &LatestSink{kv: kv, key: key, ttl: ttl}
}

func (s *LatestSink) Publish(ctx context.Context, q Quote) error {
	b, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}
	return s.kv.Set(ctx, s.key, string(b), s.ttl)
}

var (
	_ Sink = (*StreamSink)(nil)
	_ Sink = (*MQTTSink)(nil)
	_ Sink = (*LatestSink)(nil)
)
