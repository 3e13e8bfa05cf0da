package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"

	"github.com/wyfcoding/fxorderbook/pkg/logger"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestProducerSendMessage(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "fx.orders.audit")

	ctx := logger.WithRequestID(context.Background(), "req-1")
	if err := p.SendMessage(ctx, "order-1", map[string]string{"type": "created"}); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "order-1" {
		t.Errorf("unexpected key %q", msg.Key)
	}
	var body map[string]string
	if err := json.Unmarshal(msg.Value, &body); err != nil || body["type"] != "created" {
		t.Errorf("unexpected body %s (err=%v)", msg.Value, err)
	}
	if len(msg.Headers) != 1 || msg.Headers[0].Key != "request_id" || string(msg.Headers[0].Value) != "req-1" {
		t.Errorf("expected request_id header, got %+v", msg.Headers)
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestProducerSendMessageError(t *testing.T) {
	boom := errors.New("broker down")
	p := newProducer(&fakeWriter{err: boom}, "t")
	if err := p.SendMessage(context.Background(), "k", 1); !errors.Is(err, boom) {
		t.Fatalf("expected broker error, got %v", err)
	}
}

func TestNewProducerValidatesConfig(t *testing.T) {
	if _, err := NewProducer(ProducerConfig{Topic: "t"}); err == nil {
		t.Fatal("expected error without brokers")
	}
	if _, err := NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}}); err == nil {
		t.Fatal("expected error without topic")
	}
}
