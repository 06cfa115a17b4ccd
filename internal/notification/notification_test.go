package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestDecode(t *testing.T) {
	raw, err := json.Marshal(NewPostPublished("post-1", "ev-1", "svc-1"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	ev, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ev.PostID != "post-1" || ev.EventID != "ev-1" || ev.ServiceID != "svc-1" {
		t.Errorf("Decode = %+v", ev)
	}
	if ev.PublishedAt.IsZero() {
		t.Error("PublishedAt should be set")
	}
}

func TestDecode_Invalid(t *testing.T) {
	for _, raw := range []string{
		`not json`,
		`{"type":"post.deleted","post_id":"p"}`,
		`{"type":"post.published"}`,
	} {
		if _, err := Decode([]byte(raw)); err == nil {
			t.Errorf("Decode(%s) should fail", raw)
		}
	}
}

func TestKafkaProducer_NilSafe(t *testing.T) {
	if p := NewKafkaProducer(nil, "topic"); p != nil {
		t.Fatal("no brokers should yield a nil producer")
	}
	var p *KafkaProducer
	if err := p.Publish(context.Background(), NewPostPublished("p", "e", "s")); err != nil {
		t.Errorf("nil Publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

// fakeReader serves queued messages, then blocks until ctx is done.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	drained   chan struct{}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	select {
	case r.drained <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestConsumer_Run(t *testing.T) {
	good, _ := json.Marshal(NewPostPublished("post-1", "ev-1", "svc-1"))
	failing, _ := json.Marshal(NewPostPublished("post-2", "ev-1", "svc-1"))
	r := &fakeReader{
		queue: []kafka.Message{
			{Offset: 1, Value: good},
			{Offset: 2, Value: []byte("garbage")},
			{Offset: 3, Value: failing},
		},
		drained: make(chan struct{}, 1),
	}
	var handled []string
	c := NewConsumer(r, func(_ context.Context, ev PostPublished) error {
		handled = append(handled, ev.PostID)
		if ev.PostID == "post-2" {
			return errors.New("smtp down")
		}
		return nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	<-r.drained
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(handled) != 2 || handled[0] != "post-1" || handled[1] != "post-2" {
		t.Errorf("handled = %v, want [post-1 post-2]", handled)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.committed) != 3 {
		t.Errorf("committed = %v, want all three offsets", r.committed)
	}
}
