package nats

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/daoteng/backoffice/internal/port/messagequeue"
)

// testConnect connects to NATS or skips the test if NATS_URL is not set.
func testConnect(t *testing.T) *Queue {
	t.Helper()

	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("requires NATS_URL")
	}

	q, err := Connect(context.Background(), url)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() {
		if err := q.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return q
}

func TestQueue_PublishSubscribe(t *testing.T) {
	q := testConnect(t)
	subject := messagequeue.SubjectCardsChanged("test_" + t.Name())

	want := messagequeue.CardChangedPayload{
		Collection: "cases",
		CardID:     "L-001",
		Kind:       messagequeue.ChangeUpdated,
	}
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var (
		mu       sync.Mutex
		received *messagequeue.CardChangedPayload
		done     = make(chan struct{})
		once     sync.Once
	)

	stop, err := q.Subscribe(context.Background(), subject, func(_ context.Context, _ string, d []byte) error {
		var got messagequeue.CardChangedPayload
		if err := json.Unmarshal(d, &got); err != nil {
			return err
		}
		mu.Lock()
		received = &got
		mu.Unlock()
		once.Do(func() { close(done) })
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer stop()

	if err := q.Publish(context.Background(), subject, data); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}

	mu.Lock()
	defer mu.Unlock()

	if received == nil {
		t.Fatal("handler was not called")
	}
	if received.CardID != want.CardID || received.Kind != want.Kind {
		t.Errorf("got %+v, want %+v", *received, want)
	}
}

func TestQueue_WildcardSubscribe(t *testing.T) {
	q := testConnect(t)

	done := make(chan string, 1)
	stop, err := q.Subscribe(context.Background(), messagequeue.SubjectCardsWildcard, func(_ context.Context, subj string, _ []byte) error {
		select {
		case done <- subj:
		default:
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer stop()

	subject := messagequeue.SubjectCardsChanged("members")
	if err := q.Publish(context.Background(), subject, []byte(`{"collection":"members"}`)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-done:
		if got != subject {
			t.Errorf("subject = %q, want %q", got, subject)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for wildcard delivery")
	}
}

func TestQueue_IsConnected(t *testing.T) {
	q := testConnect(t)

	if !q.IsConnected() {
		t.Error("IsConnected() = false after Connect, want true")
	}
}
