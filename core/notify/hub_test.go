package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *Subscriber) Message {
	t.Helper()
	select {
	case msg := <-sub.Messages():
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestPublishReachesSubscriber(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("job-1")

	h.Publish("job-1", "Screenshot captured")

	msg := receive(t, sub)
	assert.Equal(t, "job-1", msg.JobID)
	assert.Equal(t, "Screenshot captured", msg.Message)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestJobIsolation(t *testing.T) {
	h := NewHub()
	subX := h.Subscribe("job-x")
	subY := h.Subscribe("job-y")

	h.Publish("job-y", "only for y")

	receive(t, subY)
	select {
	case msg := <-subX.Messages():
		t.Fatalf("subscriber for job-x received %q", msg.Message)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPerJobOrderPreserved(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("job-1")

	h.Publish("job-1", "first")
	h.Publish("job-1", "second")
	h.Publish("job-1", "third")

	assert.Equal(t, "first", receive(t, sub).Message)
	assert.Equal(t, "second", receive(t, sub).Message)
	assert.Equal(t, "third", receive(t, sub).Message)
}

func TestNoReplayForLateSubscriber(t *testing.T) {
	h := NewHub()
	h.Publish("job-1", "before anyone listened")

	sub := h.Subscribe("job-1")
	select {
	case msg := <-sub.Messages():
		t.Fatalf("late subscriber received replayed %q", msg.Message)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeIdempotent(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("job-1")

	h.Unsubscribe(sub)
	h.Unsubscribe(sub)
	h.Unsubscribe(nil)

	select {
	case <-sub.Done():
	default:
		t.Fatal("Done not closed after unsubscribe")
	}

	// Publishing to a job with no remaining subscribers is a no-op.
	h.Publish("job-1", "into the void")
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("job-1")

	// Nobody drains sub; fill its buffer and keep publishing.
	for i := 0; i < subscriberBuffer*2; i++ {
		done := make(chan struct{})
		go func() {
			h.Publish("job-1", "progress")
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("publish blocked on a slow subscriber")
		}
	}

	// The buffered prefix is still delivered in order.
	require.Equal(t, "progress", receive(t, sub).Message)
}
