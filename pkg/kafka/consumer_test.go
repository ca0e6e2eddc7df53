package kafka

import (
	"context"
	"testing"
	"time"
)

// Cancellation while the consumer is waiting out a connect backoff must
// leave it STOPPED. Start must not flip a stopped consumer back to RUNNING
// on its way out.
func TestStart_CancelDuringConnectBackoffStaysStopped(t *testing.T) {
	c := &Consumer{
		brokers:           []string{"127.0.0.1:1"},
		topic:             "bookings",
		groupID:           "test-group",
		connectMaxRetries: 5,
		connectBackoff:    10 * time.Second,
		handler: func(ctx context.Context, msg Message) error {
			t.Error("handler should not run without a connection")
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start returned %v, want nil on cancellation", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancellation")
	}

	if got := c.State(); got != StateStopped {
		t.Errorf("consumer state is %s, want %s", got, StateStopped)
	}
}
