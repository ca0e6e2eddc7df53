package kafka

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	kafka_config "github.com/iBubenok/restaurant-booking-system/pkg/kafka/config"

	"github.com/segmentio/kafka-go"
)

// State is the connection lifecycle state of a Consumer. Messages are
// dispatched to the handler only while the consumer is StateRunning.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateSubscribed
	StateRunning
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateSubscribed:
		return "SUBSCRIBED"
	case StateRunning:
		return "RUNNING"
	case StateDraining:
		return "DRAINING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

type Consumer struct {
	reader     *kafka.Reader
	dlqWriter  *kafka.Writer
	brokers    []string
	topic      string
	groupID    string
	dlqTopic   string
	maxRetries int

	connectMaxRetries int
	connectBackoff    time.Duration

	handler    MessageHandler
	middleware []ConsumerMiddleware
	state      atomic.Int32
	closed     bool
	mu         sync.RWMutex
	wg         sync.WaitGroup
}

type ConsumerMiddleware func(ctx context.Context, msg Message, next MessageHandler) error

func NewConsumer(cfg *kafka_config.Config, handler MessageHandler) (*Consumer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}

	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	if cfg.GroupID == "" {
		return nil, fmt.Errorf("group ID cannot be empty")
	}

	if handler == nil {
		return nil, fmt.Errorf("message handler cannot be nil")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           cfg.Brokers,
		Topic:             cfg.Topic,
		GroupID:           cfg.GroupID,
		MinBytes:          cfg.ConsumerMinBytes,
		MaxBytes:          cfg.ConsumerMaxBytes,
		MaxWait:           cfg.ConsumerMaxWait,
		HeartbeatInterval: cfg.ConsumerHeartbeatInterval,
		SessionTimeout:    cfg.ConsumerSessionTimeout,
		RebalanceTimeout:  cfg.ConsumerRebalanceTimeout,
		StartOffset:       cfg.ConsumerStartOffset,
		Logger:            kafka.LoggerFunc(func(msg string, args ...any) {}), // Silence default logger
		ErrorLogger:       kafka.LoggerFunc(log.Printf),
	})

	consumer := &Consumer{
		reader:            reader,
		brokers:           cfg.Brokers,
		topic:             cfg.Topic,
		groupID:           cfg.GroupID,
		dlqTopic:          cfg.DLQTopic,
		maxRetries:        cfg.ConsumerMaxRetries,
		connectMaxRetries: cfg.ConnectMaxRetries,
		connectBackoff:    cfg.ConnectBackoff,
		handler:           handler,
		middleware:        make([]ConsumerMiddleware, 0),
	}
	consumer.state.Store(int32(StateDisconnected))

	if cfg.DLQTopic != "" {
		dlqWriter := &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.DLQTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			MaxAttempts:  3,
			Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
			ErrorLogger:  kafka.LoggerFunc(log.Printf),
		}
		consumer.dlqWriter = dlqWriter
	}

	return consumer, nil
}

func (c *Consumer) Use(middleware ConsumerMiddleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware = append(c.middleware, middleware)
}

// State returns the current lifecycle state
func (c *Consumer) State() State {
	return State(c.state.Load())
}

func (c *Consumer) setState(s State) {
	prev := State(c.state.Swap(int32(s)))
	if prev != s {
		log.Printf("kafka consumer %s: %s -> %s", c.groupID, prev, s)
	}
}

// Start begins consuming messages. It returns nil only when ctx is
// cancelled; any other return is a fault the caller must treat as fatal
// (exit non-zero so an orchestrator restarts the process). The read
// position is committed strictly after the handler has completed, so a
// crash mid-processing redelivers the message.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConsumerClosed
	}
	c.mu.RUnlock()

	c.wg.Add(1)
	defer c.wg.Done()

	if err := c.connect(ctx); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}
	c.setState(StateRunning)

	for {
		select {
		case <-ctx.Done():
			c.drain()
			return nil
		default:
		}

		kafkaMsg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.drain()
				return nil
			}
			log.Printf("kafka consumer error fetching message: %v", err)
			if err := c.connect(ctx); err != nil {
				return err
			}
			if ctx.Err() != nil {
				return nil
			}
			c.setState(StateRunning)
			continue
		}

		msg := c.convertMessage(kafkaMsg)

		if err := c.processMessage(ctx, msg); err != nil {
			// Transient failure that survived in-process retries: leave the
			// offset uncommitted so the message is redelivered after restart.
			c.drain()
			return fmt.Errorf("processing failed, offset not committed (topic=%s partition=%d offset=%d): %w",
				msg.Topic, msg.Partition, msg.Offset, err)
		}

		if err := c.reader.CommitMessages(ctx, kafkaMsg); err != nil {
			if errors.Is(err, context.Canceled) {
				c.drain()
				return nil
			}
			log.Printf("kafka consumer error committing offset: %v", err)
		}
	}
}

// connect verifies broker reachability with a bounded backoff before the
// reader starts (or resumes) fetching. It gives up after the configured
// retry ceiling.
func (c *Consumer) connect(ctx context.Context) error {
	c.setState(StateConnecting)

	for attempt := 1; attempt <= c.connectMaxRetries; attempt++ {
		var lastErr error
		for _, broker := range c.brokers {
			conn, err := kafka.DialContext(ctx, "tcp", broker)
			if err != nil {
				lastErr = err
				continue
			}
			_ = conn.Close()
			c.setState(StateSubscribed)
			return nil
		}

		log.Printf("kafka consumer connect attempt %d/%d failed: %v", attempt, c.connectMaxRetries, lastErr)
		c.setState(StateDisconnected)

		select {
		case <-ctx.Done():
			c.setState(StateStopped)
			return nil
		case <-time.After(c.connectBackoff):
		}
		c.setState(StateConnecting)
	}

	c.setState(StateDisconnected)
	return fmt.Errorf("%w after %d attempts (brokers=%v)", ErrConnectRetriesExhausted, c.connectMaxRetries, c.brokers)
}

func (c *Consumer) drain() {
	c.setState(StateDraining)
	c.setState(StateStopped)
}

// processMessage runs the middleware chain and the handler, retrying
// transient failures in-process. A permanent failure is routed to the DLQ
// and reported as handled so the offset advances past the poison message.
func (c *Consumer) processMessage(ctx context.Context, msg Message) error {
	c.mu.RLock()
	handler := c.handler
	for i := len(c.middleware) - 1; i >= 0; i-- {
		middleware := c.middleware[i]
		next := handler
		handler = func(ctx context.Context, m Message) error {
			return middleware(ctx, m, next)
		}
	}
	c.mu.RUnlock()

	var err error
	for {
		err = handler(ctx, msg)
		if err == nil {
			return nil
		}

		if !ShouldRetry(err, msg.GetRetryCount(), c.maxRetries) {
			break
		}

		msg.IncrementRetryCount()
		log.Printf("retrying message (attempt %d/%d): %v", msg.GetRetryCount(), c.maxRetries, err)

		select {
		case <-ctx.Done():
			return err
		case <-time.After(c.connectBackoff):
		}
	}

	if ClassifyError(err) == ErrorTypePermanent {
		if dlqErr := c.sendToDLQ(ctx, msg, err); dlqErr != nil {
			log.Printf("failed to send message to DLQ: %v (original error: %v)", dlqErr, err)
		} else {
			log.Printf("message sent to DLQ: %v", err)
		}
		// Permanent errors must not block the partition.
		return nil
	}

	return err
}

// sendToDLQ sends a failed message to the dead letter queue
func (c *Consumer) sendToDLQ(ctx context.Context, msg Message, originalErr error) error {
	if c.dlqWriter == nil {
		return nil
	}

	msg.Headers[HeaderOriginalTopic] = c.topic
	msg.Headers["dlq-error"] = originalErr.Error()
	msg.Headers["dlq-timestamp"] = time.Now().Format(time.RFC3339)
	msg.Headers["dlq-consumer-group"] = c.groupID

	kafkaMsg := kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Value,
		Time:  time.Now(),
	}

	for k, v := range msg.Headers {
		kafkaMsg.Headers = append(kafkaMsg.Headers, kafka.Header{
			Key:   k,
			Value: []byte(v),
		})
	}

	return c.dlqWriter.WriteMessages(ctx, kafkaMsg)
}

// convertMessage converts a kafka-go message to internal Message type
func (c *Consumer) convertMessage(kafkaMsg kafka.Message) Message {
	msg := Message{
		Key:       string(kafkaMsg.Key),
		Value:     kafkaMsg.Value,
		Headers:   make(map[string]string),
		Topic:     kafkaMsg.Topic,
		Partition: kafkaMsg.Partition,
		Offset:    kafkaMsg.Offset,
		Timestamp: kafkaMsg.Time,
	}

	for _, header := range kafkaMsg.Headers {
		msg.Headers[header.Key] = string(header.Value)
	}

	return msg
}

// Close closes the consumer and releases resources
func (c *Consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true

	// Wait for ongoing processing to complete
	c.wg.Wait()
	c.setState(StateStopped)

	var err error
	if c.reader != nil {
		err = c.reader.Close()
	}

	if c.dlqWriter != nil {
		dlqErr := c.dlqWriter.Close()
		if err == nil {
			err = dlqErr
		}
	}

	return err
}

// Stats returns consumer statistics
func (c *Consumer) Stats() kafka.ReaderStats {
	return c.reader.Stats()
}

// Lag returns the current consumer lag
func (c *Consumer) Lag() (int64, error) {
	stats := c.reader.Stats()
	return stats.Lag, nil
}
