package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	backoff "github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
)

var bufPool sync.Pool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

// AMQPSink publishes audit events to a topic exchange with routing key
// <entity>.<action>, so consumers can bind to e.g. "transfer.*" or
// "*.cancel" only.
type AMQPSink struct {
	uri      string
	exchange string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func DialAMQPSink(uri, exchange string) (*AMQPSink, error) {
	sink := &AMQPSink{uri: uri, exchange: exchange}
	err := backoff.Retry(sink.connect, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5))
	if err != nil {
		return nil, err
	}
	return sink, nil
}

func (s *AMQPSink) connect() error {
	conn, err := amqp.Dial(s.uri)
	if err != nil {
		return err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	// Durable and non-auto-deleted so the exchange survives broker
	// restarts and stays declared with no bindings.
	err = channel.ExchangeDeclare(s.exchange, "topic", true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return err
	}
	s.conn = conn
	s.channel = channel
	return nil
}

func (s *AMQPSink) Log(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil || s.conn.IsClosed() {
		if err := s.connect(); err != nil {
			return err
		}
	}

	payload := bufPool.Get().(*bytes.Buffer)
	payload.Reset()
	defer bufPool.Put(payload)
	if err := json.NewEncoder(payload).Encode(event); err != nil {
		return err
	}

	key := fmt.Sprintf("%s.%s", event.Entity, event.Action)
	return s.channel.PublishWithContext(ctx,
		s.exchange,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        payload.Bytes(),
		},
	)
}

func (s *AMQPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channel != nil {
		s.channel.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
