// Copyright 2017 Mesosphere, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package amqp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"github.com/npalombo/cloudify-amqp-influxdb/collectors"
	"github.com/npalombo/cloudify-amqp-influxdb/producers"
)

var amqpLog = log.WithFields(log.Fields{"collector": "amqp"})

// channel is the subset of *amqp.Channel the collector relies on.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Collector subscribes to a topic exchange and feeds every message it
// receives to a collectors.MessageProcessor.
type Collector struct {
	config    Config
	processor collectors.MessageProcessor

	conn       io.Closer
	channel    channel
	queue      string
	deliveries <-chan amqp.Delivery
	closed     <-chan *amqp.Error
}

var _ collectors.MetricsCollector = (*Collector)(nil)

// New connects to the broker and sets up the subscription: a non-durable,
// auto-deleted topic exchange, an anonymous auto-deleted queue bound to it
// with the configured routing key, and an auto-ack consumer on that queue.
// Failing to reach the broker is returned as an error; there is no retry.
func New(cfg Config, processor collectors.MessageProcessor) (*Collector, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	clientConfig, err := cfg.clientConfig()
	if err != nil {
		return nil, err
	}

	amqpLog.Infof("Attempting to connect to amqp broker: %s", cfg.address())
	conn, err := amqp.DialConfig(cfg.uri(), clientConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "could not connect to amqp broker at %s", cfg.address())
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "could not open amqp channel")
	}

	c, err := newCollector(cfg, processor, ch)
	if err != nil {
		conn.Close()
		return nil, err
	}
	c.conn = conn
	c.closed = conn.NotifyClose(make(chan *amqp.Error, 1))
	return c, nil
}

// newCollector declares and binds the subscription on an open channel.
func newCollector(cfg Config, processor collectors.MessageProcessor, ch channel) (*Collector, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if processor == nil {
		return nil, errors.New("a message processor is required")
	}

	err := ch.ExchangeDeclare(
		cfg.Exchange,
		amqp.ExchangeTopic,
		false, // durable
		true,  // auto-delete
		false, // internal
		false, // no-wait
		nil)
	if err != nil {
		return nil, errors.Wrapf(err, "could not declare exchange %s", cfg.Exchange)
	}

	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // auto-delete
		false, // exclusive
		false, // no-wait
		nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not declare queue")
	}

	if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		return nil, errors.Wrapf(err, "could not bind queue %s to exchange %s", q.Name, cfg.Exchange)
	}

	deliveries, err := ch.Consume(
		q.Name,
		"",    // consumer tag
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil)
	if err != nil {
		return nil, errors.Wrapf(err, "could not consume from queue %s", q.Name)
	}

	return &Collector{
		config:     cfg,
		processor:  processor,
		channel:    ch,
		queue:      q.Name,
		deliveries: deliveries,
	}, nil
}

// Run processes messages until ctx is cancelled, in which case it returns
// nil, or until the broker connection goes away, in which case it returns an
// error. This method will block.
func (c *Collector) Run(ctx context.Context) error {
	amqpLog.Infof("Consuming from exchange %s with routing key %q on queue %s",
		c.config.Exchange, c.config.RoutingKey, c.queue)
	for {
		select {
		case <-ctx.Done():
			amqpLog.Info("Stopping amqp collector")
			return nil

		case amqpErr, ok := <-c.closed:
			if !ok || amqpErr == nil {
				return errors.New("amqp connection closed")
			}
			return errors.Wrap(amqpErr, "amqp connection lost")

		case d, ok := <-c.deliveries:
			if !ok {
				return errors.New("amqp delivery channel closed")
			}
			c.handle(d)
		}
	}
}

// Close tears down the channel and the connection.
func (c *Collector) Close() error {
	var err error
	if c.channel != nil {
		err = c.channel.Close()
	}
	if c.conn != nil {
		if cerr := c.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// handle decodes a single delivery and passes it to the processor. Nothing
// that happens here is allowed to stop the Run loop: the message was already
// acknowledged on receipt.
func (c *Collector) handle(d amqp.Delivery) {
	receivedTotal.Inc()
	amqpLog.Debugf("Received message with routing key %s (%d bytes)", d.RoutingKey, len(d.Body))

	record, err := decode(d.Body)
	if err != nil {
		decodeErrorsTotal.Inc()
		amqpLog.Warnf("Dropping message with routing key %s, could not decode body: %s", d.RoutingKey, err)
		return
	}

	if err := c.process(record); err != nil {
		processingErrorsTotal.Inc()
		amqpLog.Warnf("Failed message processing: %s", err)
	}
}

func (c *Collector) process(record producers.MetricEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("message processor panicked: %v", r)
		}
	}()
	return c.processor(record)
}

// decode parses a message body as a single JSON object. Numbers are kept as
// json.Number so they are forwarded exactly as received.
func decode(body []byte) (producers.MetricEvent, error) {
	var record producers.MetricEvent

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&record); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}
	return record, nil
}
