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

package influx

import (
	"context"
	"encoding/json"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	influxClient "github.com/influxdata/influxdb1-client"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/npalombo/cloudify-amqp-influxdb/producers"
	httpClient "github.com/npalombo/cloudify-amqp-influxdb/util/http/client"
)

const (
	pingTimeout = 10 * time.Second
	maxBackoff  = 30 * time.Second
)

var (
	influxLog = log.WithFields(log.Fields{"producer": "influx"})

	// ErrClosed is returned by Dispatch once the producer has been closed.
	ErrClosed = errors.New("influx producer is closed")
	// ErrQueueFull is returned by Dispatch when the point had to be dropped.
	ErrQueueFull = errors.New("influx delivery queue is full")
)

// Config is the configuration for the InfluxDB producer.
type Config struct {
	Database string `yaml:"database"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// QueueSize bounds the number of points waiting for a delivery slot.
	QueueSize int `yaml:"queue_size"`
	// MaxInFlight bounds the number of concurrent POSTs.
	MaxInFlight int `yaml:"max_in_flight"`
	// RequestTimeout of 0 lets a request run until the producer is closed.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// MaxRetries of 0 means a failed point is logged and discarded.
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	// RateLimit in points per second; 0 is unlimited.
	RateLimit   float64 `yaml:"rate_limit"`
	PingOnStart bool    `yaml:"ping_on_start"`
}

// DefaultConfig returns the producer defaults: a local InfluxDB on port 8086
// with the stock root/root credentials.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         8086,
		User:         "root",
		Password:     "root",
		QueueSize:    1024,
		MaxInFlight:  64,
		RetryBackoff: 500 * time.Millisecond,
	}
}

// Producer converts metric events into series points and posts them to the
// InfluxDB series endpoint from its own goroutines.
type Producer struct {
	config   Config
	url      string
	redacted string
	client   *http.Client
	limiter  *rate.Limiter
	queue    chan deliveryRequest

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

var _ producers.MetricsProducer = (*Producer)(nil)

// deliveryRequest is owned by the delivery loop once it has been queued.
type deliveryRequest struct {
	name string
	body []byte
}

// New validates the configuration, optionally pings the store, and starts the
// background delivery loop.
func New(cfg Config) (*Producer, error) {
	if len(cfg.Database) == 0 {
		return nil, errors.New("Database must be defined to use the influx producer, try --influx-database")
	}
	if len(cfg.Host) == 0 {
		return nil, errors.New("Hostname must be defined to use the influx producer, try --influx-host")
	}
	if cfg.Port <= 0 {
		return nil, errors.New("Port must be defined to use the influx producer, try --influx-port")
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = DefaultConfig().MaxInFlight
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	p := &Producer{
		config:   cfg,
		url:      seriesURL(cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password),
		redacted: seriesURL(cfg.Host, cfg.Port, cfg.Database, cfg.User, "xxxxx"),
		client:   httpClient.New(cfg.RequestTimeout, cfg.MaxInFlight),
		limiter:  newLimiter(cfg.RateLimit),
		queue:    make(chan deliveryRequest, cfg.QueueSize),
		done:     make(chan struct{}),
	}

	if cfg.PingOnStart {
		if err := p.ping(); err != nil {
			return nil, err
		}
	}

	p.ctx, p.cancel = context.WithCancel(context.Background())
	go p.run()

	influxLog.Infof("Delivering series points to %s", p.redacted)
	return p, nil
}

// Endpoint returns the series URL with the password masked.
func (p *Producer) Endpoint() string {
	return p.redacted
}

// Dispatch builds a series point from the event and queues it for delivery.
// It never waits on the network. A *producers.ValidationError is returned if
// the event lacks required fields, in which case nothing is sent.
func (p *Producer) Dispatch(event producers.MetricEvent) error {
	series, err := NewSeries(event)
	if err != nil {
		validationErrorsTotal.Inc()
		return err
	}

	body, err := json.Marshal([]producers.Series{series})
	if err != nil {
		return errors.Wrapf(err, "could not encode series %s", series.Name)
	}

	select {
	case <-p.ctx.Done():
		return ErrClosed
	default:
	}

	select {
	case p.queue <- deliveryRequest{name: series.Name, body: body}:
		dispatchedTotal.Inc()
		influxLog.Debugf("Queued point for series %s", series.Name)
		return nil
	default:
		droppedTotal.Inc()
		return errors.Wrapf(ErrQueueFull, "dropping point for series %s", series.Name)
	}
}

// Close stops accepting points, cancels in-flight requests and waits for the
// delivery goroutines to return. Queued points are lost.
func (p *Producer) Close() error {
	p.cancel()
	<-p.done
	return nil
}

// run drains the queue, starting one delivery per point up to MaxInFlight at
// a time. This function is run in its own goroutine.
func (p *Producer) run() {
	defer close(p.done)

	var g errgroup.Group
	g.SetLimit(p.config.MaxInFlight)

	for {
		select {
		case <-p.ctx.Done():
			g.Wait()
			return
		case req := <-p.queue:
			g.Go(func() error {
				p.deliver(req)
				return nil
			})
		}
	}
}

// deliver posts a single point. Failures are logged and the point discarded
// once MaxRetries is exhausted; nothing is reported back to the caller of
// Dispatch.
func (p *Producer) deliver(req deliveryRequest) {
	for attempt := 0; ; attempt++ {
		if err := p.limiter.Wait(p.ctx); err != nil {
			return
		}

		err := httpClient.Post(p.ctx, p.client, p.url, req.body)
		if err == nil {
			deliveredTotal.Inc()
			influxLog.Debugf("Delivered point for series %s", req.name)
			return
		}
		if p.ctx.Err() != nil {
			return
		}

		err = p.redact(err)
		if attempt >= p.config.MaxRetries {
			deliveryErrorsTotal.Inc()
			influxLog.Errorf("Could not deliver point for series %s: %s", req.name, err)
			return
		}

		retriesTotal.Inc()
		wait := backoff(p.config.RetryBackoff, attempt)
		influxLog.Warnf("Delivery of series %s failed (%s), retrying in %s", req.name, err, wait)
		select {
		case <-time.After(wait):
		case <-p.ctx.Done():
			return
		}
	}
}

// ping checks that something answers on the store's /ping endpoint.
func (p *Producer) ping() error {
	u := url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(p.config.Host, strconv.Itoa(p.config.Port)),
	}
	ic, err := influxClient.NewClient(influxClient.Config{
		URL:       u,
		UserAgent: httpClient.USERAGENT,
		Timeout:   pingTimeout,
	})
	if err != nil {
		return errors.Wrap(err, "could not build influx client")
	}

	dur, ver, err := ic.Ping()
	if err != nil {
		return errors.Wrapf(err, "unable to connect to influxdb at %s", u.String())
	}
	influxLog.Infof("Connected to influxdb %s at %s in %s", ver, u.String(), dur)
	return nil
}

// redact keeps the store password out of logged transport errors.
func (p *Producer) redact(err error) error {
	if ue, ok := err.(*url.Error); ok {
		return &url.Error{Op: ue.Op, URL: p.redacted, Err: ue.Err}
	}
	return err
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// backoff doubles base for every attempt, caps it at maxBackoff and picks a
// random duration in the upper half of that window.
func backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base
	for i := 0; i < attempt && d < maxBackoff; i++ {
		d *= 2
	}
	if d > maxBackoff {
		d = maxBackoff
	}
	half := d / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}
