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
	"errors"
	"net"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Config holds the topic binding and the broker connection parameters. When
// URL is set it is handed to the client as-is and the individual connection
// fields are ignored.
type Config struct {
	URL            string        `yaml:"url"`
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	Vhost          string        `yaml:"vhost"`
	Heartbeat      time.Duration `yaml:"heartbeat"`
	ConnectionName string        `yaml:"connection_name"`
	// CACertificatePath switches the connection to amqps and verifies the
	// broker against this PEM bundle.
	CACertificatePath string `yaml:"ca_certificate_path"`

	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
}

// DefaultConfig returns the stock RabbitMQ connection parameters.
func DefaultConfig() Config {
	return Config{
		Host:           "localhost",
		Port:           5672,
		Username:       "guest",
		Password:       "guest",
		Vhost:          "/",
		Heartbeat:      10 * time.Second,
		ConnectionName: "amqp-influxdb",
	}
}

func (c Config) validate() error {
	if len(c.Exchange) == 0 {
		return errors.New("Exchange must be defined to use the amqp collector, try --amqp-exchange")
	}
	if len(c.RoutingKey) == 0 {
		return errors.New("Routing key must be defined to use the amqp collector, try --amqp-routing-key")
	}
	return nil
}

// uri returns the AMQP URI to dial.
func (c Config) uri() string {
	if len(c.URL) > 0 {
		return c.URL
	}
	scheme := "amqp"
	if len(c.CACertificatePath) > 0 {
		scheme = "amqps"
	}
	return amqp.URI{
		Scheme:   scheme,
		Host:     c.Host,
		Port:     c.Port,
		Username: c.Username,
		Password: c.Password,
		Vhost:    c.Vhost,
	}.String()
}

// address is a loggable description of the broker, without credentials.
func (c Config) address() string {
	if len(c.URL) > 0 {
		u, err := amqp.ParseURI(c.URL)
		if err != nil {
			return "<unparseable url>"
		}
		return net.JoinHostPort(u.Host, strconv.Itoa(u.Port)) + " vhost " + u.Vhost
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port)) + " vhost " + c.Vhost
}

// clientConfig maps the remaining connection parameters onto the client's
// own configuration.
func (c Config) clientConfig() (amqp.Config, error) {
	props := amqp.NewConnectionProperties()
	if len(c.ConnectionName) > 0 {
		props.SetClientConnectionName(c.ConnectionName)
	}
	tlsConfig, err := newTLSConfig(c.CACertificatePath)
	if err != nil {
		return amqp.Config{}, err
	}
	return amqp.Config{
		Heartbeat:       c.Heartbeat,
		Locale:          "en_US",
		Properties:      props,
		TLSClientConfig: tlsConfig,
	}, nil
}
