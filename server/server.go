// Copyright 2016 Mesosphere, Inc.
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

package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/coreos/go-systemd/v22/activation"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

var serverLog = log.WithFields(log.Fields{"server": "status"})

// Config for the status server. A zero Port disables the TCP listener; the
// server then only runs if a listener is passed in or handed over by systemd.
type Config struct {
	IP       string       `yaml:"ip"`
	Port     int          `yaml:"port"`
	Listener net.Listener `yaml:"-" json:"-"`
}

// Server exposes the bridge's counters and health over HTTP.
type Server struct {
	config Config
	status interface{}
}

// New returns a status server. status is served as JSON on the config
// endpoint and must not carry credentials.
func New(cfg Config, status interface{}) *Server {
	return &Server{config: cfg, status: status}
}

// Run serves the status API until ctx is cancelled. It returns nil without
// serving anything when no listener is available.
// This function should be run in its own goroutine.
func (s *Server) Run(ctx context.Context) error {
	l, err := s.listener()
	if err != nil {
		return err
	}
	if l == nil {
		serverLog.Info("Status server disabled, no port or socket configured")
		return nil
	}

	srv := &http.Server{Handler: newRouter(s)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	serverLog.Infof("Status server serving requests on: %s", l.Addr().String())
	if err := srv.Serve(l); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// listener picks, in order: the configured listener, a socket passed by
// systemd, then the configured TCP port.
func (s *Server) listener() (net.Listener, error) {
	if s.config.Listener != nil {
		return s.config.Listener, nil
	}

	listeners, err := activation.Listeners()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get systemd listeners")
	}
	if len(listeners) == 1 {
		serverLog.Info("Using listener from systemd socket activation")
		return listeners[0], nil
	}

	if s.config.Port == 0 {
		return nil, nil
	}
	addr := net.JoinHostPort(s.config.IP, strconv.Itoa(s.config.Port))
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to listen on %s", addr)
	}
	return l, nil
}
