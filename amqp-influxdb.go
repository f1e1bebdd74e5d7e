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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/npalombo/cloudify-amqp-influxdb/collectors/amqp"
	"github.com/npalombo/cloudify-amqp-influxdb/producers/influx"
	"github.com/npalombo/cloudify-amqp-influxdb/server"
	httpClient "github.com/npalombo/cloudify-amqp-influxdb/util/http/client"
	"github.com/npalombo/cloudify-amqp-influxdb/util/http/profiler"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "amqp-influxdb"
	app.Usage = "Forward metric events from an AMQP topic exchange to InfluxDB"
	app.Version = fmt.Sprintf("%s @ revision %s", VERSION, REVISION)
	app.Flags = flags()
	app.Action = func(c *cli.Context) error {
		cfg, err := getNewConfig(c)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cfg)
	}
	return app
}

// run starts the producer, subscribes the collector and blocks until ctx is
// cancelled or the broker connection is lost.
func run(ctx context.Context, cfg Config) error {
	// Set logging level
	lvl, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)

	httpClient.USERAGENT = fmt.Sprintf("amqp-influxdb/%s-%s", VERSION, REVISION)

	// HTTP profiling
	if cfg.HTTPProfiler {
		log.Info("HTTP profiling enabled")
		go profiler.RunHTTPProfAccess()
	}

	producer, err := influx.New(cfg.Influx)
	if err != nil {
		return err
	}
	defer producer.Close()

	collector, err := amqp.New(cfg.AMQP, producer.Dispatch)
	if err != nil {
		return err
	}
	defer collector.Close()

	log.Infof("Forwarding exchange %q, routing key %q to %s",
		cfg.AMQP.Exchange, cfg.AMQP.RoutingKey, producer.Endpoint())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return collector.Run(gctx) })
	g.Go(func() error { return server.New(cfg.Status, cfg.redacted()).Run(gctx) })

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Shutting down")
	return nil
}
