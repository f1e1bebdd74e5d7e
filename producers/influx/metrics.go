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

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace = "amqp_influxdb"
	subsystem = "producer"
)

var (
	dispatchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "dispatched_total",
		Help:      "Series points accepted onto the delivery queue.",
	})
	droppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "dropped_total",
		Help:      "Series points dropped because the delivery queue was full.",
	})
	validationErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "validation_errors_total",
		Help:      "Metric events rejected for missing required fields.",
	})
	deliveredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "delivered_total",
		Help:      "Series points the store answered with a 2xx status.",
	})
	deliveryErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "delivery_errors_total",
		Help:      "Series points abandoned after a transport or HTTP error.",
	})
	retriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "retries_total",
		Help:      "Delivery attempts repeated after a failure.",
	})
)

func init() {
	prometheus.MustRegister(
		dispatchedTotal,
		droppedTotal,
		validationErrorsTotal,
		deliveredTotal,
		deliveryErrorsTotal,
		retriesTotal,
	)
}
