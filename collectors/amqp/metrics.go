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

import "github.com/prometheus/client_golang/prometheus"

var (
	receivedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "amqp_influxdb",
		Subsystem: "collector",
		Name:      "received_total",
		Help:      "Messages received from the broker.",
	})
	decodeErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "amqp_influxdb",
		Subsystem: "collector",
		Name:      "decode_errors_total",
		Help:      "Messages dropped because their body was not a JSON object.",
	})
	processingErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "amqp_influxdb",
		Subsystem: "collector",
		Name:      "processing_errors_total",
		Help:      "Messages whose processor returned an error or panicked.",
	})
)

func init() {
	prometheus.MustRegister(receivedTotal, decodeErrorsTotal, processingErrorsTotal)
}
