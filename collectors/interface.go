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

package collectors

import (
	"context"

	"github.com/npalombo/cloudify-amqp-influxdb/producers"
)

// MetricsCollector defines an interface that the various collectors must
// implement in order to receive metrics from a source and hand them to a
// MessageProcessor. Run blocks until ctx is cancelled or the source is lost.
type MetricsCollector interface {
	Run(ctx context.Context) error
	Close() error
}

// MessageProcessor is called once for every decoded message, on the
// collector's goroutine. A returned error is logged by the collector and does
// not stop it. producers.MetricsProducer's Dispatch satisfies it.
type MessageProcessor func(producers.MetricEvent) error
