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
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/npalombo/cloudify-amqp-influxdb/producers"
)

// columns is the fixed column schema of every series point.
var columns = []string{"value", "unit", "type"}

// NewSeries validates a metric event and converts it into a single series
// point. The point's values follow the column order: metric, unit, type.
func NewSeries(e producers.MetricEvent) (producers.Series, error) {
	if err := e.Validate(); err != nil {
		return producers.Series{}, err
	}
	return producers.Series{
		Name: seriesName(e),
		Points: [][]interface{}{
			{e[producers.MetricField], e[producers.UnitField], e[producers.TypeField]},
		},
		Columns: append([]string(nil), columns...),
	}, nil
}

// seriesName builds e.g. "d1.n1.123.cpu_usage" from
// deployment_id, node_name, node_id, name and path.
func seriesName(e producers.MetricEvent) string {
	return fmt.Sprintf("%v.%v.%v.%v_%v",
		e[producers.DeploymentIDField],
		e[producers.NodeNameField],
		e[producers.NodeIDField],
		e[producers.NameField],
		e[producers.PathField])
}

// seriesURL returns the series write endpoint with credentials in the query.
func seriesURL(host string, port int, database, user, password string) string {
	return fmt.Sprintf("http://%s/db/%s/series?u=%s&p=%s",
		net.JoinHostPort(host, strconv.Itoa(port)),
		url.PathEscape(database),
		url.QueryEscape(user),
		url.QueryEscape(password))
}
