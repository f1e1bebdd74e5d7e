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

package producers

import (
	"fmt"
	"strings"
)

// MetricsProducer defines an interface that the various producers must
// implement in order to receive decoded metric events and ship them to a
// remote store. Dispatch must not block on network I/O: producers are expected
// to hand the work off to their own goroutines and return immediately.
type MetricsProducer interface {
	Dispatch(MetricEvent) error
	Close() error
}

// MetricEvent is a decoded metric message as it arrived from the broker. Values
// are kept exactly as decoded (numbers as json.Number) so they can be forwarded
// verbatim.
type MetricEvent map[string]interface{}

// Field names every MetricEvent must carry.
const (
	DeploymentIDField = "deployment_id"
	NodeNameField     = "node_name"
	NodeIDField       = "node_id"
	NameField         = "name"
	PathField         = "path"
	MetricField       = "metric"
	UnitField         = "unit"
	TypeField         = "type"
)

// RequiredFields lists, in order, the fields checked by Validate.
var RequiredFields = []string{
	DeploymentIDField,
	NodeNameField,
	NodeIDField,
	NameField,
	PathField,
	MetricField,
	UnitField,
	TypeField,
}

// Validate returns a *ValidationError naming every required field absent
// from the event. Only presence is checked; value types are not.
func (e MetricEvent) Validate() error {
	var missing []string
	for _, f := range RequiredFields {
		if _, ok := e[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// ValidationError is returned when a MetricEvent lacks required fields.
type ValidationError struct {
	Missing []string
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("metric event is missing required fields: %s", strings.Join(v.Missing, ", "))
}

// Series is a single point written to the time-series store, in the
// {name, points, columns} layout used by the InfluxDB 0.8 series API.
type Series struct {
	Name    string          `json:"name"`
	Points  [][]interface{} `json:"points"`
	Columns []string        `json:"columns"`
}
