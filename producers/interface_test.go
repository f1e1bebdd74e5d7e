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
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func completeEvent() MetricEvent {
	return MetricEvent{
		"deployment_id": "d1",
		"node_name":     "n1",
		"node_id":       "123",
		"name":          "cpu",
		"path":          "usage",
		"metric":        42.5,
		"unit":          "percent",
		"type":          "gauge",
	}
}

func TestValidate(t *testing.T) {
	Convey("When validating a metric event", t, func() {
		Convey("Should accept an event carrying every required field", func() {
			So(completeEvent().Validate(), ShouldBeNil)
		})

		Convey("Should name each missing field, in order", func() {
			e := completeEvent()
			delete(e, "metric")
			delete(e, "deployment_id")

			err := e.Validate()
			So(err, ShouldNotBeNil)

			verr, ok := err.(*ValidationError)
			So(ok, ShouldBeTrue)
			So(verr.Missing, ShouldResemble, []string{"deployment_id", "metric"})
			So(err.Error(), ShouldContainSubstring, "deployment_id, metric")
		})

		Convey("Should treat a nil event as missing everything", func() {
			var e MetricEvent
			err := e.Validate()
			So(err, ShouldNotBeNil)
			So(err.(*ValidationError).Missing, ShouldHaveLength, len(RequiredFields))
		})

		Convey("Should only check presence, not value types", func() {
			e := completeEvent()
			e["metric"] = "not-a-number"
			e["node_id"] = nil
			So(e.Validate(), ShouldBeNil)
		})
	})
}
