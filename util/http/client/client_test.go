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

package client

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Should build a client with the requested timeout", t, func() {
		c := New(5*time.Second, 10)
		So(c.Timeout, ShouldEqual, 5*time.Second)

		tr, ok := c.Transport.(*http.Transport)
		So(ok, ShouldBeTrue)
		So(tr.MaxIdleConnsPerHost, ShouldEqual, 10)
	})
}

func TestPost(t *testing.T) {
	Convey("When posting JSON to an endpoint", t, func() {
		var (
			gotMethod      string
			gotContentType string
			gotUserAgent   string
			gotBody        string
		)
		status := http.StatusOK

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := ioutil.ReadAll(r.Body)
			gotMethod = r.Method
			gotContentType = r.Header.Get("Content-Type")
			gotUserAgent = r.UserAgent()
			gotBody = string(b)
			w.WriteHeader(status)
			w.Write([]byte("database not found\n"))
		}))
		defer ts.Close()

		Convey("Should send a POST with a JSON content type", func() {
			err := Post(context.Background(), http.DefaultClient, ts.URL, []byte(`[1]`))
			So(err, ShouldBeNil)
			So(gotMethod, ShouldEqual, "POST")
			So(gotContentType, ShouldEqual, "application/json")
			So(gotBody, ShouldEqual, "[1]")

			// Default is "unset"; this is set by 'scripts/build.sh' via ldflags.
			So(gotUserAgent, ShouldEqual, "unset")
		})

		Convey("Should return a StatusError for non-2xx responses", func() {
			status = http.StatusBadRequest
			err := Post(context.Background(), http.DefaultClient, ts.URL, []byte(`[]`))
			So(err, ShouldNotBeNil)

			serr, ok := err.(*StatusError)
			So(ok, ShouldBeTrue)
			So(serr.Code, ShouldEqual, http.StatusBadRequest)
			So(serr.Body, ShouldEqual, "database not found")
			So(err.Error(), ShouldContainSubstring, "400 Bad Request")
		})

		Convey("Should accept any 2xx response", func() {
			status = http.StatusNoContent
			So(Post(context.Background(), http.DefaultClient, ts.URL, []byte(`[]`)), ShouldBeNil)
		})
	})

	Convey("Should return transport errors", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := ts.URL
		ts.Close()

		err := Post(context.Background(), http.DefaultClient, url, []byte(`[]`))
		So(err, ShouldNotBeNil)
		_, isStatus := err.(*StatusError)
		So(isStatus, ShouldBeFalse)
	})

	Convey("Should stop when the context is cancelled", t, func() {
		block := make(chan struct{})
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-block
		}))
		defer ts.Close()
		defer close(block)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		So(Post(ctx, http.DefaultClient, ts.URL, []byte(`[]`)), ShouldNotBeNil)
	})
}
