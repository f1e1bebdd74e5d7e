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
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// maxErrorBody caps how much of an error response ends up in the log line.
const maxErrorBody = 512

var (
	// USERAGENT is overridden by main with the build version
	USERAGENT = "unset"
	clientLog = log.WithFields(log.Fields{"util": "http-client"})
)

// New returns an http.Client suitable for posting to a single store endpoint.
// A zero timeout means requests are never cut short by the client.
func New(timeout time.Duration, maxIdleConns int) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        maxIdleConns,
			MaxIdleConnsPerHost: maxIdleConns,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// StatusError is returned by Post when the server answers with a non-2xx code.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("post error: %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("post error: %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// Post sends body to url as application/json. Transport failures are returned
// as-is; any response outside the 2xx range becomes a *StatusError. The
// response body of a successful call is discarded.
func Post(ctx context.Context, client *http.Client, url string, body []byte) error {
	req, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", USERAGENT)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := ioutil.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	// drain so the connection can be reused
	if _, err := io.Copy(ioutil.Discard, resp.Body); err != nil {
		clientLog.Debugf("Could not drain response body: %s", err)
	}
	return nil
}
