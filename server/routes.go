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
	"fmt"
	"net/http"
	"strings"
)

// Route defines a single new route for gorilla/mux: an arbitrary name, the
// HTTP method allowed, the path for the endpoint, and the handler function
// in server/handlers.go.
type Route struct {
	Name        string
	Method      string
	Path        string
	HandlerFunc func(*Server) http.Handler
}

var (
	version = 0
	root    = fmt.Sprintf("/api/v%d", version)
)

var routes = []Route{
	Route{
		Name:        "health",
		Method:      "GET",
		Path:        "/health",
		HandlerFunc: healthHandler,
	},
	Route{
		Name:        "metrics",
		Method:      "GET",
		Path:        "/metrics",
		HandlerFunc: metricsHandler,
	},
	Route{
		Name:        "config",
		Method:      "GET",
		Path:        strings.Join([]string{root, "config"}, "/"),
		HandlerFunc: configHandler,
	},
}
