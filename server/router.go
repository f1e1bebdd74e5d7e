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
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// newRouter iterates over a slice of Route types and creates them
// in gorilla/mux.
func newRouter(s *Server) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	for _, route := range routes {
		serverLog.Debugf("Establishing endpoint %s at %s", route.Name, route.Path)
		var handler http.Handler

		handler = route.HandlerFunc(s)
		handler = logger(handler, route.Name)

		router.NewRoute().
			Methods(route.Method).
			Path(route.Path).
			Name(route.Name).
			Handler(handler)
	}
	return router
}

// logger wraps a handler and logs every request at debug level.
func logger(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		inner.ServeHTTP(w, r)
		serverLog.Debugf("%s\t%s\t%s\t%s", r.Method, r.RequestURI, name, time.Since(start))
	})
}
