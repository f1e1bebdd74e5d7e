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

package profiler

import (
	"net"
	"net/http"
	"net/http/pprof"

	log "github.com/sirupsen/logrus"
)

var profLog = log.WithFields(log.Fields{"util": "profiler"})

// Handler returns a mux serving the pprof endpoints under /debug/pprof.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// RunHTTPProfAccess runs an HTTP listener on a random ephemeral port which allows pprof access.
// This function should be run as a gofunc.
func RunHTTPProfAccess() {
	// listen on an ephemeral port, then print the port
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		profLog.Errorf("Unable to open profile access listener: %s", err)
		return
	}
	profLog.Infof("Enabling profile access at http://%s/debug/pprof", listener.Addr())
	profLog.Error(http.Serve(listener, Handler())) // blocks
}
