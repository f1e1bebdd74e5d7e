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

package amqp

import (
	"crypto/tls"
	"crypto/x509"
	"io/ioutil"

	"github.com/pkg/errors"
)

// loadCAPool will load a valid x509 cert.
func loadCAPool(path string) (*x509.CertPool, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read CA certificate %s", path)
	}

	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(b) {
		return nil, errors.Errorf("no PEM certificates found in %s", path)
	}
	return caPool, nil
}

// newTLSConfig returns nil without a CA path, leaving the client on the
// system roots for amqps URLs.
func newTLSConfig(caCertificatePath string) (*tls.Config, error) {
	if len(caCertificatePath) == 0 {
		return nil, nil
	}
	amqpLog.Infof("Loading CA cert: %s", caCertificatePath)
	caPool, err := loadCAPool(caCertificatePath)
	if err != nil {
		return nil, err
	}
	return &tls.Config{RootCAs: caPool}, nil
}
