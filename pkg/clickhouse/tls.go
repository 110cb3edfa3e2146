package clickhouse

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/datusai/datus-clickhouse/pkg/config"
	"github.com/pkg/errors"
)

// GetTLSConfig creates a TLS config for connecting to ClickHouse.
//
// With no certificate settings the system roots are used. When a cert/key pair
// is configured it is presented to the server (mTLS), and a CA file replaces
// the system roots.
//
// Example usage:
//
//	tlsCfg, err := GetTLSConfig(cfg.TLS)
//	if err != nil {
//		return err
//	}
func GetTLSConfig(settings *config.TLS) (*tls.Config, error) {
	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	if settings == nil {
		return tlsCfg, nil
	}

	tlsCfg.InsecureSkipVerify = settings.InsecureSkipVerify //nolint:gosec // opt-in from configuration

	if settings.CertFile != "" || settings.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(settings.CertFile, settings.KeyFile)
		if err != nil {
			return nil, errors.Wrap(err, "Unable to load certfile/keyfile")
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}

	if settings.CAFile != "" {
		caCert, err := os.ReadFile(settings.CAFile)
		if err != nil {
			return nil, errors.Wrap(err, "Unable to load CAfile")
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, errors.Errorf("no certificates found in CAfile %s", settings.CAFile)
		}
		tlsCfg.RootCAs = caCertPool
	}

	return tlsCfg, nil
}
