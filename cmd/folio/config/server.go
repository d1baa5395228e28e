package config

import (
	"github.com/pkg/errors"
	"github.com/zachmann/go-utils/fileutils"

	"github.com/folio-cms/folio"
)

type serverConf struct {
	folio.ServerConf `yaml:",inline"`
}

func (c *serverConf) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Errorf("error in server conf: invalid port %d", c.Port)
	}
	if c.TLS.Enabled {
		if c.TLS.Cert == "" || c.TLS.Key == "" {
			return errors.New("error in server conf: tls is enabled but cert or key is not set")
		}
		if !fileutils.FileExists(c.TLS.Cert) {
			return errors.Errorf("error in server conf: tls cert '%s' does not exist", c.TLS.Cert)
		}
		if !fileutils.FileExists(c.TLS.Key) {
			return errors.Errorf("error in server conf: tls key '%s' does not exist", c.TLS.Key)
		}
	}
	return nil
}

var defaultServerConf = serverConf{
	ServerConf: folio.ServerConf{
		Port: 7672,
	},
}
