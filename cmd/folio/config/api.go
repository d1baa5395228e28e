package config

import "github.com/pkg/errors"

// apiConf holds API-related configuration
type apiConf struct {
	Admin adminAPIConf `yaml:"admin"`
}

type adminAPIConf struct {
	Enabled bool `yaml:"enabled"`
	// Port serves the admin api on its own port; 0 means use main server
	Port int `yaml:"port"`
}

func (c *apiConf) validate() error {
	if c.Admin.Port < 0 || c.Admin.Port > 65535 {
		return errors.Errorf("error in api conf: invalid admin port %d", c.Admin.Port)
	}
	return nil
}

var defaultAPIConf = apiConf{
	Admin: adminAPIConf{
		Enabled: true,
		Port:    0,
	},
}
