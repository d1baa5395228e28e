package config

import (
	"github.com/pkg/errors"
)

// siteConf holds installation wide site values that are not settings
type siteConf struct {
	// AppName is the fallback site name used until site.name is set
	AppName string `yaml:"app_name"`
	// SeedDefaults seeds the default settings into an empty store on start
	SeedDefaults bool `yaml:"seed_defaults"`
}

func (c *siteConf) validate() error {
	if c.AppName == "" {
		return errors.New("error in site conf: app_name must not be empty")
	}
	return nil
}

var defaultSiteConf = siteConf{
	AppName:      "Folio",
	SeedDefaults: true,
}
