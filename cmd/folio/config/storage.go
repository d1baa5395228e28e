package config

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/zachmann/go-utils/duration"
	"github.com/zachmann/go-utils/fileutils"

	"github.com/folio-cms/folio/storage"
	"github.com/folio-cms/folio/storage/model"
)

type storageConf struct {
	Driver  storage.DriverType `yaml:"driver"`
	DataDir string             `yaml:"data_dir"`
	DSN     string             `yaml:"dsn"`

	storage.DSNConf `yaml:",inline"`

	Debug           bool                    `yaml:"debug"`
	MaxOpenConns    int                     `yaml:"max_open_conns"`
	ConnMaxLifetime duration.DurationOption `yaml:"conn_max_lifetime"`
}

func (c *storageConf) validate() error {
	switch c.Driver {
	case storage.DriverSQLite:
		if c.DSN != "" {
			return nil
		}
		if c.DataDir == "" {
			return errors.New("error in storage conf: data_dir must be specified")
		}
		if !fileutils.FileExists(c.DataDir) {
			return errors.Errorf("error in storage conf: data_dir '%s' does not exist", c.DataDir)
		}
		return nil
	case storage.DriverMySQL, storage.DriverPostgres:
	default:
		return errors.Errorf("error in storage conf: unsupported driver '%s'", c.Driver)
	}
	var err error
	if c.DSN == "" {
		c.DSN, err = storage.DSN(c.Driver, c.DSNConf)
	}
	return err
}

var defaultStorageConf = storageConf{
	Driver: storage.DriverSQLite,
	DSNConf: storage.DSNConf{
		User: "folio",
		Host: "localhost",
		DB:   "folio",
	},
	Debug: false,
}

func (c storageConf) storageConfig() storage.Config {
	return storage.Config{
		Driver:          c.Driver,
		DSN:             c.DSN,
		DataDir:         c.DataDir,
		Debug:           c.Debug,
		MaxOpenConns:    c.MaxOpenConns,
		ConnMaxLifetime: c.ConnMaxLifetime.Duration(),
	}
}

// LoadStorageBackends loads and returns the storage backends for the passed conf
func LoadStorageBackends(c storageConf) (model.Backends, error) {
	backs, err := storage.LoadStorageBackends(c.storageConfig())
	if err != nil {
		return model.Backends{}, err
	}
	log.WithField("driver", c.Driver).Info("Loaded storage backend")
	return backs, nil
}
