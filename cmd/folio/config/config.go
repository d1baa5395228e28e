package config

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/fatih/structs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/zachmann/go-utils/fileutils"
	"gopkg.in/yaml.v3"
	"tideland.dev/go/slices"
)

// Config holds the configuration for folio
type Config struct {
	Server  serverConf  `yaml:"server"`
	API     apiConf     `yaml:"api"`
	Storage storageConf `yaml:"storage"`
	Caching CachingConf `yaml:"caching"`
	Blob    blobConf    `yaml:"blob"`
	Logging LoggingConf `yaml:"logging"`
	Site    siteConf    `yaml:"site"`
}

// EnvConfigFile is the environment variable holding the path of the config file
const EnvConfigFile = "FOLIO_CONFIG"

var possibleConfigLocations = []string{
	".",
	"config",
	"/config",
	"/folio/config",
	"/folio",
	"/data/config",
	"/data",
	"/etc/folio",
}

var possibleConfigFileNames = []string{
	"config.yaml",
	"config.yml",
	"folio.yaml",
	"folio.yml",
}

var c *Config

// Get returns the Config
func Get() *Config {
	if c == nil {
		d := defaultConfig()
		return &d
	}
	return c
}

func defaultConfig() Config {
	return Config{
		Server:  defaultServerConf,
		API:     defaultAPIConf,
		Storage: defaultStorageConf,
		Caching: defaultCachingConf,
		Blob:    defaultBlobConf,
		Logging: defaultLoggingConf,
		Site:    defaultSiteConf,
	}
}

type configValidator interface {
	validate() error
}

func (conf *Config) validate() error {
	v := reflect.ValueOf(conf).Elem()
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		fieldVal := v.Field(i)
		if !fieldVal.CanAddr() {
			continue
		}
		if validator, ok := fieldVal.Addr().Interface().(configValidator); ok {
			if err := validator.validate(); err != nil {
				return errors.Errorf("validation failed for field '%s': %s", t.Field(i).Name, err.Error())
			}
		}
	}
	conf.Server.AdminAPIEnabled = conf.API.Admin.Enabled
	conf.Server.AdminAPIPort = conf.API.Admin.Port
	return nil
}

// Parse parses a yaml config over the defaults and validates it
func Parse(data []byte) (*Config, error) {
	conf := defaultConfig()
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, errors.WithStack(err)
	}
	unknown, err := unknownKeys(data)
	if err != nil {
		return nil, err
	}
	if len(unknown) > 0 {
		log.WithField("keys", unknown).Warn("ignoring unknown config options")
	}
	if err = conf.validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// unknownKeys returns the top level keys of a yaml config that are not
// config sections
func unknownKeys(data []byte) ([]string, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.WithStack(err)
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return slices.Subtract(keys, fieldTagNames(structs.New(Config{}).Fields(), "yaml")), nil
}

func fieldTagNames(fields []*structs.Field, tag string) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		name, _, _ := strings.Cut(f.Tag(tag), ",")
		if name != "" && name != "-" {
			names = append(names, name)
		}
	}
	return names
}

// Load loads the config from the passed file or, if empty, from the file in
// FOLIO_CONFIG or the first config file found in the default locations
func Load(filename string) {
	conf, err := load(filename)
	if err != nil {
		log.WithError(err).Fatal("could not load config")
	}
	c = conf
}

func load(filename string) (*Config, error) {
	if filename == "" {
		filename = os.Getenv(EnvConfigFile)
	}
	if filename == "" {
		filename = findConfigFile()
	}
	if filename == "" {
		return nil, errors.New("could not find a config file")
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read config file '%s'", filename)
	}
	conf, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "error in config file '%s'", filename)
	}
	return conf, nil
}

func findConfigFile() string {
	for _, dir := range possibleConfigLocations {
		for _, name := range possibleConfigFileNames {
			p := filepath.Join(dir, name)
			if fileutils.FileExists(p) {
				return p
			}
		}
	}
	return ""
}
