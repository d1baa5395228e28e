package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/folio-cms/folio/cmd/folio/config"
	"github.com/folio-cms/folio/settings"
)

var configFile string

// loadService builds the settings.Service the commands work on and returns a
// function releasing its resources
var loadService = loadServiceFromConfig

func loadServiceFromConfig(ctx context.Context) (*settings.Service, func(), error) {
	config.Load(configFile)
	c := config.Get()

	backs, err := config.LoadStorageBackends(c.Storage)
	if err != nil {
		return nil, nil, err
	}
	// Only a shared cache can be evicted from here; the in-memory cache of a
	// running server expires after caching.max_lifetime.
	var backend settings.CacheBackend = settings.NoopBackend{}
	redisBackend, closeRedis, err := config.LoadRedisBackend(ctx, c.Caching)
	if err != nil {
		_ = backs.Close()
		return nil, nil, err
	}
	if redisBackend != nil {
		backend = redisBackend
	}
	blobs, err := config.LoadBlobStore(ctx, c.Blob)
	if err != nil {
		closeRedis()
		_ = backs.Close()
		return nil, nil, err
	}
	svc := settings.NewService(
		backs.Settings, settings.Options{
			Cache:   settings.NewCache(backs.Settings, backend, c.Caching.MaxLifetime.Duration()),
			Blobs:   blobs,
			AppName: c.Site.AppName,
		},
	)
	release := func() {
		closeRedis()
		if err := backs.Close(); err != nil {
			log.WithError(err).Error("could not close storage backend")
		}
	}
	return svc, release, nil
}

type serviceKey struct{}

// service returns the settings.Service stored in the command's context
func service(cmd *cobra.Command) (*settings.Service, error) {
	svc, ok := cmd.Context().Value(serviceKey{}).(*settings.Service)
	if !ok || svc == nil {
		return nil, errors.New("settings service not loaded")
	}
	return svc, nil
}

func newRootCmd() *cobra.Command {
	var release func()
	rootCmd := &cobra.Command{
		Use:           "folioctl",
		Short:         "folioctl can help you manage the settings of your folio",
		Long:          "folioctl can help you manage the settings of your folio",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			svc, rel, err := loadService(cmd.Context())
			if err != nil {
				return err
			}
			release = rel
			cmd.SetContext(context.WithValue(cmd.Context(), serviceKey{}, svc))
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if release != nil {
				release()
			}
		},
	}
	rootCmd.PersistentFlags().StringVarP(
		&configFile, "config", "c", "", "the config file to use; defaults to $"+config.EnvConfigFile+
			" or the default locations",
	)

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newSetCmd())
	rootCmd.AddCommand(newForgetCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newFormCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	return rootCmd
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.WithError(err).Fatal()
	}
}
