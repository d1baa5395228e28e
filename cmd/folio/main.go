package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/folio-cms/folio"
	"github.com/folio-cms/folio/cmd/folio/config"
	"github.com/folio-cms/folio/internal/logger"
	"github.com/folio-cms/folio/internal/version"
	"github.com/folio-cms/folio/settings"
)

func main() {
	var configFile string
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}
	config.Load(configFile)
	logger.Init()
	log.WithField("version", version.VERSION).Info("Loaded Config")
	c := config.Get()

	backs, err := config.LoadStorageBackends(c.Storage)
	if err != nil {
		log.WithError(err).Fatal("could not load storage backend")
	}
	defer func() {
		if err := backs.Close(); err != nil {
			log.WithError(err).Error("could not close storage backend")
		}
	}()

	backend, stopCache := loadCacheBackend(c.Caching)
	defer stopCache()

	ctx := context.Background()
	blobs, err := config.LoadBlobStore(ctx, c.Blob)
	if err != nil {
		log.WithError(err).Fatal("could not load blob storage")
	}
	log.WithField("driver", c.Blob.Driver).Info("Loaded blob storage")

	svc := settings.NewService(
		backs.Settings, settings.Options{
			Cache:   settings.NewCache(backs.Settings, backend, c.Caching.MaxLifetime.Duration()),
			Blobs:   blobs,
			AppName: c.Site.AppName,
		},
	)
	if c.Site.SeedDefaults {
		seeded, err := svc.SeedIfEmpty(ctx, settings.DefaultSettings())
		if err != nil {
			log.WithError(err).Fatal("could not seed default settings")
		}
		if seeded {
			log.Info("Seeded default settings")
		}
	}

	server, err := folio.NewServer(
		c.Server.ServerConf, svc, folio.Options{
			AccessLog: logger.AccessLogWriter(),
			Defaults:  settings.DefaultSettings,
		},
	)
	if err != nil {
		log.WithError(err).Fatal("could not create server")
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("could not shut down server")
		}
	}()

	if err = server.Start(); err != nil {
		log.WithError(err).Error("server stopped")
	}
}

// loadCacheBackend returns the settings cache backend for the caching conf and
// a function releasing it
func loadCacheBackend(conf config.CachingConf) (settings.CacheBackend, func()) {
	if conf.Disabled {
		log.Info("Settings cache is disabled")
		return settings.NoopBackend{}, func() {}
	}
	redisBackend, closeRedis, err := config.LoadRedisBackend(context.Background(), conf)
	if err != nil {
		log.WithError(err).Fatal("could not init redis cache")
	}
	if redisBackend != nil {
		log.Info("Loaded Redis Cache")
		return redisBackend, closeRedis
	}
	memory := settings.NewMemoryBackend()
	memory.Start()
	log.Info("Loaded in-memory Cache")
	return memory, memory.Stop
}
