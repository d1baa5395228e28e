package folio

import (
	"context"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	arrays "github.com/adam-hanna/arrayOperations"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"

	"github.com/folio-cms/folio/api/adminapi"
	"github.com/folio-cms/folio/internal/version"
	"github.com/folio-cms/folio/settings"
	"github.com/folio-cms/folio/storage/model"
)

// FiberServerConfig is the fiber.Config that is used to init the http fiber.App
var FiberServerConfig = fiber.Config{
	ReadTimeout:    3 * time.Second,
	WriteTimeout:   20 * time.Second,
	IdleTimeout:    150 * time.Second,
	ReadBufferSize: 8192,
	ErrorHandler:   handleError,
	Network:        "tcp",
}

// Options holds the optional parts of a Server
type Options struct {
	// AccessLog receives the http access log; defaults to stdout
	AccessLog io.Writer
	// Defaults are the settings restored by the admin reset endpoint
	Defaults func() []model.Setting
}

// Server serves the public settings endpoints and the admin api
type Server struct {
	server     *fiber.App
	admin      *fiber.App
	serverConf ServerConf
	settings   *settings.Service
}

func newApp(serverConf ServerConf, accessLog io.Writer) *fiber.App {
	conf := FiberServerConfig
	if tps := serverConf.TrustedProxies; len(tps) > 0 {
		conf.TrustedProxies = tps
		conf.EnableTrustedProxyCheck = true
	}
	conf.ProxyHeader = serverConf.ForwardedIPHeader
	app := fiber.New(conf)
	app.Use(recover.New())
	app.Use(compress.New())
	app.Use(logger.New(logger.Config{Output: accessLog}))
	app.Use(requestid.New())
	return app
}

// NewServer creates a new Server for the passed settings.Service
func NewServer(serverConf ServerConf, svc *settings.Service, opts Options) (*Server, error) {
	s := &Server{
		server:     newApp(serverConf, opts.AccessLog),
		serverConf: serverConf,
		settings:   svc,
	}
	s.addPublicEndpoints()

	if !serverConf.AdminAPIEnabled {
		log.Info("admin api is disabled")
		return s, nil
	}
	adminRouter := fiber.Router(s.server)
	if serverConf.AdminAPIPort > 0 && serverConf.AdminAPIPort != serverConf.Port {
		s.admin = newApp(serverConf, opts.AccessLog)
		adminRouter = s.admin
	}
	if err := adminapi.Register(
		adminRouter.Group("/api/v1/admin"), serverConf.ExternalURL, svc,
		&adminapi.Options{
			Port:     serverConf.AdminAPIPort,
			Defaults: opts.Defaults,
		},
	); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) addPublicEndpoints() {
	g := s.server.Group("/api/v1")

	g.Get(
		"/settings", func(ctx *fiber.Ctx) error {
			public, err := s.settings.GetPublic(ctx.UserContext())
			if err != nil {
				return adminapi.WriteError(ctx, err)
			}
			requested := splitKeys(ctx.Query("keys"))
			if len(requested) == 0 {
				return ctx.JSON(public)
			}
			available := make([]string, 0, len(public))
			for k := range public {
				available = append(available, k)
			}
			sort.Strings(available)
			selected := make(map[string]any)
			for _, k := range arrays.Intersect(available, requested) {
				selected[k] = public[k]
			}
			return ctx.JSON(selected)
		},
	)

	g.Get(
		"/site", func(ctx *fiber.Ctx) error {
			site, err := s.settings.GetSiteConfig(ctx.UserContext())
			if err != nil {
				return adminapi.WriteError(ctx, err)
			}
			return ctx.JSON(site)
		},
	)

	g.Get(
		"/version", func(ctx *fiber.Ctx) error {
			return ctx.JSON(fiber.Map{"version": version.VERSION})
		},
	)

	s.server.Get(
		"/robots.txt", func(ctx *fiber.Ctx) error {
			robots, err := s.settings.Get(ctx.UserContext(), "seo.robots_txt", "")
			if err != nil {
				return adminapi.WriteError(ctx, err)
			}
			txt, _ := robots.(string)
			if txt == "" {
				txt = "User-agent: *\nAllow: /\n"
			}
			ctx.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
			return ctx.SendString(txt)
		},
	)
}

func splitKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// HttpHandlerFunc returns an http.HandlerFunc for serving all the necessary endpoints
func (s *Server) HttpHandlerFunc() http.HandlerFunc {
	return adaptor.FiberApp(s.server)
}

// Start starts the configured http servers and blocks until the main server
// stops
func (s *Server) Start() error {
	conf := s.serverConf
	if s.admin != nil {
		log.WithField("port", conf.AdminAPIPort).Info("starting admin api server")
		go func() {
			if err := s.admin.Listen(conf.listenAddr(conf.AdminAPIPort)); err != nil {
				log.WithError(err).Fatal("admin api server failed")
			}
		}()
	}
	if !conf.TLS.Enabled {
		log.WithField("port", conf.Port).Info("TLS is disabled starting http server")
		return s.server.Listen(conf.listenAddr(conf.Port))
	}
	// TLS enabled
	if conf.TLS.RedirectHTTP {
		httpServer := fiber.New(FiberServerConfig)
		httpServer.All(
			"*", func(ctx *fiber.Ctx) error {
				//goland:noinspection HttpUrlsUsage
				return ctx.Redirect(
					strings.Replace(ctx.Request().URI().String(), "http://", "https://", 1),
					fiber.StatusPermanentRedirect,
				)
			},
		)
		log.Info("TLS and http redirect enabled, starting redirect server on port 80")
		go func() {
			log.WithError(httpServer.Listen(conf.listenAddr(80))).Fatal()
		}()
	}
	time.Sleep(time.Millisecond)
	log.Info("TLS enabled, starting https server on port 443")
	return s.server.ListenTLS(conf.listenAddr(443), conf.TLS.Cert, conf.TLS.Key)
}

// Shutdown gracefully stops the servers
func (s *Server) Shutdown(ctx context.Context) error {
	if s.admin != nil {
		if err := s.admin.ShutdownWithContext(ctx); err != nil {
			return err
		}
	}
	return s.server.ShutdownWithContext(ctx)
}
