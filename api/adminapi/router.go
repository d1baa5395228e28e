package adminapi

import (
	"embed"
	"net"
	neturl "net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/folio-cms/folio/internal/version"
	"github.com/folio-cms/folio/settings"
	"github.com/folio-cms/folio/storage/model"
)

//go:embed swagger.html openapi.yaml
var assets embed.FS

// Options controls optional features of the admin API registration.
type Options struct {
	// Port, when > 0, is used to adapt the serverURL to the admin API port for docs.
	Port int
	// Defaults returns the settings restored by the reset endpoint; defaults to
	// settings.DefaultSettings.
	Defaults func() []model.Setting
}

// Register mounts all admin API routes under the provided group.
func Register(r fiber.Router, serverURL string, svc *settings.Service, opts *Options) error {
	defaults := settings.DefaultSettings
	if opts != nil {
		if opts.Port > 0 {
			serverURL = adaptServerURLPort(serverURL, opts.Port)
		}
		if opts.Defaults != nil {
			defaults = opts.Defaults
		}
	}

	openapiRaw, err := assets.ReadFile("openapi.yaml")
	if err != nil {
		return errors.Wrap(err, "adminapi: failed to read openapi.yaml")
	}
	openapiData := updateOpenAPIDocument(openapiRaw, serverURL, version.VERSION)
	swaggerHTML, err := assets.ReadFile("swagger.html")
	if err != nil {
		return errors.Wrap(err, "adminapi: failed to read swagger.html")
	}

	r.Get(
		"/openapi.yaml", func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderContentType, "application/yaml")
			return c.Send(openapiData)
		},
	)

	r.Get(
		"/docs", func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderContentType, fiber.MIMETextHTML)
			return c.Send(swaggerHTML)
		},
	)

	registerSettings(r, svc, defaults)
	return nil
}

// updateOpenAPIDocument points the servers section to this instance and sets
// the document version to the running version.
func updateOpenAPIDocument(doc []byte, serverURL, appVersion string) []byte {
	if serverURL == "" && appVersion == "" {
		return doc
	}
	var full map[string]any
	if err := yaml.Unmarshal(doc, &full); err != nil {
		return doc
	}
	if serverURL != "" {
		full["servers"] = []map[string]any{
			{
				"url":         serverURL + "/api/v1/admin",
				"description": "This instance",
			},
		}
	}
	if info, ok := full["info"].(map[string]any); ok && appVersion != "" {
		info["version"] = appVersion
	}
	res, err := yaml.Marshal(full)
	if err != nil {
		return doc
	}
	return res
}

// adaptServerURLPort updates or adds the port to the provided serverURL.
// If the input is invalid, it returns the original serverURL.
func adaptServerURLPort(serverURL string, port int) string {
	if serverURL == "" || port <= 0 {
		return serverURL
	}
	u, err := neturl.Parse(serverURL)
	if err != nil || u.Host == "" {
		return serverURL
	}
	name := u.Host
	if host, _, err := net.SplitHostPort(u.Host); err == nil {
		name = host
	}
	u.Host = net.JoinHostPort(name, strconv.Itoa(port))
	return u.String()
}
