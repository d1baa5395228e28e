package adminapi

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/folio-cms/folio/settings"
	"github.com/folio-cms/folio/storage/model"
)

// setSettingRequest is the body of PUT /settings/:key
type setSettingRequest struct {
	Value any     `json:"value"`
	Type  *string `json:"type"`
}

// decodeBody decodes a json body keeping numbers apart as integers and floats
func decodeBody(c *fiber.Ctx, target any) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return errors.New("empty body")
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(target)
}

// registerSettings wires the settings management handlers
func registerSettings(r fiber.Router, svc *settings.Service, defaults func() []model.Setting) {
	g := r.Group("/settings")

	g.Get(
		"/", func(c *fiber.Ctx) error {
			var filter model.SettingsFilter
			if group := c.Query("group"); group != "" {
				filter.Group = &group
			}
			if public := c.Query("public"); public != "" {
				b, err := strconv.ParseBool(public)
				if err != nil {
					return c.Status(fiber.StatusBadRequest).JSON(ErrorInvalidRequest("invalid value for 'public'"))
				}
				filter.PublicOnly = b
			}
			records, err := svc.List(c.UserContext(), filter)
			if err != nil {
				return WriteError(c, err)
			}
			return c.JSON(records)
		},
	)

	g.Get(
		"/form", func(c *fiber.Ctx) error {
			tabs, err := svc.Form(c.UserContext())
			if err != nil {
				return WriteError(c, err)
			}
			return c.JSON(tabs)
		},
	)

	g.Put(
		"/form", func(c *fiber.Ctx) error {
			var values map[string]any
			if err := decodeBody(c, &values); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(ErrorInvalidRequest("invalid body"))
			}
			if err := svc.SaveForm(c.UserContext(), values); err != nil {
				return WriteError(c, err)
			}
			tabs, err := svc.Form(c.UserContext())
			if err != nil {
				return WriteError(c, err)
			}
			return c.JSON(tabs)
		},
	)

	g.Get(
		"/groups/:group", func(c *fiber.Ctx) error {
			values, err := svc.GetGroup(c.UserContext(), c.Params("group"))
			if err != nil {
				return WriteError(c, err)
			}
			return c.JSON(values)
		},
	)

	g.Post(
		"/reset", func(c *fiber.Ctx) error {
			if err := svc.Seed(c.UserContext(), defaults()); err != nil {
				return WriteError(c, err)
			}
			records, err := svc.List(c.UserContext(), model.SettingsFilter{})
			if err != nil {
				return WriteError(c, err)
			}
			return c.JSON(records)
		},
	)

	g.Delete(
		"/cache", func(c *fiber.Ctx) error {
			if err := svc.ClearCache(c.UserContext()); err != nil {
				return WriteError(c, err)
			}
			return c.SendStatus(fiber.StatusNoContent)
		},
	)

	g.Get(
		"/:key", func(c *fiber.Ctx) error {
			record, err := svc.Lookup(c.UserContext(), c.Params("key"))
			if err != nil {
				return WriteError(c, err)
			}
			return c.JSON(record)
		},
	)

	g.Put(
		"/:key", func(c *fiber.Ctx) error {
			var req setSettingRequest
			if err := decodeBody(c, &req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(ErrorInvalidRequest("invalid body"))
			}
			var typ *model.SettingType
			if req.Type != nil && *req.Type != "" {
				t, err := model.ParseSettingType(*req.Type)
				if err != nil {
					return c.Status(fiber.StatusBadRequest).JSON(ErrorInvalidRequest(err.Error()))
				}
				typ = &t
			}
			key := c.Params("key")
			if _, err := svc.Set(c.UserContext(), key, settings.NormalizeValue(req.Value), typ); err != nil {
				return WriteError(c, err)
			}
			record, err := svc.Lookup(c.UserContext(), key)
			if err != nil {
				return WriteError(c, err)
			}
			return c.JSON(record)
		},
	)

	g.Delete(
		"/:key", func(c *fiber.Ctx) error {
			removed, err := svc.Forget(c.UserContext(), c.Params("key"))
			if err != nil {
				return WriteError(c, err)
			}
			if !removed {
				return c.Status(fiber.StatusNotFound).JSON(ErrorNotFound("setting not found"))
			}
			return c.SendStatus(fiber.StatusNoContent)
		},
	)
}
