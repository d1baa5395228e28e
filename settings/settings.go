package settings

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/folio-cms/folio/storage/model"
)

// Validator checks a value against declarative rules
type Validator interface {
	Validate(value any, rules []string) []model.RuleFailure
}

// BlobStore is the storage holding the objects referenced by file and image
// settings
type BlobStore interface {
	URLResolver
	Delete(ctx context.Context, path string) error
}

// Service is the entry point to the settings. All writes evict the cache
// before they return.
type Service struct {
	store     model.SettingsStore
	cache     *Cache
	validator Validator
	blobs     BlobStore
	appName   string
}

// Options holds the optional collaborators of a Service
type Options struct {
	// Cache fronts the store; if nil every read goes to the store
	Cache *Cache
	// Validator defaults to a RuleValidator
	Validator Validator
	// Blobs resolves and deletes file and image values; if nil stored paths
	// are returned as they are and nothing is deleted
	Blobs BlobStore
	// AppName is the fallback for the site name
	AppName string
}

// NewService creates a Service on top of store
func NewService(store model.SettingsStore, opts Options) *Service {
	s := &Service{
		store:     store,
		cache:     opts.Cache,
		validator: opts.Validator,
		blobs:     opts.Blobs,
		appName:   opts.AppName,
	}
	if s.cache == nil {
		s.cache = NewCache(store, NoopBackend{}, 0)
	}
	if s.validator == nil {
		s.validator = NewRuleValidator()
	}
	return s
}

// Record is a stored setting together with its decoded value
type Record struct {
	model.Setting
	Decoded any `json:"decoded_value"`
}

func (s *Service) urls() URLResolver {
	if s.blobs == nil {
		return nil
	}
	return s.blobs
}

func (s *Service) decode(e Entry) any {
	return Decode(e.Value, e.Type, s.urls())
}

// Get returns the decoded value stored under key, or def if there is none
func (s *Service) Get(ctx context.Context, key string, def any) (any, error) {
	all, err := s.cache.All(ctx)
	if err != nil {
		return def, err
	}
	e, ok := all[key]
	if !ok {
		return def, nil
	}
	return s.decode(e), nil
}

// GetMany returns the decoded values of the passed keys; missing keys map to nil
func (s *Service) GetMany(ctx context.Context, keys []string) (map[string]any, error) {
	all, err := s.cache.All(ctx)
	if err != nil {
		return nil, err
	}
	values := make(map[string]any, len(keys))
	for _, k := range keys {
		if e, ok := all[k]; ok {
			values[k] = s.decode(e)
		} else {
			values[k] = nil
		}
	}
	return values, nil
}

// Has reports whether a setting is stored under key
func (s *Service) Has(ctx context.Context, key string) (bool, error) {
	all, err := s.cache.All(ctx)
	if err != nil {
		return false, err
	}
	_, ok := all[key]
	return ok, nil
}

// GetGroup returns the decoded values of all settings in group
func (s *Service) GetGroup(ctx context.Context, group string) (map[string]any, error) {
	all, err := s.cache.All(ctx)
	if err != nil {
		return nil, err
	}
	values := make(map[string]any)
	for k, e := range all {
		if e.Group == group {
			values[k] = s.decode(e)
		}
	}
	return values, nil
}

// GetPublic returns the decoded values of the public settings. Nothing but
// the key and the decoded value of a setting is exposed.
func (s *Service) GetPublic(ctx context.Context) (map[string]any, error) {
	pub, err := s.cache.Public(ctx)
	if err != nil {
		return nil, err
	}
	values := make(map[string]any, len(pub))
	for k, e := range pub {
		if !e.Public {
			continue
		}
		values[k] = s.decode(e)
	}
	return values, nil
}

// List returns the stored settings matching filter with their decoded values
func (s *Service) List(ctx context.Context, filter model.SettingsFilter) ([]Record, error) {
	list, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	records := make([]Record, len(list))
	for i, item := range list {
		records[i] = Record{
			Setting: item,
			Decoded: Decode(item.Value, item.Type, s.urls()),
		}
	}
	return records, nil
}

// Lookup returns the stored setting for key with its decoded value. Unlike Get
// it bypasses the cache and returns a model.NotFoundError for missing keys.
func (s *Service) Lookup(ctx context.Context, key string) (*Record, error) {
	item, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return &Record{
		Setting: *item,
		Decoded: Decode(item.Value, item.Type, s.urls()),
	}, nil
}

// Set stores value under key, creating the setting if needed.
//
// The type of a new setting is detected from value unless typ is given; an
// explicit typ replaces the stored type of an existing setting. The value is
// checked against the validation rules of the existing setting before it is
// encoded; on failure a *model.ValidationError is returned and nothing is
// written.
func (s *Service) Set(ctx context.Context, key string, value any, typ *model.SettingType) (*model.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, &model.ValidationError{
			Key:      key,
			Failures: []model.RuleFailure{{Rule: "key", Message: "key must not be empty"}},
		}
	}
	setting, err := s.store.Get(ctx, key)
	if err != nil {
		var notFound model.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		setting = &model.Setting{Key: key}
	}
	exists := setting.ID != 0

	switch {
	case typ != nil:
		if !typ.Valid() {
			return nil, &model.ValidationError{
				Key:      key,
				Failures: []model.RuleFailure{{Rule: "type", Message: "invalid setting type: " + string(*typ)}},
			}
		}
		setting.Type = *typ
	case !exists:
		setting.Type = DetectType(value)
	}

	if len(setting.ValidationRules) > 0 {
		if failures := s.validator.Validate(value, setting.ValidationRules); len(failures) > 0 {
			return nil, &model.ValidationError{
				Key:      key,
				Failures: failures,
			}
		}
	}

	raw, err := Encode(value, setting.Type)
	if err != nil {
		return nil, &model.ValidationError{
			Key:      key,
			Failures: []model.RuleFailure{{Rule: string(setting.Type), Message: err.Error()}},
		}
	}
	setting.Value = &raw

	if err = s.store.Save(ctx, setting); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"key":     key,
		"type":    setting.Type,
		"created": !exists,
	}).Debug("setting stored")
	if err = s.invalidate(ctx); err != nil {
		return setting, err
	}
	return setting, nil
}

// SetMany sets every passed value with a detected or existing type. It stops
// at the first error; values set before it stay set.
func (s *Service) SetMany(ctx context.Context, values map[string]any) error {
	for _, k := range sortedKeys(values) {
		if _, err := s.Set(ctx, k, values[k], nil); err != nil {
			return err
		}
	}
	return nil
}

// Forget deletes the setting stored under key and reports whether there was
// one. Locked settings are refused with a model.LockedSettingError. For file
// and image settings the referenced object is removed from blob storage.
func (s *Service) Forget(ctx context.Context, key string) (bool, error) {
	setting, err := s.store.Get(ctx, key)
	if err != nil {
		var notFound model.NotFoundError
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	if setting.IsLocked {
		return false, model.LockedSettingErrorFmt("cannot delete locked setting: %s", key)
	}
	removed, err := s.store.Delete(ctx, key)
	if err != nil {
		return false, err
	}
	if removed && setting.Type.IsFile() && setting.Value != nil && *setting.Value != "" && s.blobs != nil {
		if err = s.blobs.Delete(ctx, *setting.Value); err != nil {
			log.WithError(err).WithField("key", key).Warn("could not delete stored object of removed setting")
		}
	}
	if err = s.invalidate(ctx); err != nil {
		return removed, err
	}
	return removed, nil
}

// Seed creates or fully replaces the passed settings by key
func (s *Service) Seed(ctx context.Context, defaults []model.Setting) error {
	if err := s.store.Upsert(ctx, defaults); err != nil {
		return err
	}
	log.WithField("count", len(defaults)).Info("settings seeded")
	return s.invalidate(ctx)
}

// SeedIfEmpty seeds the passed settings only if no setting is stored yet; it
// reports whether it did.
func (s *Service) SeedIfEmpty(ctx context.Context, defaults []model.Setting) (bool, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	return true, s.Seed(ctx, defaults)
}

// ClearCache evicts both cached views
func (s *Service) ClearCache(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}

func (s *Service) invalidate(ctx context.Context) error {
	if err := s.cache.Invalidate(ctx); err != nil {
		log.WithError(err).Error("settings were written but the cache could not be evicted")
		return err
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
