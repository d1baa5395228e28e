package settings

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-cms/folio/storage/model"
)

func newTestService(t *testing.T, seed ...model.Setting) (*Service, *memStore, *fakeBlobs) {
	t.Helper()
	store := newMemStore(seed...)
	backend := NewMemoryBackend()
	blobs := &fakeBlobs{}
	svc := NewService(
		store, Options{
			Cache:   NewCache(store, backend, time.Hour),
			Blobs:   blobs,
			AppName: "Folio Test",
		},
	)
	return svc, store, blobs
}

func typePtr(t model.SettingType) *model.SettingType {
	return &t
}

func TestService_SeedGetSetPublic(t *testing.T) {
	svc, _, _ := newTestService(
		t, model.Setting{Key: "site.name", Value: strPtr("Acme"), Type: model.SettingTypeString, IsPublic: true},
	)
	ctx := context.Background()

	v, err := svc.Get(ctx, "site.name", nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme", v)

	stored, err := svc.Set(ctx, "site.name", "Acme Corp", nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", *stored.Value)

	v, err = svc.Get(ctx, "site.name", nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", v)

	pub, err := svc.GetPublic(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"site.name": "Acme Corp"}, pub)
}

func TestService_IntegerIsNotPublic(t *testing.T) {
	svc, _, _ := newTestService(
		t, model.Setting{Key: "features.count", Value: strPtr("6"), Type: model.SettingTypeInteger},
	)
	ctx := context.Background()

	v, err := svc.Get(ctx, "features.count", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(6), v)

	pub, err := svc.GetPublic(ctx)
	require.NoError(t, err)
	assert.NotContains(t, pub, "features.count")
}

func TestService_GetMissingReturnsDefault(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	v, err := svc.Get(ctx, "nope", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)

	has, err := svc.Has(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestService_WriteThenReadIsNeverStale(t *testing.T) {
	svc, store, _ := newTestService(
		t, model.Setting{Key: "k", Value: strPtr("old"), Type: model.SettingTypeString, IsPublic: true},
	)
	ctx := context.Background()

	// populate both slots within the ttl window
	_, err := svc.Get(ctx, "k", nil)
	require.NoError(t, err)
	_, err = svc.GetPublic(ctx)
	require.NoError(t, err)
	scans := store.scans()

	_, err = svc.Set(ctx, "k", "v", nil)
	require.NoError(t, err)

	v, err := svc.Get(ctx, "k", nil)
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	pub, err := svc.GetPublic(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v", pub["k"])
	assert.Equal(t, scans+1, store.scans())
}

func TestService_TypeDetectionForNewKeys(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Set(ctx, "new.key", true, nil)
	require.NoError(t, err)
	_, err = svc.Set(ctx, "new.key2", []string{"a", "b"}, nil)
	require.NoError(t, err)
	_, err = svc.Set(ctx, "new.key3", map[string]any{"a": 1}, nil)
	require.NoError(t, err)

	for key, expected := range map[string]model.SettingType{
		"new.key":  model.SettingTypeBoolean,
		"new.key2": model.SettingTypeTags,
		"new.key3": model.SettingTypeJSON,
	} {
		row, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, expected, row.Type, key)
	}

	v, err := svc.Get(ctx, "new.key2", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)
}

func TestService_ExistingTypeIsKept(t *testing.T) {
	svc, store, _ := newTestService(
		t, model.Setting{Key: "features.count", Value: strPtr("6"), Type: model.SettingTypeInteger},
	)
	ctx := context.Background()

	_, err := svc.Set(ctx, "features.count", "12", nil)
	require.NoError(t, err)
	row, err := store.Get(ctx, "features.count")
	require.NoError(t, err)
	assert.Equal(t, model.SettingTypeInteger, row.Type)

	v, err := svc.Get(ctx, "features.count", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(12), v)
}

func TestService_ExplicitTypeOverrides(t *testing.T) {
	svc, store, _ := newTestService(
		t, model.Setting{Key: "x", Value: strPtr("1"), Type: model.SettingTypeString},
	)
	ctx := context.Background()

	_, err := svc.Set(ctx, "x", "1", typePtr(model.SettingTypeBoolean))
	require.NoError(t, err)
	row, err := store.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, model.SettingTypeBoolean, row.Type)
	assert.Equal(t, "1", *row.Value)

	_, err = svc.Set(ctx, "x", "1", typePtr("colour"))
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"type"}, verr.Rules())
}

func TestService_ValidationFailureWritesNothing(t *testing.T) {
	svc, store, _ := newTestService(
		t, model.Setting{
			Key:             "appearance.theme",
			Value:           strPtr("auto"),
			Type:            model.SettingTypeString,
			ValidationRules: []string{"required", "in:light,dark,auto"},
		},
	)
	ctx := context.Background()

	_, err := svc.Set(ctx, "appearance.theme", "neon", nil)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "appearance.theme", verr.Key)
	assert.Equal(t, []string{"in:light,dark,auto"}, verr.Rules())

	row, err := store.Get(ctx, "appearance.theme")
	require.NoError(t, err)
	assert.Equal(t, "auto", *row.Value)

	_, err = svc.Set(ctx, "appearance.theme", nil, nil)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"required"}, verr.Rules())
}

func TestService_ForgetLocked(t *testing.T) {
	svc, store, _ := newTestService(
		t, model.Setting{Key: "site.name", Value: strPtr("Acme"), Type: model.SettingTypeString, IsLocked: true},
	)
	ctx := context.Background()

	removed, err := svc.Forget(ctx, "site.name")
	var locked model.LockedSettingError
	require.ErrorAs(t, err, &locked)
	assert.False(t, removed)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// locked settings can still be updated
	_, err = svc.Set(ctx, "site.name", "Acme Corp", nil)
	require.NoError(t, err)
}

func TestService_Forget(t *testing.T) {
	svc, _, blobs := newTestService(
		t,
		model.Setting{Key: "site.logo", Value: strPtr("settings/images/logo.png"), Type: model.SettingTypeImage, IsPublic: true},
		model.Setting{Key: "site.tagline", Value: strPtr("hi"), Type: model.SettingTypeString},
		model.Setting{Key: "appearance.hero_background", Type: model.SettingTypeImage},
	)
	ctx := context.Background()

	has, err := svc.Has(ctx, "site.logo")
	require.NoError(t, err)
	assert.True(t, has)

	removed, err := svc.Forget(ctx, "site.logo")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{"settings/images/logo.png"}, blobs.deleted)

	has, err = svc.Has(ctx, "site.logo")
	require.NoError(t, err)
	assert.False(t, has)

	removed, err = svc.Forget(ctx, "site.tagline")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = svc.Forget(ctx, "appearance.hero_background")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Len(t, blobs.deleted, 1)

	removed, err = svc.Forget(ctx, "site.tagline")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestService_NonFiniteFloatsStayEncodable(t *testing.T) {
	svc, store, _ := newTestService(
		t,
		model.Setting{Key: "appearance.ratio", Value: strPtr("NaN"), Type: model.SettingTypeFloat, IsPublic: true},
		model.Setting{Key: "appearance.scale", Value: strPtr("1.5"), Type: model.SettingTypeFloat, IsPublic: true},
	)
	ctx := context.Background()

	public, err := svc.GetPublic(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(0), public["appearance.ratio"])
	_, err = json.Marshal(public)
	require.NoError(t, err)

	_, err = svc.Set(ctx, "appearance.scale", math.Inf(1), nil)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	row, err := store.Get(ctx, "appearance.scale")
	require.NoError(t, err)
	assert.Equal(t, "1.5", *row.Value)
}

func TestService_ForgetBlobFailureIsNotReturned(t *testing.T) {
	svc, _, blobs := newTestService(
		t, model.Setting{Key: "site.favicon", Value: strPtr("favicon.ico"), Type: model.SettingTypeFile},
	)
	blobs.err = assert.AnError

	removed, err := svc.Forget(context.Background(), "site.favicon")
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestService_PublicBoundarySurvivesChanges(t *testing.T) {
	svc, _, _ := newTestService(
		t,
		model.Setting{Key: "contact.phone", Value: strPtr("123"), Type: model.SettingTypeString, Group: "contact"},
		model.Setting{Key: "contact.email", Value: strPtr("a@example.com"), Type: model.SettingTypeEmail, Group: "contact", IsPublic: true},
	)
	ctx := context.Background()

	_, err := svc.Set(ctx, "contact.phone", int64(123), typePtr(model.SettingTypeInteger))
	require.NoError(t, err)

	pub, err := svc.GetPublic(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"contact.email": "a@example.com"}, pub)
}

func TestService_GetGroupAndMany(t *testing.T) {
	svc, _, _ := newTestService(t, DefaultSettings()...)
	ctx := context.Background()

	social, err := svc.GetGroup(ctx, "social")
	require.NoError(t, err)
	assert.Len(t, social, 3)
	assert.Equal(t, "https://x.com/", social["social.twitter"])

	many, err := svc.GetMany(ctx, []string{"features.projects_per_page", "site.logo", "missing"})
	require.NoError(t, err)
	assert.Equal(
		t, map[string]any{
			"features.projects_per_page": int64(6),
			"site.logo":                  nil,
			"missing":                    nil,
		}, many,
	)
}

func TestService_SetMany(t *testing.T) {
	svc, _, _ := newTestService(t, DefaultSettings()...)
	ctx := context.Background()

	require.NoError(
		t, svc.SetMany(
			ctx, map[string]any{
				"features.blog_enabled": false,
				"custom.counter":        int64(3),
			},
		),
	)
	v, err := svc.Get(ctx, "features.blog_enabled", true)
	require.NoError(t, err)
	assert.Equal(t, false, v)
	v, err = svc.Get(ctx, "custom.counter", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	err = svc.SetMany(ctx, map[string]any{"features.projects_per_page": int64(100)})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestService_SeedIfEmpty(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	seeded, err := svc.SeedIfEmpty(ctx, DefaultSettings())
	require.NoError(t, err)
	assert.True(t, seeded)
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, len(DefaultSettings()), count)

	seeded, err = svc.SeedIfEmpty(ctx, DefaultSettings())
	require.NoError(t, err)
	assert.False(t, seeded)
}

func TestService_SeedResetsValues(t *testing.T) {
	svc, _, _ := newTestService(t, DefaultSettings()...)
	ctx := context.Background()

	_, err := svc.Set(ctx, "appearance.theme", "dark", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Seed(ctx, DefaultSettings()))

	v, err := svc.Get(ctx, "appearance.theme", nil)
	require.NoError(t, err)
	assert.Equal(t, "auto", v)
}

func TestService_ClearCache(t *testing.T) {
	svc, store, _ := newTestService(t, DefaultSettings()...)
	ctx := context.Background()

	_, err := svc.Get(ctx, "site.name", nil)
	require.NoError(t, err)
	require.NoError(t, svc.ClearCache(ctx))
	_, err = svc.Get(ctx, "site.name", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, store.scans())
}

func TestService_List(t *testing.T) {
	svc, _, _ := newTestService(t, DefaultSettings()...)
	group := "features"

	records, err := svc.List(context.Background(), model.SettingsFilter{Group: &group})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "features.blog_enabled", records[0].Key)
	assert.Equal(t, true, records[0].Decoded)
	assert.Equal(t, int64(6), records[2].Decoded)
}
