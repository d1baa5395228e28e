package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-cms/folio/storage/model"
)

func newTestSettingsStorage(t *testing.T) *SettingsStorage {
	t.Helper()
	s, err := NewStorage(Config{Driver: DriverSQLite, DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s.SettingsStorage()
}

func strPtr(s string) *string { return &s }

func TestSettingsStorage_SaveAndGet(t *testing.T) {
	store := newTestSettingsStorage(t)
	ctx := context.Background()

	err := store.Save(ctx, &model.Setting{
		Key:             "site.name",
		Value:           strPtr("Acme"),
		Type:            model.SettingTypeString,
		Group:           "general",
		IsPublic:        true,
		ValidationRules: []string{"required", "max:255"},
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, "site.name")
	require.NoError(t, err)
	assert.Equal(t, "Acme", *got.Value)
	assert.Equal(t, model.SettingTypeString, got.Type)
	assert.True(t, got.IsPublic)
	assert.Equal(t, []string{"required", "max:255"}, []string(got.ValidationRules))

	got.Value = strPtr("Acme Corp")
	require.NoError(t, store.Save(ctx, got))

	again, err := store.Get(ctx, "site.name")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", *again.Value)
	assert.Equal(t, got.ID, again.ID)
}

func TestSettingsStorage_GetMissing(t *testing.T) {
	store := newTestSettingsStorage(t)

	_, err := store.Get(context.Background(), "does.not.exist")
	var notFound model.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestSettingsStorage_EmptyKeyMatchesNothing(t *testing.T) {
	store := newTestSettingsStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &model.Setting{Key: "site.name", Type: model.SettingTypeString, IsLocked: true}))
	require.NoError(t, store.Save(ctx, &model.Setting{Key: "site.tagline", Type: model.SettingTypeString}))

	_, err := store.Get(ctx, "")
	var notFound model.NotFoundError
	require.ErrorAs(t, err, &notFound)

	removed, err := store.Delete(ctx, "")
	require.NoError(t, err)
	assert.False(t, removed)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestSettingsStorage_UniqueKey(t *testing.T) {
	store := newTestSettingsStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &model.Setting{Key: "dup", Type: model.SettingTypeString}))
	err := store.Save(ctx, &model.Setting{Key: "dup", Type: model.SettingTypeString})
	var exists model.AlreadyExistsError
	require.ErrorAs(t, err, &exists)
}

func TestSettingsStorage_NullValue(t *testing.T) {
	store := newTestSettingsStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &model.Setting{Key: "site.logo", Type: model.SettingTypeImage}))
	got, err := store.Get(ctx, "site.logo")
	require.NoError(t, err)
	assert.Nil(t, got.Value)
}

func TestSettingsStorage_ListOrderingAndFilters(t *testing.T) {
	store := newTestSettingsStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []model.Setting{
		{Key: "social.twitter", Group: "social", SortOrder: 3, IsPublic: true, Type: model.SettingTypeURL},
		{Key: "social.github", Group: "social", SortOrder: 1, IsPublic: true, Type: model.SettingTypeURL},
		{Key: "contact.phone", Group: "contact", SortOrder: 2, Type: model.SettingTypeString},
		{Key: "contact.email", Group: "contact", SortOrder: 1, IsPublic: true, Type: model.SettingTypeEmail},
	}))

	all, err := store.List(ctx, model.SettingsFilter{})
	require.NoError(t, err)
	keys := make([]string, len(all))
	for i, s := range all {
		keys[i] = s.Key
	}
	assert.Equal(t, []string{"contact.email", "social.github", "contact.phone", "social.twitter"}, keys)

	group := "contact"
	contact, err := store.List(ctx, model.SettingsFilter{Group: &group})
	require.NoError(t, err)
	require.Len(t, contact, 2)
	assert.Equal(t, "contact.email", contact[0].Key)

	public, err := store.List(ctx, model.SettingsFilter{PublicOnly: true})
	require.NoError(t, err)
	for _, s := range public {
		assert.True(t, s.IsPublic, s.Key)
	}
	assert.Len(t, public, 3)
}

func TestSettingsStorage_UpsertReplaces(t *testing.T) {
	store := newTestSettingsStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &model.Setting{Key: "appearance.theme", Value: strPtr("dark"), Type: model.SettingTypeString}))
	require.NoError(t, store.Upsert(ctx, []model.Setting{
		{Key: "appearance.theme", Value: strPtr("auto"), Type: model.SettingTypeString, Group: "appearance", IsLocked: true},
	}))

	got, err := store.Get(ctx, "appearance.theme")
	require.NoError(t, err)
	assert.Equal(t, "auto", *got.Value)
	assert.Equal(t, "appearance", got.Group)
	assert.True(t, got.IsLocked)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSettingsStorage_Delete(t *testing.T) {
	store := newTestSettingsStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &model.Setting{Key: "tmp", Type: model.SettingTypeString}))

	removed, err := store.Delete(ctx, "tmp")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Delete(ctx, "tmp")
	require.NoError(t, err)
	assert.False(t, removed)

	// the key can be recreated after deletion
	require.NoError(t, store.Save(ctx, &model.Setting{Key: "tmp", Type: model.SettingTypeString}))
}
