package storage

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/folio-cms/folio/storage/model"
)

// SettingsStorage implements model.SettingsStore using GORM.
type SettingsStorage struct {
	db *gorm.DB
}

// upsertColumns are replaced when a seeded setting already exists
var upsertColumns = []string{
	"value",
	"type",
	"group",
	"description",
	"is_public",
	"validation_rules",
	"sort_order",
	"is_locked",
	"updated_at",
}

// Get returns the setting stored under key
func (s *SettingsStorage) Get(ctx context.Context, key string) (*model.Setting, error) {
	var item model.Setting
	err := s.db.WithContext(ctx).Where(map[string]any{"key": key}).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundErrorFmt("setting not found: %s", key)
		}
		return nil, errors.Wrap(err, "settings: get failed")
	}
	return &item, nil
}

// List returns the settings matching filter ordered by sort_order, then key
func (s *SettingsStorage) List(ctx context.Context, filter model.SettingsFilter) ([]model.Setting, error) {
	q := s.db.WithContext(ctx).Model(&model.Setting{})
	if filter.Group != nil {
		q = q.Where(map[string]any{"group": *filter.Group})
	}
	if filter.PublicOnly {
		q = q.Where(&model.Setting{IsPublic: true})
	}
	var items []model.Setting
	err := q.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "sort_order"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).
		Find(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "settings: list failed")
	}
	return items, nil
}

// Save inserts the setting if it has no ID yet, otherwise updates all its columns
func (s *SettingsStorage) Save(ctx context.Context, setting *model.Setting) error {
	if err := s.db.WithContext(ctx).Save(setting).Error; err != nil {
		if isUniqueConstraintError(err) {
			return model.AlreadyExistsErrorFmt("setting already exists: %s", setting.Key)
		}
		return errors.Wrap(err, "settings: save failed")
	}
	return nil
}

// Delete removes the setting stored under key. No error if it's missing.
func (s *SettingsStorage) Delete(ctx context.Context, key string) (bool, error) {
	res := s.db.WithContext(ctx).Where(map[string]any{"key": key}).Delete(&model.Setting{})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "settings: delete failed")
	}
	return res.RowsAffected > 0, nil
}

// Count returns the number of stored settings
func (s *SettingsStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Setting{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "settings: count failed")
	}
	return count, nil
}

// Upsert creates the passed settings or, for keys that already exist,
// replaces every column except the key and creation time.
func (s *SettingsStorage) Upsert(ctx context.Context, settings []model.Setting) error {
	if len(settings) == 0 {
		return nil
	}
	rows := make([]model.Setting, len(settings))
	copy(rows, settings)
	for i := range rows {
		rows[i].ID = 0
	}
	err := s.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{
				{Name: "key"},
			},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		},
	).Create(&rows).Error
	return errors.Wrap(err, "settings: upsert failed")
}

// isUniqueConstraintError performs a cheap check across supported drivers.
func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return containsAny(
		err.Error(),
		// SQLite
		"UNIQUE constraint failed",
		// MySQL
		"Duplicate entry", "Error 1062",
		// Postgres
		"duplicate key value", "violates unique constraint",
	)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
