package model

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// SettingType is the declared type of a setting; it determines how the stored
// string value is interpreted on read and encoded on write.
type SettingType string

// Constants for SettingType
const (
	SettingTypeString  SettingType = "string"
	SettingTypeBoolean SettingType = "boolean"
	SettingTypeInteger SettingType = "integer"
	SettingTypeFloat   SettingType = "float"
	SettingTypeFile    SettingType = "file"
	SettingTypeImage   SettingType = "image"
	SettingTypeURL     SettingType = "url"
	SettingTypeEmail   SettingType = "email"
	SettingTypeJSON    SettingType = "json"
	SettingTypeTags    SettingType = "tags"
)

// SettingTypes lists all valid SettingType values
var SettingTypes = []SettingType{
	SettingTypeString,
	SettingTypeBoolean,
	SettingTypeInteger,
	SettingTypeFloat,
	SettingTypeFile,
	SettingTypeImage,
	SettingTypeURL,
	SettingTypeEmail,
	SettingTypeJSON,
	SettingTypeTags,
}

// Valid reports whether the type is one of the defined constants.
func (t SettingType) Valid() bool {
	switch t {
	case SettingTypeString, SettingTypeBoolean, SettingTypeInteger, SettingTypeFloat,
		SettingTypeFile, SettingTypeImage, SettingTypeURL, SettingTypeEmail,
		SettingTypeJSON, SettingTypeTags:
		return true
	default:
		return false
	}
}

// IsFile reports whether values of this type reference an object in blob storage.
func (t SettingType) IsFile() bool {
	return t == SettingTypeFile || t == SettingTypeImage
}

// ParseSettingType converts a string to a SettingType, returning an error for invalid values.
func ParseSettingType(v string) (SettingType, error) {
	t := SettingType(v)
	if !t.Valid() {
		return "", fmt.Errorf("invalid setting type: %s", v)
	}
	return t, nil
}

// Setting is a single typed, named configuration value.
//
// Value holds the raw storage form; its typed interpretation is derived solely
// from (Value, Type). Locked settings can be updated but never deleted.
type Setting struct {
	ID        uint      `gorm:"primarykey" json:"id" yaml:"-"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`

	Key             string                      `gorm:"uniqueIndex;size:191;not null" json:"key" yaml:"key"`
	Value           *string                     `gorm:"type:text" json:"value" yaml:"value"`
	Type            SettingType                 `gorm:"size:16;not null;default:string;index" json:"type" yaml:"type"`
	Group           string                      `gorm:"size:64;index:idx_settings_group_sort" json:"group" yaml:"group"`
	Description     string                      `gorm:"type:text" json:"description" yaml:"description"`
	IsPublic        bool                        `gorm:"index" json:"is_public" yaml:"is_public"`
	ValidationRules datatypes.JSONSlice[string] `json:"validation_rules" yaml:"validation_rules"`
	SortOrder       int                         `gorm:"index:idx_settings_group_sort" json:"sort_order" yaml:"sort_order"`
	IsLocked        bool                        `json:"is_locked" yaml:"is_locked"`
}

// SettingsFilter restricts a settings listing
type SettingsFilter struct {
	// Group, if set, only matches settings of this group
	Group *string
	// PublicOnly only matches settings with IsPublic set
	PublicOnly bool
}

// SettingsStore is the persistence abstraction for settings.
// Implementations must enforce key uniqueness.
type SettingsStore interface {
	// Get returns the setting for key or a NotFoundError
	Get(ctx context.Context, key string) (*Setting, error)
	// List returns the settings matching the filter ordered by sort order and key
	List(ctx context.Context, filter SettingsFilter) ([]Setting, error)
	// Save inserts or updates the passed setting
	Save(ctx context.Context, setting *Setting) error
	// Delete removes the setting for key and reports whether a row was removed
	Delete(ctx context.Context, key string) (bool, error)
	// Count returns the number of stored settings
	Count(ctx context.Context) (int64, error)
	// Upsert creates or fully replaces the passed settings by key
	Upsert(ctx context.Context, settings []Setting) error
}
