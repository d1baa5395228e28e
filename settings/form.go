package settings

import (
	"context"
	"encoding/json"
	"slices"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	tslices "tideland.dev/go/slices"

	"github.com/folio-cms/folio/storage/model"
)

// FieldKind is the kind of input used to edit a setting
type FieldKind string

// Constants for FieldKind
const (
	FieldText     FieldKind = "text"
	FieldTextarea FieldKind = "textarea"
	FieldCheckbox FieldKind = "checkbox"
	FieldNumber   FieldKind = "number"
	FieldEmail    FieldKind = "email"
	FieldURL      FieldKind = "url"
	FieldFile     FieldKind = "file"
	FieldImage    FieldKind = "image"
	FieldTags     FieldKind = "tags"
	FieldColor    FieldKind = "color"
	FieldSelect   FieldKind = "select"
)

const (
	defaultGroup     = "general"
	longTextLength   = 100
	textareaRows     = 3
	fileDirectory    = "settings/files"
	imageDirectory   = "settings/images"
	fileMaxSizeKB    = 2048
	imageMaxSizeKB   = 5120
	numberFloatStep  = 0.01
	defaultGroupIcon = "heroicon-o-cog-6-tooth"
)

var groupIcons = map[string]string{
	"general":    "heroicon-o-home",
	"contact":    "heroicon-o-envelope",
	"social":     "heroicon-o-share",
	"seo":        "heroicon-o-magnifying-glass",
	"appearance": "heroicon-o-paint-brush",
	"features":   "heroicon-o-puzzle-piece",
	"resume":     "heroicon-o-document-text",
}

var themeOptions = []FieldOption{
	{Value: "light", Label: "Light"},
	{Value: "dark", Label: "Dark"},
	{Value: "auto", Label: "Auto"},
}

// FieldOption is a choice of a select field
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FormField describes the input for a single setting
type FormField struct {
	Name          string        `json:"name"`
	Key           string        `json:"key"`
	Kind          FieldKind     `json:"kind"`
	Label         string        `json:"label"`
	Help          string        `json:"help,omitempty"`
	Required      bool          `json:"required"`
	Value         any           `json:"value"`
	URL           string        `json:"url,omitempty"`
	Step          float64       `json:"step,omitempty"`
	Rows          int           `json:"rows,omitempty"`
	Options       []FieldOption `json:"options,omitempty"`
	Directory     string        `json:"directory,omitempty"`
	AcceptedTypes []string      `json:"accepted_types,omitempty"`
	MaxSizeKB     int           `json:"max_size_kb,omitempty"`
}

// FormTab groups the fields of one settings group
type FormTab struct {
	Group  string      `json:"group"`
	Label  string      `json:"label"`
	Icon   string      `json:"icon"`
	Fields []FormField `json:"fields"`
}

// FieldName returns the form field name of a setting key
func FieldName(key string) string {
	return strings.ReplaceAll(key, ".", "_")
}

// FieldLabel returns a human-readable label from the last segment of a key
func FieldLabel(key string) string {
	label := key
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		label = key[i+1:]
	}
	label = strings.NewReplacer("_", " ", "-", " ").Replace(label)
	words := strings.Split(label, " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// BuildForm derives the settings form from the passed settings. It has no
// side effects; tabs follow the order in which groups first appear.
func BuildForm(list []model.Setting, urls URLResolver) []FormTab {
	var order []string
	byGroup := make(map[string][]model.Setting)
	for _, item := range list {
		g := item.Group
		if g == "" {
			g = defaultGroup
		}
		if _, ok := byGroup[g]; !ok {
			order = append(order, g)
		}
		byGroup[g] = append(byGroup[g], item)
	}

	tabs := make([]FormTab, 0, len(order))
	for _, g := range order {
		items := byGroup[g]
		sort.SliceStable(
			items, func(i, j int) bool {
				if items[i].SortOrder != items[j].SortOrder {
					return items[i].SortOrder < items[j].SortOrder
				}
				return items[i].Key < items[j].Key
			},
		)
		fields := make([]FormField, len(items))
		for i, item := range items {
			fields[i] = buildField(item, urls)
		}
		icon, ok := groupIcons[g]
		if !ok {
			icon = defaultGroupIcon
		}
		tabs = append(
			tabs, FormTab{
				Group:  g,
				Label:  strings.ToUpper(g[:1]) + g[1:],
				Icon:   icon,
				Fields: fields,
			},
		)
	}
	return tabs
}

func buildField(item model.Setting, urls URLResolver) FormField {
	f := FormField{
		Name:     FieldName(item.Key),
		Key:      item.Key,
		Label:    FieldLabel(item.Key),
		Help:     item.Description,
		Required: slices.Contains(item.ValidationRules, "required"),
		Value:    formValueOf(item),
	}
	switch item.Type {
	case model.SettingTypeBoolean:
		f.Kind = FieldCheckbox
	case model.SettingTypeInteger:
		f.Kind = FieldNumber
	case model.SettingTypeFloat:
		f.Kind = FieldNumber
		f.Step = numberFloatStep
	case model.SettingTypeEmail:
		f.Kind = FieldEmail
	case model.SettingTypeURL:
		f.Kind = FieldURL
	case model.SettingTypeFile:
		f.Kind = FieldFile
		f.Directory = fileDirectory
		f.AcceptedTypes = []string{"application/pdf", "image/*", ".ico"}
		f.MaxSizeKB = fileMaxSizeKB
		f.URL = fileURL(item.Value, urls)
	case model.SettingTypeImage:
		f.Kind = FieldImage
		f.Directory = imageDirectory
		f.AcceptedTypes = []string{"image/*"}
		f.MaxSizeKB = imageMaxSizeKB
		f.URL = fileURL(item.Value, urls)
	case model.SettingTypeTags:
		f.Kind = FieldTags
	case model.SettingTypeJSON:
		f.Kind = FieldTextarea
		f.Rows = textareaRows
	default:
		stringField(&f, item)
	}
	return f
}

// stringField applies the key based overrides for plain string settings
func stringField(f *FormField, item model.Setting) {
	value := ""
	if item.Value != nil {
		value = *item.Value
	}
	switch {
	case strings.Contains(item.Key, "color"):
		f.Kind = FieldColor
	case strings.Contains(item.Key, "theme"):
		f.Kind = FieldSelect
		f.Options = themeOptions
	case strings.Contains(item.Key, "description"),
		strings.Contains(item.Key, "robots"),
		len(value) > longTextLength:
		f.Kind = FieldTextarea
		f.Rows = textareaRows
	default:
		f.Kind = FieldText
	}
}

// formValueOf returns the value a field is pre-filled with. File and image
// fields hold the stored path, json fields the JSON text.
func formValueOf(item model.Setting) any {
	switch item.Type {
	case model.SettingTypeBoolean, model.SettingTypeInteger, model.SettingTypeFloat, model.SettingTypeTags:
		return Decode(item.Value, item.Type, nil)
	case model.SettingTypeJSON:
		if item.Value == nil || strings.TrimSpace(*item.Value) == "" {
			return "{}"
		}
		return *item.Value
	default:
		if item.Value == nil {
			return ""
		}
		return *item.Value
	}
}

func fileURL(raw *string, urls URLResolver) string {
	if raw == nil || *raw == "" {
		return ""
	}
	if urls == nil {
		return *raw
	}
	return urls.URL(*raw)
}

// Form returns the settings form built from the stored settings
func (s *Service) Form(ctx context.Context) ([]FormTab, error) {
	list, err := s.store.List(ctx, model.SettingsFilter{})
	if err != nil {
		return nil, err
	}
	return BuildForm(list, s.urls()), nil
}

// SaveForm writes submitted form values keyed by field name. Unknown fields
// are ignored; nil and blank values clear the setting. Values are written
// through Set, so the first value failing its rules aborts with a
// *model.ValidationError for that setting.
func (s *Service) SaveForm(ctx context.Context, values map[string]any) error {
	list, err := s.store.List(ctx, model.SettingsFilter{})
	if err != nil {
		return err
	}
	byName := make(map[string]model.Setting, len(list))
	names := make([]string, 0, len(list))
	for _, item := range list {
		name := FieldName(item.Key)
		if other, ok := byName[name]; ok {
			log.WithFields(log.Fields{
				"field": name,
				"key":   item.Key,
				"other": other.Key,
			}).Warn("settings share a form field name; keeping the first")
			continue
		}
		byName[name] = item
		names = append(names, name)
	}

	submitted := sortedKeys(values)
	if unknown := tslices.Subtract(submitted, names); len(unknown) > 0 {
		log.WithField("fields", unknown).Debug("ignoring unknown settings form fields")
	}
	for _, name := range submitted {
		item, ok := byName[name]
		if !ok {
			continue
		}
		v, err := submittedValue(item, values[name])
		if err != nil {
			return err
		}
		if _, err = s.Set(ctx, item.Key, v, nil); err != nil {
			return err
		}
	}
	return nil
}

// submittedValue converts a submitted form value into the value passed to Set
func submittedValue(item model.Setting, v any) (any, error) {
	v = NormalizeValue(v)
	if str, ok := v.(string); v == nil || ok && strings.TrimSpace(str) == "" {
		switch item.Type {
		case model.SettingTypeTags:
			return []string{}, nil
		case model.SettingTypeJSON:
			return map[string]any{}, nil
		default:
			return "", nil
		}
	}
	str, isString := v.(string)
	if !isString {
		return v, nil
	}
	switch item.Type {
	case model.SettingTypeJSON:
		var decoded any
		if err := json.Unmarshal([]byte(str), &decoded); err != nil {
			return nil, &model.ValidationError{
				Key:      item.Key,
				Failures: []model.RuleFailure{{Rule: "json", Message: "value must be valid JSON"}},
			}
		}
		return decoded, nil
	case model.SettingTypeTags:
		parts := strings.Split(str, ",")
		tags := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				tags = append(tags, p)
			}
		}
		return tags, nil
	}
	return v, nil
}
