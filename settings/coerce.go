package settings

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/folio-cms/folio/storage/model"
)

// URLResolver turns a stored blob path into a publicly reachable URL
type URLResolver interface {
	URL(path string) string
}

// detector is only used for the email and url grammars in DetectType
var detector = validator.New()

// Decode converts the stored raw value into its typed runtime form.
// Decode is total: malformed input degrades to the type's zero value.
//
// The returned dynamic types are bool, int64, float64, string, []string
// (tags), any (json) and, for file and image settings, a string URL or nil.
func Decode(raw *string, t model.SettingType, urls URLResolver) any {
	switch t {
	case model.SettingTypeBoolean:
		if raw == nil {
			return false
		}
		return parseBool(*raw)
	case model.SettingTypeInteger:
		if raw == nil {
			return int64(0)
		}
		return parseInt(*raw)
	case model.SettingTypeFloat:
		if raw == nil {
			return float64(0)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return float64(0)
		}
		return f
	case model.SettingTypeJSON:
		var v any
		if raw == nil || strings.TrimSpace(*raw) == "" || json.Unmarshal([]byte(*raw), &v) != nil || v == nil {
			return map[string]any{}
		}
		return v
	case model.SettingTypeTags:
		var tags []string
		if raw == nil || strings.TrimSpace(*raw) == "" || json.Unmarshal([]byte(*raw), &tags) != nil || tags == nil {
			return []string{}
		}
		return tags
	case model.SettingTypeFile, model.SettingTypeImage:
		if raw == nil || *raw == "" {
			return nil
		}
		if urls == nil {
			return *raw
		}
		return urls.URL(*raw)
	case model.SettingTypeString, model.SettingTypeURL, model.SettingTypeEmail:
		fallthrough
	default:
		if raw == nil {
			return ""
		}
		return *raw
	}
}

// Encode converts a typed value into its storage form
func Encode(v any, t model.SettingType) (string, error) {
	if !finite(v) {
		return "", fmt.Errorf("could not encode %s value: %v is not a finite number", t, v)
	}
	switch t {
	case model.SettingTypeBoolean:
		if truthy(v) {
			return "1", nil
		}
		return "0", nil
	case model.SettingTypeJSON, model.SettingTypeTags:
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("could not encode %s value: %w", t, err)
		}
		return string(data), nil
	default:
		return stringify(v), nil
	}
}

// DetectType guesses the type of a value for a brand-new setting.
// Non-string checks run first; a string can never satisfy them.
func DetectType(v any) model.SettingType {
	if v == nil {
		return model.SettingTypeString
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return model.SettingTypeBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return model.SettingTypeInteger
	case reflect.Float32, reflect.Float64:
		return model.SettingTypeFloat
	case reflect.Slice, reflect.Array:
		if isStringList(rv) {
			return model.SettingTypeTags
		}
		return model.SettingTypeJSON
	case reflect.Map, reflect.Struct, reflect.Ptr:
		return model.SettingTypeJSON
	case reflect.String:
		s := rv.String()
		if detector.Var(s, "required,email") == nil {
			return model.SettingTypeEmail
		}
		if strings.Contains(s, "://") && !strings.ContainsAny(s, " \t\r\n") && detector.Var(s, "url") == nil {
			return model.SettingTypeURL
		}
	}
	return model.SettingTypeString
}

// NormalizeValue replaces json.Number values produced by a decoder with
// UseNumber by int64 or float64, recursing into lists and objects.
func NormalizeValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = NormalizeValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = NormalizeValue(e)
		}
		return out
	default:
		return v
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}

// finite reports false for NaN and infinite floats, which have no json form
func finite(v any) bool {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	default:
		return true
	}
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(f)
}

// truthy mirrors the loose truthiness used for boolean settings
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return parseBool(x)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map:
		return rv.Len() > 0
	}
	return true
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "1"
		}
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case json.Number:
		return x.String()
	case fmt.Stringer:
		return x.String()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		data, err := json.Marshal(v)
		if err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(v)
}

func isStringList(rv reflect.Value) bool {
	if rv.Len() == 0 {
		return false
	}
	if rv.Type().Elem().Kind() == reflect.String {
		return true
	}
	for i := 0; i < rv.Len(); i++ {
		e := rv.Index(i)
		if e.Kind() == reflect.Interface {
			e = e.Elem()
		}
		if !e.IsValid() || e.Kind() != reflect.String {
			return false
		}
	}
	return true
}
