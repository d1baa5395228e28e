package settings

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-cms/folio/storage/model"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		raw      *string
		typ      model.SettingType
		expected any
	}{
		{"bool one", strPtr("1"), model.SettingTypeBoolean, true},
		{"bool yes", strPtr("Yes"), model.SettingTypeBoolean, true},
		{"bool on padded", strPtr(" on "), model.SettingTypeBoolean, true},
		{"bool garbage", strPtr("nope"), model.SettingTypeBoolean, false},
		{"bool nil", nil, model.SettingTypeBoolean, false},
		{"int", strPtr("42"), model.SettingTypeInteger, int64(42)},
		{"int float spelling", strPtr("7.9"), model.SettingTypeInteger, int64(7)},
		{"int garbage", strPtr("abc"), model.SettingTypeInteger, int64(0)},
		{"int nil", nil, model.SettingTypeInteger, int64(0)},
		{"float", strPtr("2.5"), model.SettingTypeFloat, 2.5},
		{"float garbage", strPtr("x"), model.SettingTypeFloat, float64(0)},
		{"float nan", strPtr("NaN"), model.SettingTypeFloat, float64(0)},
		{"float inf", strPtr("Inf"), model.SettingTypeFloat, float64(0)},
		{"float negative infinity", strPtr("-infinity"), model.SettingTypeFloat, float64(0)},
		{"int nan", strPtr("NaN"), model.SettingTypeInteger, int64(0)},
		{"json object", strPtr(`{"a":1}`), model.SettingTypeJSON, map[string]any{"a": float64(1)}},
		{"json empty", strPtr(""), model.SettingTypeJSON, map[string]any{}},
		{"json malformed", strPtr("{"), model.SettingTypeJSON, map[string]any{}},
		{"tags", strPtr(`["a","b"]`), model.SettingTypeTags, []string{"a", "b"}},
		{"tags nil", nil, model.SettingTypeTags, []string{}},
		{"image path", strPtr("settings/images/logo.png"), model.SettingTypeImage, "/storage/settings/images/logo.png"},
		{"image nil", nil, model.SettingTypeImage, nil},
		{"file empty", strPtr(""), model.SettingTypeFile, nil},
		{"string", strPtr("Acme"), model.SettingTypeString, "Acme"},
		{"string nil", nil, model.SettingTypeString, ""},
		{"email", strPtr("a@b.c"), model.SettingTypeEmail, "a@b.c"},
	}
	for _, test := range tests {
		t.Run(
			test.name, func(t *testing.T) {
				assert.Equal(t, test.expected, Decode(test.raw, test.typ, &fakeBlobs{}))
			},
		)
	}
}

func TestDecodeWithoutResolver(t *testing.T) {
	assert.Equal(t, "logo.png", Decode(strPtr("logo.png"), model.SettingTypeImage, nil))
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		typ      model.SettingType
		expected string
	}{
		{"true", true, model.SettingTypeBoolean, "1"},
		{"false", false, model.SettingTypeBoolean, "0"},
		{"truthy string", "yes", model.SettingTypeBoolean, "1"},
		{"int", int64(6), model.SettingTypeInteger, "6"},
		{"float", 0.1, model.SettingTypeFloat, "0.1"},
		{"tags", []string{"go", "web"}, model.SettingTypeTags, `["go","web"]`},
		{"json", map[string]any{"a": 1}, model.SettingTypeJSON, `{"a":1}`},
		{"nil string", nil, model.SettingTypeString, ""},
		{"string", "Acme", model.SettingTypeString, "Acme"},
	}
	for _, test := range tests {
		t.Run(
			test.name, func(t *testing.T) {
				raw, err := Encode(test.value, test.typ)
				require.NoError(t, err)
				assert.Equal(t, test.expected, raw)
			},
		)
	}
}

func TestEncodeRejectsNonFiniteFloats(t *testing.T) {
	for _, v := range []any{math.NaN(), math.Inf(1), float32(math.Inf(-1))} {
		_, err := Encode(v, model.SettingTypeFloat)
		assert.Error(t, err)
		_, err = Encode(v, model.SettingTypeString)
		assert.Error(t, err)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		value any
		typ   model.SettingType
	}{
		{"plain text", model.SettingTypeString},
		{"https://example.com/a", model.SettingTypeURL},
		{"me@example.com", model.SettingTypeEmail},
		{int64(-12), model.SettingTypeInteger},
		{3.25, model.SettingTypeFloat},
		{true, model.SettingTypeBoolean},
		{false, model.SettingTypeBoolean},
		{[]string{"a", "b"}, model.SettingTypeTags},
		{map[string]any{"a": float64(1), "b": []any{"x"}}, model.SettingTypeJSON},
	}
	for _, test := range tests {
		t.Run(
			string(test.typ), func(t *testing.T) {
				raw, err := Encode(test.value, test.typ)
				require.NoError(t, err)
				assert.Equal(t, test.value, Decode(&raw, test.typ, nil))
			},
		)
	}
}

func TestBooleanCanonicalisation(t *testing.T) {
	raw, err := Encode(true, model.SettingTypeBoolean)
	require.NoError(t, err)
	assert.Equal(t, true, Decode(&raw, model.SettingTypeBoolean, nil))

	for _, s := range []string{"TRUE", "on", "yes", "1"} {
		v := Decode(strPtr(s), model.SettingTypeBoolean, nil)
		assert.Equal(t, true, v, s)
		reencoded, err := Encode(v, model.SettingTypeBoolean)
		require.NoError(t, err)
		assert.Equal(t, "1", reencoded)
	}
	assert.Equal(t, false, Decode(strPtr("anything-not-a-truthy-token"), model.SettingTypeBoolean, nil))
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected model.SettingType
	}{
		{"bool", true, model.SettingTypeBoolean},
		{"int", 3, model.SettingTypeInteger},
		{"int64", int64(3), model.SettingTypeInteger},
		{"float", 1.5, model.SettingTypeFloat},
		{"string list", []string{"a", "b"}, model.SettingTypeTags},
		{"any list of strings", []any{"a", "b"}, model.SettingTypeTags},
		{"mixed list", []any{"a", 1}, model.SettingTypeJSON},
		{"empty list", []string{}, model.SettingTypeJSON},
		{"object", map[string]any{"a": 1}, model.SettingTypeJSON},
		{"email", "hello@example.com", model.SettingTypeEmail},
		{"url", "https://example.com/path", model.SettingTypeURL},
		{"text with colon", "Note: this is text", model.SettingTypeString},
		{"text", "Acme", model.SettingTypeString},
		{"nil", nil, model.SettingTypeString},
	}
	for _, test := range tests {
		t.Run(
			test.name, func(t *testing.T) {
				assert.Equal(t, test.expected, DetectType(test.value))
			},
		)
	}
}

func TestNormalizeValue(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`{"i": 6, "f": 1.5, "l": [1, "a"], "o": {"n": 2}}`))
	dec.UseNumber()
	var v any
	require.NoError(t, dec.Decode(&v))

	normalized := NormalizeValue(v).(map[string]any)
	assert.Equal(t, int64(6), normalized["i"])
	assert.Equal(t, 1.5, normalized["f"])
	assert.Equal(t, []any{int64(1), "a"}, normalized["l"])
	assert.Equal(t, map[string]any{"n": int64(2)}, normalized["o"])

	assert.Equal(t, model.SettingTypeInteger, DetectType(normalized["i"]))
	assert.Equal(t, model.SettingTypeFloat, DetectType(normalized["f"]))
}
