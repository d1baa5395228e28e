package settings

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/folio-cms/folio/storage/model"
)

// RuleValidator checks values against declarative rule strings such as
// "required", "max:255", "in:light,dark,auto" or "regex:/^#[0-9a-f]{6}$/i".
//
// Rules are evaluated individually so that every failed rule is reported.
// A nil or blank value is only checked against "required".
type RuleValidator struct {
	validate *validator.Validate
}

// NewRuleValidator creates a RuleValidator
func NewRuleValidator() *RuleValidator {
	v := validator.New()
	for tag, fn := range map[string]validator.Func{
		"is_string":  isStringValue,
		"is_integer": isIntegerValue,
		"is_numeric": isNumericValue,
		"is_boolean": isBooleanValue,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// only fails for empty tags or nil funcs
			panic(err)
		}
	}
	return &RuleValidator{validate: v}
}

// Validate returns the failures of value against rules; an empty result means
// the value is valid.
func (r *RuleValidator) Validate(value any, rules []string) []model.RuleFailure {
	var failures []model.RuleFailure
	blank := isBlank(value)
	sized := sizeOperand(value, rules)
	for _, rule := range rules {
		name, param, _ := strings.Cut(strings.TrimSpace(rule), ":")
		if name == "required" {
			if blank {
				failures = append(failures, model.RuleFailure{Rule: rule, Message: "value is required"})
			}
			continue
		}
		if blank {
			continue
		}
		operand := value
		if name == "max" || name == "min" {
			operand = sized
		}
		if msg, ok := r.check(name, param, operand); !ok {
			failures = append(failures, model.RuleFailure{Rule: rule, Message: msg})
		}
	}
	return failures
}

// check evaluates a single non-required rule; it returns the failure message
// and false if value does not satisfy the rule.
func (r *RuleValidator) check(name, param string, value any) (string, bool) {
	switch name {
	case "nullable", "sometimes":
		return "", true
	case "string":
		return "value must be a string", r.validate.Var(value, "is_string") == nil
	case "file", "image":
		return "value must be a file path", r.validate.Var(value, "is_string") == nil
	case "integer":
		return "value must be an integer", r.validate.Var(value, "is_integer") == nil
	case "numeric":
		return "value must be a number", r.validate.Var(value, "is_numeric") == nil
	case "boolean":
		return "value must be true or false", r.validate.Var(value, "is_boolean") == nil
	case "email":
		s, ok := value.(string)
		return "value must be a valid email address", ok && r.validate.Var(s, "email") == nil
	case "url":
		s, ok := value.(string)
		return "value must be a valid URL", ok && r.validate.Var(s, "url") == nil
	case "max", "min":
		if _, err := strconv.ParseFloat(param, 64); err != nil {
			log.WithField("rule", name+":"+param).Warn("ignoring size rule with invalid parameter")
			return "", true
		}
		if !sizeable(value) {
			return fmt.Sprintf("value does not support the %s rule", name), false
		}
		return sizeMessage(name, param, value), r.validate.Var(value, name+"="+param) == nil
	case "in":
		options := strings.Split(param, ",")
		return "value must be one of: " + strings.Join(options, ", "), slices.Contains(options, stringify(value))
	case "regex":
		re, err := compileRuleRegex(param)
		if err != nil {
			log.WithError(err).WithField("pattern", param).Warn("invalid regex validation rule")
			return "value cannot be checked against an invalid pattern", false
		}
		return "value does not match the required format", re.MatchString(stringify(value))
	default:
		log.WithField("rule", name).Debug("ignoring unknown validation rule")
		return "", true
	}
}

// sizeOperand returns the value min and max compare against: numeric strings
// are compared by value when the rules declare the value numeric, otherwise
// by length.
func sizeOperand(value any, rules []string) any {
	s, ok := value.(string)
	if !ok || !slices.ContainsFunc(rules, func(r string) bool { return r == "integer" || r == "numeric" }) {
		return value
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return value
	}
	return f
}

func sizeMessage(name, param string, value any) string {
	bound := "greater"
	if name == "min" {
		bound = "less"
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.String:
		if name == "min" {
			return fmt.Sprintf("value must be at least %s characters", param)
		}
		return fmt.Sprintf("value must not be greater than %s characters", param)
	case reflect.Slice, reflect.Array, reflect.Map:
		if name == "min" {
			return fmt.Sprintf("value must have at least %s items", param)
		}
		return fmt.Sprintf("value must not have more than %s items", param)
	}
	return fmt.Sprintf("value must not be %s than %s", bound, param)
}

// compileRuleRegex accepts both delimited patterns (/re/flags) and bare ones
func compileRuleRegex(param string) (*regexp.Regexp, error) {
	pattern := param
	if len(param) >= 2 && param[0] == '/' {
		end := strings.LastIndexByte(param, '/')
		if end > 0 {
			pattern = param[1:end]
			if strings.Contains(param[end+1:], "i") {
				pattern = "(?i)" + pattern
			}
		}
	}
	return regexp.Compile(pattern)
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// sizeable reports whether the validator's min/max tags support value's kind
func sizeable(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isStringValue(fl validator.FieldLevel) bool {
	return fl.Field().Kind() == reflect.String
}

func isIntegerValue(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	case reflect.Float32, reflect.Float64:
		return f.Float() == float64(int64(f.Float()))
	case reflect.String:
		_, err := strconv.ParseInt(strings.TrimSpace(f.String()), 10, 64)
		return err == nil
	}
	return false
}

func isNumericValue(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.String:
		_, err := strconv.ParseFloat(strings.TrimSpace(f.String()), 64)
		return err == nil
	}
	return false
}

func isBooleanValue(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Bool:
		return true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return f.Int() == 0 || f.Int() == 1
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return f.Uint() == 0 || f.Uint() == 1
	case reflect.String:
		switch f.String() {
		case "0", "1", "true", "false":
			return true
		}
	}
	return false
}
