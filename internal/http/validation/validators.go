// Package validation checks submitted resource forms against the
// go-playground/validator tags declared on each realty.FormField.
package validation

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/target/realty-admin/internal/domain/realty"
)

const notBlankTag = "notblank"

// Validator validates form values one field at a time. It is safe for
// concurrent use.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// New builds a Validator with English messages.
func New() *Validator {
	v := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = entranslations.RegisterDefaultTranslations(v, trans)

	_ = v.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && strings.TrimSpace(s) != ""
	})
	_ = v.RegisterTranslation(notBlankTag, trans,
		func(ut.Translator) error { return nil },
		func(ut.Translator, validator.FieldError) string { return "cannot be blank" })

	return &Validator{validate: v, trans: trans}
}

// Field validates a single value and returns a message prefixed with label,
// or "" when the value is valid.
func (v *Validator) Field(label, value, rules string) string {
	if rules == "" {
		return ""
	}
	return v.check(label, strings.TrimSpace(value), rules)
}

// Number validates a numeric input. Non-empty values must parse as a number;
// range rules then apply to the number instead of the string length.
func (v *Validator) Number(label, value, rules string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return v.Field(label, value, rules)
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return label + " must be a number."
	}
	numeric := numericRules(rules)
	if numeric == "" {
		return ""
	}
	return v.check(label, n, numeric)
}

// Check validates every non-file field of form against values. The result
// maps field names to their first error and is empty when the form is valid.
func (v *Validator) Check(form []realty.FormField, values url.Values) map[string]string {
	errs := make(map[string]string)
	for _, f := range form {
		if msg := v.checkField(f, values.Get(f.Name)); msg != "" {
			errs[f.Name] = msg
		}
	}
	return errs
}

func (v *Validator) checkField(f realty.FormField, value string) string {
	switch f.Type {
	case realty.FieldFile:
		return ""
	case realty.FieldNumber:
		return v.Number(f.Label, value, f.Rules)
	case realty.FieldSelect:
		if msg := v.Field(f.Label, value, f.Rules); msg != "" {
			return msg
		}
		value = strings.TrimSpace(value)
		if value != "" && len(f.Options) > 0 && !slices.Contains(f.Options, value) {
			return fmt.Sprintf("%s must be one of: %s.", f.Label, strings.Join(f.Options, ", "))
		}
		return ""
	default:
		return v.Field(f.Label, value, f.Rules)
	}
}

func (v *Validator) check(label string, value any, rules string) string {
	err := v.validate.Var(value, rules)
	if err == nil {
		return ""
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return label + " is invalid."
	}
	msg := strings.TrimSpace(fieldErrs[0].Translate(v.trans))
	return label + " " + strings.TrimSuffix(msg, ".") + "."
}

// numericRules drops the string-only tags of a number field's rules.
// required and omitempty go too: the caller only gets here with a non-empty
// value, and omitempty would skip a zero.
func numericRules(rules string) string {
	var keep []string
	for _, r := range strings.Split(rules, ",") {
		switch strings.TrimSpace(r) {
		case "", "required", "omitempty", "numeric", "number", notBlankTag:
			continue
		default:
			keep = append(keep, strings.TrimSpace(r))
		}
	}
	return strings.Join(keep, ",")
}
