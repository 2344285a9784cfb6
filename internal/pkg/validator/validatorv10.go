package validator

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shandysiswandi/gotp/internal/pkg/strcase"
)

// V10ValidationError maps snake_case field names to translated messages.
type V10ValidationError map[string]string

func (ve V10ValidationError) Error() string {
	if len(ve) == 0 {
		return "validation error"
	}

	keys := make([]string, 0, len(ve))
	for k := range ve {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var sb strings.Builder
	sb.WriteString("validation error:")
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%q", k, ve[k])
	}
	return sb.String()
}

// Values is the field map, ready to be rendered as response data.
func (ve V10ValidationError) Values() map[string]string { return ve }

// customRule is a tag not shipped with validator/v10.
type customRule struct {
	tag     string
	message string
	check   validator.Func
}

var customRules = []customRule{
	{tag: "otpcode", message: "{0} must be exactly 6 digits", check: isOTPCode},
}

func isOTPCode(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok || len(s) != 6 {
		return false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// V10Validator implements Validator with go-playground/validator and
// English messages.
type V10Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func NewV10Validator() (*V10Validator, error) {
	locale := en.New()
	trans, ok := ut.New(locale, locale).GetTranslator(locale.Locale())
	if !ok {
		return nil, errors.New("validator: english translator unavailable")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	for _, r := range customRules {
		if err := registerRule(validate, trans, r); err != nil {
			return nil, fmt.Errorf("validator: register %s: %w", r.tag, err)
		}
	}

	return &V10Validator{validate: validate, trans: trans}, nil
}

func registerRule(validate *validator.Validate, trans ut.Translator, r customRule) error {
	if err := validate.RegisterValidation(r.tag, r.check); err != nil {
		return err
	}

	return validate.RegisterTranslation(r.tag, trans,
		func(t ut.Translator) error { return t.Add(r.tag, r.message, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(fe.Tag(), fe.Field())
			if err != nil {
				slog.Warn("validator translation failed", "tag", fe.Tag(), "field", fe.Field(), "error", err)
				return fe.Error()
			}
			return msg
		},
	)
}

// Validate returns V10ValidationError when data breaks a rule. Other errors,
// such as passing a non-struct, are returned as is.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(V10ValidationError, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[strcase.ToLowerSnake(fe.Field())] = fe.Translate(v.trans)
	}
	return out
}
