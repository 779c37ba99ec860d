package app

import (
	"errors"
	"reflect"
	"strings"

	"idetude/internal/domain/assignment"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	schoolYearTag  = "schoolyear"
	schoolYearText = "{0} must look like 2026-2027"

	requiredTag  = "required"
	requiredText = "{0} is required"
)

func init() {
	validate = validator.New()
	enLocale := en.New()
	translator, _ = ut.New(enLocale, enLocale).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// report JSON names rather than Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(schoolYearTag, schoolYearValidation)
	registerTranslation(schoolYearTag, schoolYearText, false)
	registerTranslation(requiredTag, requiredText, true)
}

func registerTranslation(tag, text string, override bool) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// schoolYearValidation accepts "YYYY-YYYY" where the second year follows the first.
func schoolYearValidation(fl validator.FieldLevel) bool {
	return assignment.ValidSchoolYear(fl.Field().String())
}

// FieldError is a validation failure on one input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

// validateStruct runs the struct tags of v and converts failures into a ValidationError.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}
	fields := make([]FieldError, 0, len(vErrs))
	for _, fe := range vErrs {
		fields = append(fields, FieldError{Field: fe.Field(), Error: fe.Translate(translator)})
	}
	return &ValidationError{Fields: fields}
}
