package services

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"

	"agentgift-service/apperrors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	translator   ut.Translator
)

func lazyinit() {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		locale := en.New()
		translator, _ = ut.New(locale, locale).GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(validate, translator)
	})
}

// Validate runs struct tag validation and returns a VALIDATION_ERROR listing every failed field.
func Validate(v any) error {
	lazyinit()
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid request")
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fe.Translate(translator))
	}
	return apperrors.New(apperrors.ErrCodeValidation, strings.Join(messages, "; "))
}

// decodeParams unmarshals dispatcher parameters into dst and validates it. Empty params decode as {}.
func decodeParams(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid parameters")
	}
	return Validate(dst)
}
