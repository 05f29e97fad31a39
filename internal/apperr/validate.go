package apperr

import (
	"errors"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// Validator is shared by every package that validates inputs with
	// struct tags.
	Validator  *validator.Validate
	translator ut.Translator
)

func init() {
	Validator = validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")

	if err := en_translations.RegisterDefaultTranslations(Validator, translator); err != nil {
		panic(err)
	}

	Validator.RegisterTranslation("oneof", translator, func(ut ut.Translator) error {
		return ut.Add("oneof", "{0} must be one of: {1}", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("oneof", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
		return t
	})
}

// Validate runs struct-tag validation on v and converts failures with
// FromValidator.
func Validate(v any) error {
	return FromValidator(Validator.Struct(v))
}

// FromValidator converts validator field errors into one ErrValidation.
// Other errors pass through unchanged.
func FromValidator(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Translate(translator))
	}
	return Validationf("%s", strings.Join(msgs, "; "))
}
