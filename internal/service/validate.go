package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/Suryaprasath-41/Feedback-System/internal/dto"
)

const notBlankTag = "notblank"

// rowValidator validates import rows and reports field errors by JSON name
type rowValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newRowValidator() *rowValidator {
	v := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	_ = entranslations.RegisterDefaultTranslations(v, trans)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterTranslation(notBlankTag, trans,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return fe.Field() + " must not be empty"
		},
	)

	return &rowValidator{validate: v, trans: trans}
}

// rowErrors validates s and returns one RowError per failing field
func (rv *rowValidator) rowErrors(row int, s interface{}) []dto.RowError {
	err := rv.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []dto.RowError{{Row: row, Reason: err.Error()}}
	}

	out := make([]dto.RowError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, dto.RowError{
			Row:    row,
			Field:  fe.Field(),
			Reason: fe.Translate(rv.trans),
		})
	}
	return out
}
