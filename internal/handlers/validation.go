package handlers

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/SscSPs/explit/internal/apperrors"
	"github.com/SscSPs/explit/internal/core/domain"
	"github.com/SscSPs/explit/internal/dto"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// registerValidators adds the `icon` and `theme` tags used by the dto binding rules.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		// report form field names instead of struct field names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("icon", validateIcon)
		_ = v.RegisterValidation("theme", validateTheme)
	})
}

func validateIcon(fl validator.FieldLevel) bool {
	return dto.ValidIcon(strings.TrimSpace(fl.Field().String()))
}

func validateTheme(fl validator.FieldLevel) bool {
	return domain.Theme(fl.Field().String()).IsValid()
}

// bindingFieldErrors converts binding failures into form field messages.
// Other binding errors become a generic validation error.
func bindingFieldErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationFailedError("Form not submitted correctly.")
	}
	out := apperrors.ValidationErrors{}
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "icon":
			out[field] = dto.MsgIconTooLong
		case "theme":
			out[field] = dto.MsgThemeInvalid
		case "required":
			out[field] = "This field is required"
		case "max":
			out[field] = "This value is too long"
		default:
			out[field] = "This value is not valid"
		}
	}
	return out
}
