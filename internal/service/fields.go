package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/storage"
)

var hexRGB = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	// #RGB or #RRGGBB, no alpha channel.
	_ = v.RegisterValidation("hexrgb", func(fl validator.FieldLevel) bool {
		return hexRGB.MatchString(fl.Field().String())
	})
	return v
}

// RecipeFields are the scalar fields of a recipe. Image is the decoded
// upload; it is required on create and optional on replace.
type RecipeFields struct {
	Name        string         `json:"name" validate:"required,max=200"`
	Text        string         `json:"text" validate:"required,max=2000"`
	CookingTime int            `json:"cooking_time" validate:"min=1,max=32767"`
	Image       *storage.Image `json:"-" validate:"-"`
}

// validateStruct runs the struct tags and converts the first failure into a
// validation AppError naming the field.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.Validation("", err.Error())
	}
	fe := fieldErrs[0]
	return apperror.Validation(fe.Field(), fieldMessage(fe))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is less than or equal to %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is greater than or equal to %s", fe.Param())
	case "email":
		return "enter a valid email address"
	case "hexrgb":
		return "enter a valid hex colour such as #49B64E"
	default:
		return fmt.Sprintf("failed on the %s rule", fe.Tag())
	}
}
