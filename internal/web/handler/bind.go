package handler

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

// MsgInvalidBody is returned for bodies that are not a JSON object of the expected fields.
const MsgInvalidBody = "Invalid request body"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their json name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Bind decodes the JSON body of c into out and validates it.
// Unknown fields are rejected and an empty body decodes to the zero value.
// Failures are returned as 400 fiber errors.
func Bind(c *fiber.Ctx, out any) error {
	return bind(c, out, true)
}

// BindAllowUnknown is Bind for routes that only pick single fields out of the body.
// Fields out does not declare are ignored.
func BindAllowUnknown(c *fiber.Ctx, out any) error {
	return bind(c, out, false)
}

func bind(c *fiber.Ctx, out any, strict bool) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	if strict {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fiber.NewError(fiber.StatusBadRequest, MsgInvalidBody)
	}

	err := validate.Struct(out)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fiber.NewError(fiber.StatusBadRequest, MsgInvalidBody)
	}

	messages := make([]string, len(validationErrors))
	for i, fe := range validationErrors {
		messages[i] = fieldMessage(fe)
	}

	return fiber.NewError(fiber.StatusBadRequest, strings.Join(messages, ", "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " should not be empty"
	case "email":
		return fe.Field() + " must be an email"
	case "min":
		return fe.Field() + " must be longer than or equal to " + fe.Param() + " characters"
	default:
		return "Field '" + fe.Field() + "' failed validation tag '" + fe.Tag() + "'"
	}
}
