package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mesh-intelligence/canvasboard/internal/fieldpath"
)

// validate checks request payloads. Initialized in init() with the custom
// fieldpath rule.
var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)

	// fieldpath: a dotted path with no empty or blank segments.
	if err := validate.RegisterValidation("fieldpath", validateFieldPath); err != nil {
		panic(fmt.Sprintf("registering fieldpath validation: %v", err))
	}
}

func validateFieldPath(fl validator.FieldLevel) bool {
	return fieldpath.Validate(fl.Field().String()) == nil
}

// jsonFieldName reports fields by their JSON name so messages match the
// payload the client sent.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// validateRequest validates v and writes a 400 on failure. It reports
// whether v is valid.
func validateRequest(w http.ResponseWriter, v any) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}
	writeError(w, http.StatusBadRequest, validationMessage(err))
	return false
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
