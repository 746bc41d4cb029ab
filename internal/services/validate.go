package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
)

// inputValidate is shared by every service input struct.
var inputValidate *validator.Validate

func init() {
	inputValidate = validator.New(validator.WithRequiredStructEnabled())
	_ = inputValidate.RegisterValidation("edgetype", func(fl validator.FieldLevel) bool {
		return domain.EdgeType(fl.Field().String()).Valid()
	})
	_ = inputValidate.RegisterValidation("entitytype", func(fl validator.FieldLevel) bool {
		return domain.EntityType(fl.Field().String()).Valid()
	})
	_ = inputValidate.RegisterValidation("layer", func(fl validator.FieldLevel) bool {
		return domain.Layer(fl.Field().String()).Valid()
	})
	_ = inputValidate.RegisterValidation("module", func(fl validator.FieldLevel) bool {
		return domain.Module(fl.Field().String()).Valid()
	})
	_ = inputValidate.RegisterValidation("doctype", func(fl validator.FieldLevel) bool {
		return domain.DocumentType(fl.Field().String()).Valid()
	})
}

// validateInput runs struct tags and folds the result into a ValidationError
// listing every failing field.
func validateInput(in any) error {
	err := inputValidate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewValidationError(err.Error())
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, describeFieldError(fe))
	}
	return domain.NewValidationError(problems...)
}

func describeFieldError(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "edgetype":
		return fmt.Sprintf("invalid relationship type %q", fe.Value())
	case "entitytype":
		return fmt.Sprintf("%s: invalid entity type %q", field, fe.Value())
	case "layer":
		return fmt.Sprintf("%s: invalid legal level %q", field, fe.Value())
	case "module":
		return fmt.Sprintf("%s: invalid module %q", field, fe.Value())
	case "doctype":
		return fmt.Sprintf("%s: invalid document type %q", field, fe.Value())
	case "max":
		return fmt.Sprintf("%s exceeds %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
